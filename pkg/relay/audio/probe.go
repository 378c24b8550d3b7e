package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("not a WAV/RIFF file")

// Info is the header-level description of a WAV upload.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

func (i *Info) DurationMs() int {
	if i == nil {
		return 0
	}
	return int(i.Duration / time.Millisecond)
}

// ProbeWAV reads the RIFF/WAVE header of data. Sample data is not decoded.
func ProbeWAV(data []byte) (*Info, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}

	dur, err := dec.Duration()
	if err != nil {
		return nil, fmt.Errorf("reading WAV duration: %w", err)
	}

	return &Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   dur,
	}, nil
}
