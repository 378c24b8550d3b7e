package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV encodes seconds of silence as 16-bit PCM and returns the bytes.
func writeTestWAV(t *testing.T, sampleRate, channels int, seconds float64) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating wav: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	frames := int(float64(sampleRate) * seconds)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading wav: %v", err)
	}
	return data
}

func TestProbeWAV(t *testing.T) {
	data := writeTestWAV(t, 16000, 1, 1.5)

	info, err := ProbeWAV(data)
	if err != nil {
		t.Fatalf("ProbeWAV failed: %v", err)
	}

	if info.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("expected 1 channel, got %d", info.Channels)
	}
	if info.BitDepth != 16 {
		t.Errorf("expected bit depth 16, got %d", info.BitDepth)
	}
	if d := info.Duration - 1500*time.Millisecond; d < -10*time.Millisecond || d > 10*time.Millisecond {
		t.Errorf("expected ~1.5s duration, got %s", info.Duration)
	}
	if ms := info.DurationMs(); ms < 1490 || ms > 1510 {
		t.Errorf("expected ~1500ms, got %d", ms)
	}
}

func TestProbeWAVRejectsOtherFormats(t *testing.T) {
	_, err := ProbeWAV([]byte("ID3\x03\x00\x00\x00 definitely an mp3"))
	if !errors.Is(err, ErrNotWAV) {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestDurationMsNil(t *testing.T) {
	var info *Info
	if info.DurationMs() != 0 {
		t.Error("nil Info should report 0ms")
	}
}
