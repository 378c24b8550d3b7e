package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAudioExt is used when an upload carries no recognizable extension.
const DefaultAudioExt = ".wav"

var audioExts = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".webm": "audio/webm",
	".mp4":  "audio/mp4",
	".wma":  "audio/x-ms-wma",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
	".amr":  "audio/amr",
}

// AudioExt returns the lower-cased extension of filename if it is a known
// audio container, otherwise DefaultAudioExt.
func AudioExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := audioExts[ext]; ok {
		return ext
	}
	return DefaultAudioExt
}

// AudioContentType maps an extension from AudioExt to a MIME type.
func AudioContentType(ext string) string {
	if ct, ok := audioExts[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// MakeDir creates a directory with all parent directories
func MakeDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DeleteFile removes a file
func DeleteFile(path string) error {
	return os.Remove(path)
}

// StageTempFile copies src into a new, uniquely named file under dir with the
// given extension. The returned release func removes the file; it is safe to
// call more than once and only the first call touches the filesystem.
// On error nothing is left on disk.
func StageTempFile(dir, ext string, src io.Reader) (path string, size int64, release func() error, err error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := MakeDir(dir); err != nil {
		return "", 0, nil, fmt.Errorf("creating temp dir %s: %w", dir, err)
	}

	path = filepath.Join(dir, fmt.Sprintf("upload_%s%s", GenerateUUID(), ext))
	out, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", 0, nil, fmt.Errorf("creating temp file: %w", err)
	}

	released := false
	release = func() error {
		if released {
			return nil
		}
		released = true
		return DeleteFile(path)
	}

	size, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = release()
		return "", 0, nil, fmt.Errorf("writing temp file: %w", err)
	}

	return path, size, release, nil
}
