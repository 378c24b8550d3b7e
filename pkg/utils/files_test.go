package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAudioExt(t *testing.T) {
	tests := map[string]string{
		"clip.wav":        ".wav",
		"clip.MP3":        ".mp3",
		"voice.note.flac": ".flac",
		"recording":       DefaultAudioExt,
		"notes.txt":       DefaultAudioExt,
		".hidden":         DefaultAudioExt,
		"":                DefaultAudioExt,
	}
	for in, want := range tests {
		if got := AudioExt(in); got != want {
			t.Errorf("AudioExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAudioContentType(t *testing.T) {
	if got := AudioContentType(".mp3"); got != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", got)
	}
	if got := AudioContentType(".xyz"); got != "application/octet-stream" {
		t.Errorf("expected octet-stream fallback, got %s", got)
	}
}

func TestStageTempFile(t *testing.T) {
	dir := t.TempDir()

	path, size, release, err := StageTempFile(dir, ".ogg", strings.NewReader("abcdef"))
	if err != nil {
		t.Fatalf("StageTempFile failed: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("expected file in %s, got %s", dir, path)
	}
	if filepath.Ext(path) != ".ogg" {
		t.Errorf("expected .ogg extension, got %s", path)
	}
	if size != 6 {
		t.Errorf("expected size 6, got %d", size)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if string(data) != "abcdef" {
		t.Errorf("unexpected content %q", data)
	}

	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", path)
	}

	// second release is a no-op
	if err := release(); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}
}

func TestStageTempFileUniqueNames(t *testing.T) {
	dir := t.TempDir()

	p1, _, r1, err := StageTempFile(dir, ".wav", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("StageTempFile failed: %v", err)
	}
	defer r1()
	p2, _, r2, err := StageTempFile(dir, ".wav", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("StageTempFile failed: %v", err)
	}
	defer r2()

	if p1 == p2 {
		t.Errorf("expected distinct paths, both were %s", p1)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestStageTempFileCleansUpOnWriteError(t *testing.T) {
	dir := t.TempDir()

	_, _, _, err := StageTempFile(dir, ".wav", failingReader{})
	if err == nil {
		t.Fatal("expected error from failing reader")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty temp dir, found %d entries", len(entries))
	}
}
