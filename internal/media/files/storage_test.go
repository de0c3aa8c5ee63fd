package files

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	path, err := s.Put("abc123.png", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if filepath.Base(path) != "abc123.png" {
		t.Errorf("unexpected path %q", path)
	}

	got, err := s.Get("abc123.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "image-bytes" {
		t.Errorf("Get: got %q", got)
	}
}

func TestPutIdempotent(t *testing.T) {
	s := newTestStorage(t)

	first, err := s.Put("key.jpg", []byte("same"))
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	second, err := s.Put("key.jpg", []byte("same"))
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.Get("nope.png"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Delete("never-existed.png"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestStagingPromote(t *testing.T) {
	s := newTestStorage(t)

	f, err := s.NewStagingFile()
	if err != nil {
		t.Fatalf("NewStagingFile: %v", err)
	}
	if _, err := f.Write([]byte("staged")); err != nil {
		t.Fatalf("write staging: %v", err)
	}
	staged := f.Name()
	if err := f.Close(); err != nil {
		t.Fatalf("close staging: %v", err)
	}

	final, err := s.Promote(staged, "deadbeef.webm")
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staging file still present after promote")
	}

	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("read promoted: %v", err)
	}
	if string(data) != "staged" {
		t.Errorf("promoted contents: got %q", data)
	}
}

func TestPromoteExistingKeepsOriginal(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.Put("key.bin", []byte("original")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	f, err := s.NewStagingFile()
	if err != nil {
		t.Fatalf("NewStagingFile: %v", err)
	}
	if _, err := f.Write([]byte("original")); err != nil {
		t.Fatalf("write: %v", err)
	}
	staged := f.Name()
	f.Close()

	path, err := s.Promote(staged, "key.bin")
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("contents changed: %q", data)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staged duplicate not removed")
	}
}
