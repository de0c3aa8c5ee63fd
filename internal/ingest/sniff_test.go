package ingest

import (
	"testing"

	"github.com/pictorapp/pictor-server/internal/domain"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		kind domain.MediaKind
		ext  string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, domain.MediaImage, "jpg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}, domain.MediaImage, "png"},
		{"gif87", []byte("GIF87a......"), domain.MediaImage, "gif"},
		{"gif89", []byte("GIF89a......"), domain.MediaImage, "gif"},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), domain.MediaImage, "webp"},
		{"mp4", []byte("\x00\x00\x00\x20ftypisom...."), domain.MediaVideo, "mp4"},
		{"mov", []byte("\x00\x00\x00\x14ftypqt  ...."), domain.MediaVideo, "mov"},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01, 0x00}, domain.MediaVideo, "webm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sniff(tt.head)
			if !ok {
				t.Fatal("Sniff returned not ok")
			}
			if got.Kind != tt.kind || got.Ext != tt.ext {
				t.Errorf("got %s/%s, want %s/%s", got.Kind, got.Ext, tt.kind, tt.ext)
			}
		})
	}
}

func TestSniffUnrecognized(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("plain text content"),
		[]byte("%PDF-1.7"),
		{0x00, 0x01, 0x02},
	}
	for _, head := range cases {
		if _, ok := Sniff(head); ok {
			t.Errorf("Sniff(%q) should not be recognized", head)
		}
	}
}

func TestSniffIgnoresFilenames(t *testing.T) {
	// PNG bytes are a PNG no matter what the upload was called.
	head := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	got, ok := Sniff(head)
	if !ok || got.Kind != domain.MediaImage {
		t.Errorf("content detection failed: %v %v", got, ok)
	}
}
