package ingest

import (
	"bytes"

	"github.com/pictorapp/pictor-server/internal/domain"
)

// sniffResult pairs a detected media kind with its canonical file extension.
type sniffResult struct {
	Kind domain.MediaKind
	Ext  string
}

// sniffHeaderSize is how many leading bytes Sniff needs at most.
const sniffHeaderSize = 32

// Sniff detects the media kind from the leading bytes of the upload.
// Detection is by content only; the declared filename is never consulted.
// Returns ok=false for unrecognized content.
func Sniff(head []byte) (sniffResult, bool) {
	switch {
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
		return sniffResult{domain.MediaImage, "jpg"}, true
	case bytes.HasPrefix(head, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return sniffResult{domain.MediaImage, "png"}, true
	case bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a")):
		return sniffResult{domain.MediaImage, "gif"}, true
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return sniffResult{domain.MediaImage, "webp"}, true
	case len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")):
		// ISO base media container: mp4 family and QuickTime.
		brand := string(head[8:12])
		if brand == "qt  " {
			return sniffResult{domain.MediaVideo, "mov"}, true
		}
		return sniffResult{domain.MediaVideo, "mp4"}, true
	case bytes.HasPrefix(head, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		// EBML header: both webm and mkv. The distinction doesn't matter
		// here; ffprobe reads the real container.
		return sniffResult{domain.MediaVideo, "webm"}, true
	default:
		return sniffResult{}, false
	}
}
