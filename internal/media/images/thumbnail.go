// Package images provides image decoding and thumbnail generation.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/pictorapp/pictor-server/internal/errors"
)

// thumbnailQuality is the JPEG quality used for generated thumbnails.
const thumbnailQuality = 85

// Decoded holds a decoded image and its pixel dimensions.
type Decoded struct {
	Image  image.Image
	Width  int
	Height int
}

// Decode decodes an image from raw bytes. Returns UnsupportedMediaType
// for formats without a registered decoder and MediaProcessingFailed for
// corrupt data in a known format.
func Decode(data []byte) (*Decoded, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, errors.UnsupportedMedia("unrecognized image format")
		}
		return nil, errors.MediaProcessing(fmt.Sprintf("decode %s image: %v", format, err))
	}
	b := img.Bounds()
	return &Decoded{Image: img, Width: b.Dx(), Height: b.Dy()}, nil
}

// Thumbnail scales the image to fit within maxDimension on its longer
// side, preserving aspect ratio, and re-encodes it as JPEG. Images already
// within bounds are re-encoded without scaling.
func Thumbnail(d *Decoded, maxDimension int) ([]byte, error) {
	img := d.Image
	if d.Width > maxDimension || d.Height > maxDimension {
		w, h := fitDimensions(d.Width, d.Height, maxDimension)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, errors.MediaProcessing(fmt.Sprintf("encode thumbnail: %v", err))
	}
	return buf.Bytes(), nil
}

// fitDimensions computes the largest size within maxDimension that keeps
// the source aspect ratio. Both results are at least 1.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if width >= height {
		h := (height * maxDimension) / width
		if h < 1 {
			h = 1
		}
		return maxDimension, h
	}
	w := (width * maxDimension) / height
	if w < 1 {
		w = 1
	}
	return w, maxDimension
}
