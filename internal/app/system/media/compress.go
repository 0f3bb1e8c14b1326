// Package media turns uploaded photos, appointment letters and post images
// into small WebP blobs and stores them.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/dalemusser/sangathan/internal/app/system/limits"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds the long side of a stored image.
	MaxDimension = 1080
	// TargetBytes is the upper edge of the size band for a stored image.
	TargetBytes = 60 * 1024

	shrinkFactor = 0.8
	maxAttempts  = 10
)

var (
	ErrUnsupported = errors.New("unsupported image format")
	ErrTooLarge    = errors.New("upload too large")
)

// Compress decodes a JPEG, PNG or WebP image, scales it to MaxDimension and
// encodes WebP, shrinking further until the blob fits TargetBytes or the
// attempts run out. The smallest encoding is returned either way.
func Compress(r io.Reader) ([]byte, error) {
	data, err := readLimited(r)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), MaxDimension)
	var out []byte
	for attempt := 0; attempt < maxAttempts; attempt++ {
		enc, err := encode(scale(src, w, h))
		if err != nil {
			return nil, err
		}
		out = enc
		if len(out) <= TargetBytes || w <= 16 || h <= 16 {
			break
		}
		w = int(float64(w) * shrinkFactor)
		h = int(float64(h) * shrinkFactor)
	}
	return out, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limits.MaxImageUpload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > limits.MaxImageUpload {
		return nil, ErrTooLarge
	}
	return data, nil
}

// fit scales (w, h) so the long side is at most limit, keeping aspect.
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

func scale(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
