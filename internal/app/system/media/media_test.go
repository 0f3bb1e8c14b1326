package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func pngOf(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{uint8(x), uint8(y), 120, 255}
			if noisy {
				c = color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	tests := []struct{ w, h, ww, wh int }{
		{800, 600, 800, 600},
		{2160, 1080, 1080, 540},
		{1080, 4320, 270, 1080},
	}
	for _, tt := range tests {
		if w, h := fit(tt.w, tt.h, MaxDimension); w != tt.ww || h != tt.wh {
			t.Errorf("fit(%d,%d) = %d,%d want %d,%d", tt.w, tt.h, w, h, tt.ww, tt.wh)
		}
	}
}

func TestCompress_ProducesBoundedWebP(t *testing.T) {
	out, err := Compress(bytes.NewReader(pngOf(t, 1400, 900, true)))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("RIFF")) || !bytes.Contains(out[:16], []byte("WEBP")) {
		t.Fatal("output is not a WebP container")
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		t.Errorf("dimensions %v exceed %d", b, MaxDimension)
	}
}

func TestCompress_RejectsGarbage(t *testing.T) {
	if _, err := Compress(strings.NewReader("not an image")); err == nil {
		t.Error("expected error")
	}
}

func TestService_DataURLFallback(t *testing.T) {
	store := &DataURLStore{}
	svc := NewService(store, nil, zap.NewNop())
	ctx := context.Background()

	url, err := svc.SaveImage(ctx, KindPhoto, bytes.NewReader(pngOf(t, 64, 64, false)))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/webp;base64,") {
		t.Errorf("got %q", url[:min(40, len(url))])
	}

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF")
	url, err = svc.SaveDocument(ctx, KindLetter, bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if !strings.HasPrefix(url, "data:application/pdf;base64,") {
		t.Errorf("PDF should be stored unmodified, got %q", url[:min(40, len(url))])
	}

	used, _ := svc.Usage(ctx)
	if used == 0 {
		t.Error("usage should be tracked")
	}
	if over, _ := svc.OverLimit(ctx, 4.3); over {
		t.Error("a few bytes cannot exceed the limit")
	}
	if over, _ := svc.OverLimit(ctx, 0); !over {
		t.Error("any usage exceeds a zero limit")
	}
}
