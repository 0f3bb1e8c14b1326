package assist

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeBackend struct {
	textCalls int
	textErr   error
	textOut   string
	imgOut    []byte
	imgErr    error
	gotSrc    []byte
	gotMime   string
}

func (f *fakeBackend) text(ctx context.Context, prompt string) (string, error) {
	f.textCalls++
	return f.textOut, f.textErr
}

func (f *fakeBackend) image(ctx context.Context, prompt string, src []byte, mime string) ([]byte, error) {
	f.gotSrc, f.gotMime = src, mime
	return f.imgOut, f.imgErr
}

func (f *fakeBackend) close() error { return nil }

func TestEnhanceNotice_DisabledReturnsOriginal(t *testing.T) {
	c, err := New(context.Background(), Config{}, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok := c.EnhanceNotice(context.Background(), "  Meeting at 5  ")
	if ok || got != "Meeting at 5" {
		t.Errorf("got %q, %v", got, ok)
	}
	if _, err := c.GenerateImage(context.Background(), "flag"); !errors.Is(err, ErrDisabled) {
		t.Errorf("GenerateImage: got %v, want ErrDisabled", err)
	}
}

func TestEnhanceNotice_Success(t *testing.T) {
	fb := &fakeBackend{textOut: " Meeting today at 5 PM. \n"}
	c := &Client{be: fb, log: zap.NewNop()}

	got, ok := c.EnhanceNotice(context.Background(), "meeting 5 today")
	if !ok || got != "Meeting today at 5 PM." {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestEnhanceNotice_FailureFallsBack(t *testing.T) {
	fb := &fakeBackend{textErr: ErrNoText}
	c := &Client{be: fb, log: zap.NewNop()}

	got, ok := c.EnhanceNotice(context.Background(), "original")
	if ok || got != "original" {
		t.Errorf("got %q, %v", got, ok)
	}
	if fb.textCalls != 1 {
		t.Errorf("empty responses must not be retried, calls=%d", fb.textCalls)
	}
}

func TestEnhanceNotice_CancelledContext(t *testing.T) {
	fb := &fakeBackend{textErr: context.Canceled}
	c := &Client{be: fb, log: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got, ok := c.EnhanceNotice(ctx, "x"); ok || got != "x" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestEditImage(t *testing.T) {
	fb := &fakeBackend{imgOut: []byte("img")}
	c := &Client{be: fb, log: zap.NewNop()}

	png := []byte("\x89PNG\r\n\x1a\n0000")
	out, err := c.EditImage(context.Background(), png, "add a flag")
	if err != nil || string(out) != "img" {
		t.Fatalf("EditImage: %q, %v", out, err)
	}
	if fb.gotMime != "image/png" {
		t.Errorf("mime: got %q", fb.gotMime)
	}

	if _, err := c.EditImage(context.Background(), []byte("plain text"), "x"); err == nil {
		t.Error("expected error for non-image input")
	}
}
