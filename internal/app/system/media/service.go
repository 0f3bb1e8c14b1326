package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kinds of stored media, used as key prefixes.
const (
	KindPhoto  = "photo"
	KindLetter = "letter"
	KindPost   = "post"
	KindAssist = "assist"

	keyPrefix = "media/"
)

// Service compresses uploads and hands them to a Storage.
type Service struct {
	store   Storage
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewService(store Storage, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{store: store, metrics: m, log: logger}
}

// SaveImage compresses an image upload and stores it.
func (s *Service) SaveImage(ctx context.Context, kind string, r io.Reader) (string, error) {
	blob, err := Compress(r)
	if err != nil {
		return "", err
	}
	return s.put(ctx, kind, blob, "image/webp", ".webp")
}

// SaveDocument stores an appointment letter or similar upload. PDFs are kept
// as uploaded; images go through Compress.
func (s *Service) SaveDocument(ctx context.Context, kind string, r io.Reader) (string, error) {
	data, err := readLimited(r)
	if err != nil {
		return "", err
	}
	if ct := http.DetectContentType(data); ct == "application/pdf" {
		return s.put(ctx, kind, data, ct, ".pdf")
	}
	blob, err := Compress(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return s.put(ctx, kind, blob, "image/webp", ".webp")
}

// SaveEncoded stores an already-encoded image, such as generated output.
func (s *Service) SaveEncoded(ctx context.Context, kind string, data []byte) (string, error) {
	blob, err := Compress(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return s.put(ctx, kind, blob, "image/webp", ".webp")
}

// Usage reports the bytes held by the store.
func (s *Service) Usage(ctx context.Context) (int64, error) {
	return s.store.Usage(ctx)
}

// OverLimit reports whether usage exceeds limitGB. A usage error counts as
// not over the limit.
func (s *Service) OverLimit(ctx context.Context, limitGB float64) (bool, int64) {
	used, err := s.store.Usage(ctx)
	if err != nil {
		s.log.Warn("media usage check failed", zap.Error(err))
		return false, 0
	}
	return float64(used) > limitGB*(1<<30), used
}

func (s *Service) put(ctx context.Context, kind string, data []byte, contentType, ext string) (string, error) {
	key := fmt.Sprintf("%s%s/%s%s", keyPrefix, kind, uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	s.metrics.MediaStored(int64(len(data)))
	return url, nil
}
