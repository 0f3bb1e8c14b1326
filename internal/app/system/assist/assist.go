// Package assist wraps Gemini for notice polishing and image generation.
//
// Text enhancement never fails from the caller's point of view: with no API
// key, or when every retry fails, the original text comes back unchanged.
// Image operations have no useful fallback and return an error instead.
package assist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"

	enhanceSystemPrompt = "You polish official notices for a political party cell in Bihar. " +
		"Fix grammar and make the notice clear and respectful. Keep the original language " +
		"(Hindi or English), every date, time, place and name. Reply with the notice text only."

	maxRetries = 3
)

var (
	ErrDisabled = errors.New("generative assistance is not configured")
	ErrNoImage  = errors.New("model returned no image")
	ErrNoText   = errors.New("model returned no text")
)

// Config selects the API key and models.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// backend is the slice of the Gemini API this package uses.
type backend interface {
	text(ctx context.Context, prompt string) (string, error)
	image(ctx context.Context, prompt string, src []byte, mime string) ([]byte, error)
	close() error
}

// Client performs assistance calls. A Client with no API key is valid and
// reports Enabled() == false.
type Client struct {
	be      backend
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New connects to Gemini when cfg.APIKey is set.
func New(ctx context.Context, cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	c := &Client{log: logger, metrics: m}
	if cfg.APIKey == "" {
		logger.Info("generative assistance disabled; no API key")
		return c, nil
	}
	be, err := newGemini(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.be = be
	return c, nil
}

func (c *Client) Enabled() bool { return c != nil && c.be != nil }

// Close releases the underlying client.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.be.close()
}

// EnhanceNotice returns improved text and true, or text unchanged and false.
func (c *Client) EnhanceNotice(ctx context.Context, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !c.Enabled() {
		return text, false
	}
	out, err := retry(ctx, func() (string, error) { return c.be.text(ctx, text) })
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		c.log.Warn("notice enhancement failed; keeping original", zap.Error(err))
		c.metrics.Assist("enhance", false)
		return text, false
	}
	c.metrics.Assist("enhance", true)
	return out, true
}

// GenerateImage renders prompt to image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	img, err := retry(ctx, func() ([]byte, error) { return c.be.image(ctx, prompt, nil, "") })
	c.metrics.Assist("generate_image", err == nil)
	return img, err
}

// EditImage applies prompt to src.
func (c *Client) EditImage(ctx context.Context, src []byte, prompt string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	mime := http.DetectContentType(src)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("edit image: unsupported content type %s", mime)
	}
	img, err := retry(ctx, func() ([]byte, error) { return c.be.image(ctx, prompt, src, mime) })
	c.metrics.Assist("edit_image", err == nil)
	return img, err
}

// retry runs op with exponential backoff. Empty responses and cancelled
// contexts are not retried.
func retry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
		backoff.WithMaxInterval(4*time.Second),
	), maxRetries)

	var out T
	err := backoff.Retry(func() error {
		var err error
		out, err = op()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrNoImage), errors.Is(err, ErrNoText),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	return out, err
}

/*─────────────────────────────────────────────────────────────────────────────*
| Gemini backend                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type gemini struct {
	client     *genai.Client
	textModel  *genai.GenerativeModel
	imageModel *genai.GenerativeModel
}

func newGemini(ctx context.Context, cfg Config) (*gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	textName := cfg.TextModel
	if textName == "" {
		textName = DefaultTextModel
	}
	imageName := cfg.ImageModel
	if imageName == "" {
		imageName = DefaultImageModel
	}

	tm := client.GenerativeModel(textName)
	tm.SystemInstruction = genai.NewUserContent(genai.Text(enhanceSystemPrompt))
	tm.SetTemperature(0.4)
	tm.GenerationConfig.ResponseMIMEType = "text/plain"

	return &gemini{client: client, textModel: tm, imageModel: client.GenerativeModel(imageName)}, nil
}

func (g *gemini) text(ctx context.Context, prompt string) (string, error) {
	resp, err := g.textModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", ErrNoText
	}
	return sb.String(), nil
}

func (g *gemini) image(ctx context.Context, prompt string, src []byte, mime string) ([]byte, error) {
	parts := []genai.Part{}
	if len(src) > 0 {
		parts = append(parts, genai.Blob{MIMEType: mime, Data: src})
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := g.imageModel.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, err
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if b, ok := p.(genai.Blob); ok && strings.HasPrefix(b.MIMEType, "image/") {
				return b.Data, nil
			}
		}
	}
	return nil, ErrNoImage
}

func (g *gemini) close() error { return g.client.Close() }
