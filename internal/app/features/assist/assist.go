// internal/app/features/assist/assist.go
package assist

import (
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/system/assist"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/limits"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxPromptLength = 1000

type enhanceRequest struct {
	Text string `json:"text"`
}

type enhanceResponse struct {
	Text     string `json:"text"`
	Enhanced bool   `json:"enhanced"`
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	URL string `json:"url"`
}

func prompt(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", inputval.Invalid("prompt", "Describe the image you want.")
	}
	if len([]rune(s)) > maxPromptLength {
		return "", inputval.Invalid("prompt", "Prompt is too long.")
	}
	return s, nil
}

// HandleEnhance handles POST /assist/enhance. It always answers 200; when
// the model is unavailable the text comes back unchanged with enhanced=false.
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	var in enhanceRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "assist: decode", err)
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		h.ErrLog.Handle(w, r, "assist: enhance", inputval.Invalid("text", "Text is required."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "enhance notice")
	defer cancel()

	text, ok := h.Assist.EnhanceNotice(ctx, in.Text)
	uierrors.WriteJSON(w, http.StatusOK, enhanceResponse{Text: text, Enhanced: ok})
}

// HandleImage handles POST /assist/image.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if !h.Assist.Enabled() {
		h.ErrLog.Handle(w, r, "assist: image", assist.ErrDisabled)
		return
	}
	var in imageRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "assist: decode", err)
		return
	}
	p, err := prompt(in.Prompt)
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: image", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "generate image")
	defer cancel()

	img, err := h.Assist.GenerateImage(ctx, p)
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: generate image", err)
		return
	}
	h.store(w, r, img)
}

// HandleEdit handles POST /assist/image/edit with a multipart image and prompt.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if !h.Assist.Enabled() {
		h.ErrLog.Handle(w, r, "assist: edit", assist.ErrDisabled)
		return
	}
	if err := formutil.ParseMultipart(r); err != nil {
		h.ErrLog.Handle(w, r, "assist: parse form", err)
		return
	}
	p, err := prompt(r.FormValue("prompt"))
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: edit", err)
		return
	}
	file, err := formutil.File(r, "image")
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: image file", err)
		return
	}
	if file == nil {
		h.ErrLog.Handle(w, r, "assist: edit", inputval.Invalid("image", "Choose an image to edit."))
		return
	}
	defer formutil.Close(file)

	src, err := io.ReadAll(io.LimitReader(file, limits.MaxImageUpload+1))
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: read image", err)
		return
	}
	if len(src) > limits.MaxImageUpload {
		h.ErrLog.Handle(w, r, "assist: read image", media.ErrTooLarge)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "edit image")
	defer cancel()

	img, err := h.Assist.EditImage(ctx, src, p)
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: edit image", err)
		return
	}
	h.store(w, r, img)
}

// store compresses generated output into the media store so it can be
// attached to a post like any upload.
func (h *Handler) store(w http.ResponseWriter, r *http.Request, img []byte) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "save generated image")
	defer cancel()

	url, err := h.Media.SaveEncoded(ctx, "generated", img)
	if err != nil {
		h.ErrLog.Handle(w, r, "assist: save image", err)
		return
	}
	h.Log.Debug("generated image stored", zap.Int("bytes", len(img)))
	uierrors.WriteJSON(w, http.StatusCreated, imageResponse{URL: url})
}
