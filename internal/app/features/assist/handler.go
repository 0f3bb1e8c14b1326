// internal/app/features/assist/handler.go
package assist

import (
	"context"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"go.uber.org/zap"
)

// Assistant is the generative backend. *assist.Client satisfies it.
type Assistant interface {
	Enabled() bool
	EnhanceNotice(ctx context.Context, text string) (string, bool)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	EditImage(ctx context.Context, src []byte, prompt string) ([]byte, error)
}

// Handler serves the admin writing and image helpers.
type Handler struct {
	Assist Assistant
	Media  *media.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(a Assistant, mediaSvc *media.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Assist: a,
		Media:  mediaSvc,
		ErrLog: errLog,
		Log:    logger,
	}
}
