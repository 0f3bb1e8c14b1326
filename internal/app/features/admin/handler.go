// internal/app/features/admin/handler.go
package admin

import (
	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"go.uber.org/zap"
)

// Handler serves the review queue and the per-member admin actions. Every
// action is re-authorized by the membership service; the route guards only
// keep members out of the admin surface.
type Handler struct {
	Members *membership.Service
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(members *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Members: members, ErrLog: errLog, Log: logger}
}
