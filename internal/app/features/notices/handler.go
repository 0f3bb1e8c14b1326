// internal/app/features/notices/handler.go
package notices

import (
	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler owns the notice board handlers.
type Handler struct {
	Bulletin   *bulletin.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a notices Handler.
func NewHandler(bulletinSvc *bulletin.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Bulletin:   bulletinSvc,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
	}
}
