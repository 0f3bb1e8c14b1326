// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventQuerier reads stored audit events. audit.Store and audit.MemStore
// both satisfy it.
type EventQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// UserLookup resolves actor and target names for display.
type UserLookup interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Handler struct {
	Events EventQuerier
	Users  UserLookup
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs the audit log feature handler.
func NewHandler(events EventQuerier, users UserLookup, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Users:  users,
		Log:    logger,
		ErrLog: errLog,
	}
}
