package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// MongoCheck pings the primary.
func MongoCheck(client *mongo.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Backend string
	Check   Check
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. A nil check always passes, which
// is what the in-memory backend wants.
func NewHandler(backend string, check Check, logger *zap.Logger) *Handler {
	return &Handler{Backend: backend, Check: check, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"mongo", "database":"connected" }
//
// On store failure: 503 and
//
//	{ "status":"error", "backend":"mongo", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "ok", Backend: h.Backend, Database: "connected"}

	if h.Check != nil {
		if err := h.Check(ctx); err != nil {
			h.Log.Error("health-check: store ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}
