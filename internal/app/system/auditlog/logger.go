// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/sangathan/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config selects where each category goes.
// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off".
type Config struct {
	Auth  string
	Admin string
}

// Store is where audit events are persisted. Both the Mongo and in-memory
// audit stores satisfy it.
type Store interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to the store and to zap.
type Logger struct {
	store  Store
	zapLog *zap.Logger
	config Config
}

func New(store Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.District != "" {
		fields = append(fields, zap.String("district", event.District))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's setting.
// A nil Logger is a no-op so tests can pass nil.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, district string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		District:  district,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// LoginFailedUserNotFound logs an attempt with an unknown mobile number.
// Only the last four digits are kept.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, mobile string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "user not found",
		Details:       map[string]string{"mobile_suffix": suffix(mobile)},
	})
}

func (l *Logger) LoginFailedSuspended(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedSuspended,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "account suspended",
	})
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, mobile string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"mobile_suffix": suffix(mobile)},
	})
}

func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID, district string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignup,
		UserID:    &userID,
		District:  district,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// Logout accepts the session's string ID.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Admin Events ---

// Admin logs a successful administrative action by actor on target.
// target may be nil for actions without a user object.
func (l *Logger) Admin(ctx context.Context, eventType string, actor primitive.ObjectID, target *primitive.ObjectID, district string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actor,
		UserID:    target,
		District:  district,
		Success:   true,
		Details:   details,
	})
}

// Denied logs a mutation the authorizer refused.
func (l *Logger) Denied(ctx context.Context, actor primitive.ObjectID, action, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventAccessDenied,
		ActorID:       &actor,
		FailureReason: reason,
		Details:       map[string]string{"action": action},
	})
}

// --- System Events ---

func (l *Logger) RetentionSweep(ctx context.Context, removed int64, cutoff time.Time) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySystem,
		EventType: audit.EventRetentionSweep,
		Success:   true,
		Details: map[string]string{
			"removed": strconv.FormatInt(removed, 10),
			"cutoff":  cutoff.UTC().Format(time.RFC3339),
		},
	})
}

func suffix(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return mobile[len(mobile)-4:]
}
