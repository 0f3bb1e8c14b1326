// Package errors maps service errors to JSON responses. Callers import it as
// uierrors.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	meetingstore "github.com/dalemusser/sangathan/internal/app/store/meetings"
	poststore "github.com/dalemusser/sangathan/internal/app/store/posts"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/assist"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/idcard"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string                `json:"error"`
	Fields []inputval.FieldError `json:"fields,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg} with status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	var ve *inputval.Error
	var de *adminpolicy.DeniedError
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &ve):
		return http.StatusBadRequest
	case stderrors.As(err, &de):
		return http.StatusForbidden
	case stderrors.Is(err, membership.ErrAccountSuspended),
		stderrors.Is(err, membership.ErrAccountNotFound),
		stderrors.Is(err, idcard.ErrNotApproved):
		return http.StatusForbidden
	case stderrors.Is(err, membership.ErrUserNotFound),
		stderrors.Is(err, membership.ErrMemberNotFound),
		stderrors.Is(err, bulletin.ErrPostNotFound),
		stderrors.Is(err, bulletin.ErrNoticeNotFound),
		stderrors.Is(err, bulletin.ErrMeetingNotFound),
		stderrors.Is(err, userstore.ErrNotFound),
		stderrors.Is(err, poststore.ErrNotFound),
		stderrors.Is(err, meetingstore.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, userstore.ErrDuplicateMobile),
		stderrors.Is(err, userstore.ErrVersionConflict),
		stderrors.Is(err, membership.ErrMembersLimit),
		stderrors.Is(err, auth.ErrLikeLimit):
		return http.StatusConflict
	case stderrors.Is(err, media.ErrUnsupported):
		return http.StatusBadRequest
	case stderrors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, assist.ErrDisabled):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, assist.ErrNoImage), stderrors.Is(err, assist.ErrNoText):
		return http.StatusBadGateway
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// PublicMessage returns text safe to show for err. Server errors never
// expose their cause.
func PublicMessage(err error) string {
	var ve *inputval.Error
	var de *adminpolicy.DeniedError
	switch {
	case stderrors.As(err, &ve):
		return ve.Error()
	case stderrors.As(err, &de):
		return de.Reason
	case stderrors.Is(err, membership.ErrUserNotFound):
		return membership.MsgUserNotFound
	case stderrors.Is(err, membership.ErrAccountSuspended):
		return membership.MsgAccountSuspended
	case stderrors.Is(err, membership.ErrAccountNotFound):
		return membership.MsgAccountNotFound
	case stderrors.Is(err, membership.ErrMembersLimit):
		return "Members limit reached."
	case stderrors.Is(err, auth.ErrLikeLimit):
		return "You have liked too many posts in this session. Unlike one first."
	case stderrors.Is(err, userstore.ErrDuplicateMobile):
		return "This mobile number is already registered."
	case stderrors.Is(err, userstore.ErrVersionConflict):
		return "This record was changed by someone else. Please try again."
	case stderrors.Is(err, idcard.ErrNotApproved):
		return "The identity card is available once your membership is approved."
	case stderrors.Is(err, media.ErrUnsupported):
		return "Please upload a JPEG, PNG or WebP image."
	case stderrors.Is(err, media.ErrTooLarge):
		return "The file is too large."
	case stderrors.Is(err, assist.ErrDisabled):
		return "AI assistance is not available."
	}
	status := StatusFor(err)
	if status == http.StatusNotFound {
		return "Not found."
	}
	return http.StatusText(status)
}

// ErrorLogger writes error replies and logs the ones that are our fault.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err and replies 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, zap.Error(err), zap.String("method", r.Method), zap.String("path", r.URL.Path))
	WriteError(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs at debug and replies 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Debug(msg, zap.Error(err), zap.String("path", r.URL.Path))
	WriteError(w, http.StatusBadRequest, userMsg)
}

// Handle replies for err using StatusFor. 5xx responses are logged with msg.
func (e *ErrorLogger) Handle(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		e.log.Error(msg, zap.Error(err), zap.Int("status", status),
			zap.String("method", r.Method), zap.String("path", r.URL.Path))
	}
	resp := ErrorResponse{Error: PublicMessage(err)}
	var ve *inputval.Error
	if stderrors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	WriteJSON(w, status, resp)
}

// Handler serves the fallback pages RequireRole and RequireSignedIn redirect to.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	msg := "You don't have permission to view this page."
	if u, ok := auth.CurrentUser(r); ok && u.Status != "" && u.Status != models.StatusApproved {
		msg = "Your account is not active."
	}
	WriteError(w, http.StatusForbidden, msg)
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusUnauthorized, "Please sign in to continue.")
}
