// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: the MongoDB ObjectID (_id) of a user record
//   - Mobile: the ten-digit number a member types to sign in

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/system/auditlog"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/dalemusser/sangathan/internal/app/system/ratelimit"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Members    *membership.Service
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter // nil disables rate limiting
	Metrics    *metrics.Metrics
}

func NewHandler(
	members *membership.Service,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	auditLog *auditlog.Logger,
	limiter *ratelimit.LoginLimiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Members:    members,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   auditLog,
		Limiter:    limiter,
		Metrics:    m,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Wire types                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type loginRequest struct {
	Mobile string `json:"mobile"`
}

type loginResponse struct {
	User directorypolicy.MemberView `json:"user"`
	// StorageWarning is set for a super admin when media storage is over
	// its limit.
	StorageWarning bool   `json:"storage_warning,omitempty"`
	Message        string `json:"message,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin signs a member in by mobile number.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if formutil.IsJSON(r) {
		if err := formutil.Decode(w, r, &in); err != nil {
			h.ErrLog.Handle(w, r, "login: decode", err)
			return
		}
	} else {
		in.Mobile = r.FormValue("mobile")
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Mobile); !ok {
			h.Metrics.Login(metrics.LoginLimited)
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, in.Mobile)
			uierrors.WriteError(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Members.Login(ctx, in.Mobile)
	switch {
	case errors.Is(err, membership.ErrUserNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, in.Mobile)
	case errors.Is(err, membership.ErrAccountSuspended), errors.Is(err, membership.ErrAccountNotFound):
		h.AuditLog.LoginFailedSuspended(ctx, r, u.ID)
	}
	if err != nil {
		h.ErrLog.Handle(w, r, "login: lookup", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUserFrom(u)); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Could not sign you in. Please try again.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetMobile(r, in.Mobile)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.District)
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))

	resp := loginResponse{User: directorypolicy.Mask(u, u)}
	if u.Role == models.RoleSuperAdmin {
		resp.StorageWarning, _ = h.Members.StorageCheck(ctx)
	}
	if u.Status == models.StatusPending {
		resp.Message = "Your membership is awaiting approval."
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/signup                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSignup registers a member from a multipart form carrying the
// appointment letter and an optional photo, then signs them in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := formutil.ParseMultipart(r); err != nil {
		h.ErrLog.Handle(w, r, "signup: parse form", err)
		return
	}
	letter, err := formutil.File(r, "appointment_letter")
	if err != nil {
		h.ErrLog.Handle(w, r, "signup: letter", err)
		return
	}
	defer formutil.Close(letter)
	photo, err := formutil.File(r, "photo")
	if err != nil {
		h.ErrLog.Handle(w, r, "signup: photo", err)
		return
	}
	defer formutil.Close(photo)

	in := membership.SignupInput{
		Name:         r.FormValue("name"),
		FatherName:   r.FormValue("father_name"),
		Mobile:       r.FormValue("mobile"),
		District:     r.FormValue("district"),
		Designation:  r.FormValue("designation"),
		Jurisdiction: r.FormValue("jurisdiction"),
		Letter:       letter,
		Photo:        photo,
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "signup")
	defer cancel()

	u, err := h.Members.Signup(ctx, in)
	if errors.Is(err, membership.ErrMembersLimit) {
		uierrors.WriteError(w, http.StatusConflict, h.Members.MembersLimitMessage())
		return
	}
	if err != nil {
		h.ErrLog.Handle(w, r, "signup", err)
		return
	}

	h.AuditLog.Signup(ctx, r, u.ID, u.District)
	if err := h.SessionMgr.SignIn(w, r, auth.SessionUserFrom(&u)); err != nil {
		h.ErrLog.LogServerError(w, r, "signup: save session", err, "Signed up, but could not sign you in. Please log in.")
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, loginResponse{
		User:    directorypolicy.Mask(&u, &u),
		Message: "Signup submitted. Your membership is awaiting approval.",
	})
}
