package login_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/features/login"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	"github.com/dalemusser/sangathan/internal/app/system/ratelimit"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/sangathan/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, limiter *ratelimit.LoginLimiter) (*login.Handler, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t, nil)
	h := login.NewHandler(env.Members, env.Sessions, uierrors.NewErrorLogger(zap.NewNop()), env.AuditLog, limiter, nil, zap.NewNop())
	return h, env
}

func postLogin(h *login.Handler, mobile string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/login", map[string]string{"mobile": mobile}))
	return rec
}

func TestHandleLogin(t *testing.T) {
	h, env := newTestHandler(t, nil)
	env.AddUser(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	env.AddUser(t, "Blocked", "9000000001", "Gaya", models.RoleMember, models.StatusSuspended)

	tests := []struct {
		name     string
		mobile   string
		want     int
		contains string
	}{
		{"approved", "93417 49399", http.StatusOK, `"name":"Test Admin"`},
		{"unknown", "9111111111", http.StatusNotFound, "User not found! Please sign up."},
		{"suspended", "9000000001", http.StatusForbidden, "Your account has been suspended."},
		{"malformed", "12345", http.StatusBadRequest, "mobile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(h, tt.mobile)
			rec.AssertStatus(t, tt.want)
			rec.AssertContains(t, tt.contains)
		})
	}

	if got := env.AuditEvents(t, audit.EventLoginSuccess); len(got) != 1 {
		t.Errorf("login_success events: got %d, want 1", len(got))
	}
	if got := env.AuditEvents(t, audit.EventLoginFailedUserNotFound); len(got) != 1 {
		t.Errorf("not-found events: got %d, want 1", len(got))
	}
}

func TestHandleLogin_SetsSessionCookie(t *testing.T) {
	h, env := newTestHandler(t, nil)
	env.AddUser(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	rec := postLogin(h, "9123456789")
	rec.AssertStatus(t, http.StatusOK)
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie")
	}
}

func TestHandleLogin_FormEncoded(t *testing.T) {
	h, env := newTestHandler(t, nil)
	env.AddUser(t, "Rahul Singh", "9988776655", "Gaya", models.RoleMember, models.StatusPending)

	req := httptest.NewRequest("POST", "/login", strings.NewReader("mobile=9988776655"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "awaiting approval")
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h, env := newTestHandler(t, ratelimit.NewLoginLimiter(100, 2, zap.NewNop()))
	env.AddUser(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	postLogin(h, "9111111111")
	postLogin(h, "9111111111")
	rec := postLogin(h, "9111111111")
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, ratelimit.MsgTooManyForAccount)

	if got := env.AuditEvents(t, audit.EventLoginFailedRateLimit); len(got) != 1 {
		t.Errorf("rate-limit events: got %d, want 1", len(got))
	}

	// A different number is not affected.
	postLogin(h, "9123456789").AssertStatus(t, http.StatusOK)
}

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func signupRequest(t *testing.T, fields map[string]string, letter []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if letter != nil {
		fw, err := mw.CreateFormFile("appointment_letter", "letter.pdf")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(letter)
	}
	_ = mw.Close()
	req := httptest.NewRequest("POST", "/login/signup", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validSignup() map[string]string {
	return map[string]string{
		"name":         "sunita devi",
		"father_name":  "Ram Prasad",
		"mobile":       "9876543210",
		"district":     "Muzaffarpur",
		"designation":  "Mahila Morcha",
		"jurisdiction": "Kanti Block",
	}
}

func TestHandleSignup(t *testing.T) {
	h, env := newTestHandler(t, nil)

	rec := testutil.NewRecorder()
	h.HandleSignup(rec, signupRequest(t, validSignup(), pdf))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"status":"PENDING"`)
	rec.AssertContains(t, "Sunita Devi")
	if len(rec.Result().Cookies()) == 0 {
		t.Error("signup should sign the new member in")
	}
	if got := env.AuditEvents(t, audit.EventSignup); len(got) != 1 {
		t.Errorf("signup events: got %d, want 1", len(got))
	}

	// Same number again.
	rec = testutil.NewRecorder()
	h.HandleSignup(rec, signupRequest(t, validSignup(), pdf))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleSignup_LetterRequired(t *testing.T) {
	h, env := newTestHandler(t, nil)

	rec := testutil.NewRecorder()
	h.HandleSignup(rec, signupRequest(t, validSignup(), nil))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "appointment_letter")

	if n, _ := env.Members.Count(t.Context()); n != 0 {
		t.Errorf("no user should be stored, got %d", n)
	}
}
