package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "sangathan-session"

	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userNameKey = "user_name"
	userRoleKey = "user_role"
	districtKey = "user_district"

	selectedUserKey    = "nav_selected_user"
	selectedMeetingKey = "nav_selected_meeting"
	viewedNoticeKey    = "nav_viewed_notice"
	seenNoticesKey     = "seen_notices"
	likedPostsKey      = "liked_posts"
)

// maxTracked caps the seen and liked sets so the cookie stays under 4KB.
// The seen set drops its oldest entry past the cap; the liked set refuses
// new likes instead, since a forgotten like could be counted twice.
const maxTracked = 30

// MaxLiked is how many posts one session may have liked at a time.
const MaxLiked = maxTracked

// ErrLikeLimit is returned when liking would grow the liked set past MaxLiked.
var ErrLikeLimit = errors.New("auth: liked posts limit reached")

/*─────────────────────────────────────────────────────────────────────────────*
| Session user                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what LoadSessionUser puts in the request context.
type SessionUser struct {
	ID          string
	Name        string
	Mobile      string
	Role        string
	Status      string
	District    string
	Designation string
	PhotoURL    string
}

// SessionUserFrom projects a stored user onto a SessionUser.
func SessionUserFrom(u *models.User) *SessionUser {
	return &SessionUser{
		ID:          u.ID.Hex(),
		Name:        u.Name,
		Mobile:      u.Mobile,
		Role:        u.Role,
		Status:      u.Status,
		District:    u.District,
		Designation: u.Designation,
		PhotoURL:    u.PhotoURL,
	}
}

// ObjectID returns the parsed user ID, or the zero ID.
func (u *SessionUser) ObjectID() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(u.ID)
	return oid
}

// Actor converts the session user to the shape the policies take.
func (u *SessionUser) Actor() *models.User {
	return &models.User{
		ID:          u.ObjectID(),
		Name:        u.Name,
		Mobile:      u.Mobile,
		Role:        u.Role,
		Status:      u.Status,
		District:    u.District,
		Designation: u.Designation,
		PhotoURL:    u.PhotoURL,
	}
}

func (u *SessionUser) IsSuperAdmin() bool { return u.Role == models.RoleSuperAdmin }

// UserFetcher loads the current user record on each request. It returns nil
// when the user may no longer hold a session.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and whether one is signed in.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u directly, bypassing the cookie. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the per-request user lookup.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true) cookies are Secure + SameSite=None so the mobile
// web client can call the API cross-site. Over http://localhost use secure=false.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetUserFetcher enables per-request refresh of the session user.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

func (sm *SessionManager) session(r *http.Request) *sessions.Session {
	// Get returns a fresh session alongside a decode error; a tampered or
	// stale cookie is treated as signed out.
	sess, _ := sm.store.Get(r, sm.name)
	return sess
}

// LoadSessionUser puts the signed-in user into the request context. With a
// fetcher set, a user who was suspended or deleted since signing in is
// signed out here.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.session(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		id := getString(sess, userIDKey)
		var u *SessionUser
		if sm.fetcher != nil {
			u = sm.fetcher.FetchUser(r.Context(), id)
			if u == nil {
				sm.logger.Info("session user no longer active; signing out", zap.String("user_id", id))
				clear(sess.Values)
				sess.Options.MaxAge = -1
				if err := sess.Save(r, w); err != nil {
					sm.logger.Warn("session clear failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
		} else {
			u = &SessionUser{
				ID:       id,
				Name:     getString(sess, userNameKey),
				Role:     getString(sess, userRoleKey),
				District: getString(sess, districtKey),
				Status:   models.StatusApproved,
			}
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn rejects requests with no session user.
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 with a JSON error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole allows only the listed roles (case-insensitive).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SignIn starts a fresh session for u. Any previous navigation and read state
// is dropped.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess := sm.session(r)
	clear(sess.Values)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userRoleKey] = u.Role
	sess.Values[districtKey] = u.District
	return sess.Save(r, w)
}

// SignOut clears the session, including navigation and seen-notice state.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := sm.session(r)
	clear(sess.Values)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Navigation and read state                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Nav is the per-session navigation state.
type Nav struct {
	SelectedUser    string `json:"selected_user,omitempty"`
	SelectedMeeting string `json:"selected_meeting,omitempty"`
	ViewedNotice    string `json:"viewed_notice,omitempty"`
}

// Nav returns the navigation state for r.
func (sm *SessionManager) Nav(r *http.Request) Nav {
	sess := sm.session(r)
	return Nav{
		SelectedUser:    getString(sess, selectedUserKey),
		SelectedMeeting: getString(sess, selectedMeetingKey),
		ViewedNotice:    getString(sess, viewedNoticeKey),
	}
}

// SetNav stores n. Empty fields are cleared.
func (sm *SessionManager) SetNav(w http.ResponseWriter, r *http.Request, n Nav) error {
	sess := sm.session(r)
	setOrDelete(sess, selectedUserKey, n.SelectedUser)
	setOrDelete(sess, selectedMeetingKey, n.SelectedMeeting)
	setOrDelete(sess, viewedNoticeKey, n.ViewedNotice)
	return sess.Save(r, w)
}

// SeenNotices returns the IDs of notices opened in this session.
func (sm *SessionManager) SeenNotices(r *http.Request) map[string]bool {
	return toSet(getString(sm.session(r), seenNoticesKey))
}

// MarkNoticeSeen adds id to the seen set.
func (sm *SessionManager) MarkNoticeSeen(w http.ResponseWriter, r *http.Request, id string) error {
	sess := sm.session(r)
	sess.Values[seenNoticesKey] = appendCapped(getString(sess, seenNoticesKey), id)
	return sess.Save(r, w)
}

// LikedPosts returns the IDs of posts liked in this session.
func (sm *SessionManager) LikedPosts(r *http.Request) map[string]bool {
	return toSet(getString(sm.session(r), likedPostsKey))
}

// CanLike reports whether id may be added to the liked set. Unliking is
// always allowed.
func (sm *SessionManager) CanLike(r *http.Request, id string) bool {
	set := sm.LikedPosts(r)
	return set[id] || len(set) < MaxLiked
}

// ToggleLiked flips id in the liked set and reports whether it is now liked.
// Liking with a full set returns ErrLikeLimit and leaves the session alone.
func (sm *SessionManager) ToggleLiked(w http.ResponseWriter, r *http.Request, id string) (bool, error) {
	sess := sm.session(r)
	cur := getString(sess, likedPostsKey)
	set := toSet(cur)
	liked := !set[id]
	if liked {
		if len(set) >= MaxLiked {
			return false, ErrLikeLimit
		}
		sess.Values[likedPostsKey] = appendCapped(cur, id)
	} else {
		sess.Values[likedPostsKey] = remove(cur, id)
	}
	return liked, sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func setOrDelete(s *sessions.Session, key, v string) {
	if v == "" {
		delete(s.Values, key)
		return
	}
	s.Values[key] = v
}

func toSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

// appendCapped adds id to a comma list, dropping the oldest past maxTracked.
func appendCapped(list, id string) string {
	var ids []string
	for _, v := range strings.Split(list, ",") {
		if v != "" && v != id {
			ids = append(ids, v)
		}
	}
	ids = append(ids, id)
	if len(ids) > maxTracked {
		ids = ids[len(ids)-maxTracked:]
	}
	return strings.Join(ids, ",")
}

func remove(list, id string) string {
	var ids []string
	for _, v := range strings.Split(list, ",") {
		if v != "" && v != id {
			ids = append(ids, v)
		}
	}
	return strings.Join(ids, ",")
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		ret := url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
