// Package membership implements the member lifecycle: login, signup, profile
// edit proposals, the review queue, admin actions and the directory.
//
// Every mutation loads the current record, asks adminpolicy, and persists a
// copy with a version check. Version conflicts are retried with backoff; an
// authorization or validation failure ends the operation.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/auditlog"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultMaxUsers       = 2500
	DefaultLimitContact   = "9xxxxxxxx"
	DefaultStorageLimitGB = 4.3
)

// Login failures. LoginMessage maps them to the text shown to the user.
var (
	ErrUserNotFound     = errors.New("membership: user not found")
	ErrAccountSuspended = errors.New("membership: account suspended")
	ErrAccountNotFound  = errors.New("membership: account deleted")
	ErrMembersLimit     = errors.New("membership: members limit reached")
	ErrMemberNotFound   = errors.New("membership: member not found")
)

// Login-screen messages.
const (
	MsgUserNotFound     = "User not found! Please sign up."
	MsgAccountSuspended = "Your account has been suspended."
	MsgAccountNotFound  = "Account not found."
	MsgLetterRequired   = "Appointment letter is required."
)

// UserRepo is the user persistence the service needs. userstore.Store and
// userstore.MemStore both satisfy it.
type UserRepo interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, f userstore.ListFilter) ([]models.User, error)
	ReviewQueue(ctx context.Context, district string) ([]models.User, error)
	StatusCounts(ctx context.Context, district string) ([]userstore.StatusCount, error)
}

// Config carries the tunables read from app configuration.
type Config struct {
	MaxUsers       int
	LimitContact   string
	StorageLimitGB float64
}

type Service struct {
	users   UserRepo
	media   *media.Service
	audit   *auditlog.Logger
	metrics *metrics.Metrics
	log     *zap.Logger
	cfg     Config
	now     func() time.Time
}

func New(users UserRepo, mediaSvc *media.Service, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger, cfg Config) *Service {
	if cfg.MaxUsers <= 0 {
		cfg.MaxUsers = DefaultMaxUsers
	}
	if cfg.LimitContact == "" {
		cfg.LimitContact = DefaultLimitContact
	}
	if cfg.StorageLimitGB <= 0 {
		cfg.StorageLimitGB = DefaultStorageLimitGB
	}
	return &Service{
		users:   users,
		media:   mediaSvc,
		audit:   audit,
		metrics: m,
		log:     logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// LoginMessage returns the user-facing text for a login or signup error,
// or "" when err is not one of this package's login errors.
func (s *Service) LoginMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return MsgUserNotFound
	case errors.Is(err, ErrAccountSuspended):
		return MsgAccountSuspended
	case errors.Is(err, ErrAccountNotFound):
		return MsgAccountNotFound
	case errors.Is(err, ErrMembersLimit):
		return s.MembersLimitMessage()
	}
	return ""
}

// MembersLimitMessage is shown when signup or add-member hits MaxUsers.
func (s *Service) MembersLimitMessage() string {
	return "Members limit reached. To add request contact: " + s.cfg.LimitContact
}

// Count returns the number of stored users.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

// Get returns the stored record for id.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	return u, err
}

// change computes the next version of a record. It reports false when there
// is nothing to persist.
type change func(u models.User) (models.User, bool, error)

// mutate runs a guarded read-modify-write of the user id. The record is
// re-read and re-authorized on every attempt.
func (s *Service) mutate(ctx context.Context, actor *models.User, action adminpolicy.Action, id primitive.ObjectID, fn change) (models.User, error) {
	var out models.User
	op := func() error {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				return backoff.Permanent(ErrMemberNotFound)
			}
			return backoff.Permanent(fmt.Errorf("load user: %w", err))
		}
		if err := s.authorize(ctx, actor, action, adminpolicy.ForUser(u)); err != nil {
			return backoff.Permanent(err)
		}
		next, changed, err := fn(*u)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !changed {
			out = *u
			return nil
		}
		saved, err := s.users.Update(ctx, next)
		switch {
		case err == nil:
			out = saved
			return nil
		case errors.Is(err, userstore.ErrVersionConflict):
			return err
		case errors.Is(err, userstore.ErrNotFound):
			return backoff.Permanent(ErrMemberNotFound)
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(10*time.Millisecond),
		backoff.WithMaxInterval(200*time.Millisecond),
	), 5)
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return models.User{}, err
	}
	return out, nil
}

// authorize asks adminpolicy and records denials.
func (s *Service) authorize(ctx context.Context, actor *models.User, action adminpolicy.Action, target adminpolicy.Target) error {
	d := adminpolicy.Authorize(actor, action, target)
	if d.Allowed {
		return nil
	}
	if actor != nil {
		s.audit.Denied(ctx, actor.ID, string(action), d.Reason)
	}
	return d.Err(action)
}

func targetRef(u models.User) *primitive.ObjectID {
	id := u.ID
	return &id
}
