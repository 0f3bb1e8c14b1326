package ratelimit

import (
	"net/http"
	"time"

	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Messages shown when a login attempt is refused.
const (
	MsgTooManyFromIP     = "Too many login attempts. Please wait a minute before trying again."
	MsgTooManyForAccount = "Too many login attempts for this number. Please wait a few minutes."
)

// LoginLimiter limits login attempts per client IP and per mobile number.
type LoginLimiter struct {
	ip     Counter
	mobile Counter
	log    *zap.Logger
}

// NewLoginLimiter keeps counters in process: ipLimit attempts per IP per
// minute and mobileLimit per number per five minutes.
func NewLoginLimiter(ipLimit, mobileLimit int, log *zap.Logger) *LoginLimiter {
	return &LoginLimiter{
		ip:     New(ipLimit, time.Minute),
		mobile: New(mobileLimit, 5*time.Minute),
		log:    log,
	}
}

// NewRedisLoginLimiter shares the counters across instances through Redis.
func NewRedisLoginLimiter(client *redis.Client, ipLimit, mobileLimit int, log *zap.Logger) *LoginLimiter {
	return &LoginLimiter{
		ip:     NewRedis(client, "sangathan:login:ip:", ipLimit, time.Minute),
		mobile: NewRedis(client, "sangathan:login:mobile:", mobileLimit, 5*time.Minute),
		log:    log,
	}
}

// Check reports whether the attempt may proceed and, if not, why. A counter
// backend error lets the attempt through.
func (ll *LoginLimiter) Check(r *http.Request, mobile string) (bool, string) {
	ctx := r.Context()
	if ok, err := ll.ip.Hit(ctx, ClientIP(r)); err != nil {
		ll.warn(err)
	} else if !ok {
		return false, MsgTooManyFromIP
	}

	if m := normalize.Mobile(mobile); m != "" {
		if ok, err := ll.mobile.Hit(ctx, m); err != nil {
			ll.warn(err)
		} else if !ok {
			return false, MsgTooManyForAccount
		}
	}
	return true, ""
}

// ResetMobile clears the per-number counter after a successful login.
func (ll *LoginLimiter) ResetMobile(r *http.Request, mobile string) {
	if m := normalize.Mobile(mobile); m != "" {
		if err := ll.mobile.Reset(r.Context(), m); err != nil {
			ll.warn(err)
		}
	}
}

func (ll *LoginLimiter) warn(err error) {
	if ll.log != nil {
		ll.log.Warn("login rate limiter unavailable; allowing attempt", zap.Error(err))
	}
}
