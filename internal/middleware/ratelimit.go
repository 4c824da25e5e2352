package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const resendPrefix = "resend_limit:"

// ResendLimiter caps verification-code resends per email per hour, backed by
// a Redis counter. A nil client disables the limit entirely.
type ResendLimiter struct {
	rdb     *redis.Client
	perHour int
	logger  *zap.SugaredLogger
}

func NewResendLimiter(rdb *redis.Client, perHour int, logger *zap.SugaredLogger) *ResendLimiter {
	return &ResendLimiter{rdb: rdb, perHour: perHour, logger: logger}
}

// Allow increments the counter for the email and reports whether the request
// may proceed. Redis failures fail open: delivery matters more than the cap.
func (l *ResendLimiter) Allow(ctx context.Context, email string) bool {
	if l.rdb == nil || l.perHour <= 0 {
		return true
	}

	key := resendPrefix + email
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warnw("resend rate limit check failed", "email", email, "error", err)
		return true
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, time.Hour).Err(); err != nil {
			l.logger.Warnw("failed to set resend limit expiry", "email", email, "error", err)
		}
	}
	return count <= int64(l.perHour)
}
