package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// El primer INCR de la ventana fija el TTL; los siguientes solo cuentan.
const forgotWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

const (
	forgotKeyPrefix    = "forgot:rl:"
	forgotRedisTimeout = 500 * time.Millisecond
)

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisResetLimiter cuenta reseteos por email en una ventana fija compartida
// entre instancias. El email se guarda como hash.
type redisResetLimiter struct {
	logger *zap.Logger
	client redisEvaler
	ttl    int
	max    int64
}

// NewRedisResetRateLimiter devuelve nil si no hay cliente.
func NewRedisResetRateLimiter(logger *zap.Logger, client *redis.Client, window time.Duration, max int) ResetRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisResetLimiter(logger, client, window, max)
}

func newRedisResetLimiter(logger *zap.Logger, client redisEvaler, window time.Duration, max int) *redisResetLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := int(window / time.Second)
	if ttl <= 0 {
		ttl = 60
	}
	if max <= 0 {
		max = 1
	}
	return &redisResetLimiter{logger: logger, client: client, ttl: ttl, max: int64(max)}
}

// Allow deja pasar la solicitud si Redis no responde.
func (l *redisResetLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, forgotRedisTimeout)
	defer cancel()

	count, err := l.client.Eval(ctx, forgotWindowScript, []string{forgotRedisKey(key)}, l.ttl).Int64()
	if err != nil {
		l.logger.Warn("forgot password limiter unavailable, allowing request", zap.Error(err))
		return true
	}
	return count <= l.max
}

func forgotRedisKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return forgotKeyPrefix + hex.EncodeToString(sum[:])
}
