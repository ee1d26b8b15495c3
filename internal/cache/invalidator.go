package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/noorhashem/devflow-backend/internal/config"
	"github.com/noorhashem/devflow-backend/internal/logger"
)

// Channel carrying question ids whose rendered views should be refreshed.
const invalidationChannel = "devflow:question:invalidate"

// Invalidator notifies downstream caches that a question's rendered view is
// stale. Notification is advisory; failures are logged and ignored.
type Invalidator interface {
	InvalidateQuestion(ctx context.Context, questionID int)
}

type redisInvalidator struct {
	client *redis.Client
	log    *logger.Logger
}

// NewInvalidator returns a Redis-backed invalidator when REDIS_ADDR is set,
// otherwise a no-op one.
func NewInvalidator(logg *logger.Logger) Invalidator {
	addr := config.GetEnv("REDIS_ADDR", "")
	if addr == "" {
		return noopInvalidator{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.GetEnv("REDIS_PASSWORD", ""),
	})
	return &redisInvalidator{
		client: client,
		log:    logg.With("service", "cache"),
	}
}

func (r *redisInvalidator) InvalidateQuestion(ctx context.Context, questionID int) {
	if err := r.client.Publish(ctx, invalidationChannel, strconv.Itoa(questionID)).Err(); err != nil {
		r.log.Warn("cache invalidation publish failed", "question_id", questionID, "error", err)
	}
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateQuestion(context.Context, int) {}
