package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Guard answers whether a (recipient, condition, test-date) delivery has
// already happened in a previous run. In-run dedup never depends on this;
// the guard only suppresses duplicate durable notifications when the same
// report is submitted twice. A delivery that claims the key and then fails
// must Release it, otherwise a retry of the report would be suppressed and
// the contact silently dropped.
type Guard interface {
	FirstDelivery(ctx context.Context, recipientRef, conditionID string, testDate time.Time) bool
	Release(ctx context.Context, recipientRef, conditionID string, testDate time.Time)
}

// RedisGuard uses SETNX with a TTL. It fails open: if Redis is unreachable
// the delivery proceeds, because a duplicate exposure notice beats a silent
// omission.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedisGuard(rdb *redis.Client, log *zap.Logger) *RedisGuard {
	return &RedisGuard{
		rdb: rdb,
		ttl: 7 * 24 * time.Hour,
		log: log,
	}
}

func guardKey(recipientRef, conditionID string, testDate time.Time) string {
	return fmt.Sprintf("trace:delivered:%s:%s:%s", recipientRef, conditionID, testDate.Format("2006-01-02"))
}

func (g *RedisGuard) FirstDelivery(ctx context.Context, recipientRef, conditionID string, testDate time.Time) bool {
	ok, err := g.rdb.SetNX(ctx, guardKey(recipientRef, conditionID, testDate), 1, g.ttl).Result()
	if err != nil {
		g.log.Warn("dedupe guard unavailable, allowing delivery",
			zap.String("recipient", recipientRef),
			zap.Error(err),
		)
		return true
	}
	return ok
}

// Release gives the key back after a failed dispatch so a retried report can
// still reach the contact.
func (g *RedisGuard) Release(ctx context.Context, recipientRef, conditionID string, testDate time.Time) {
	if err := g.rdb.Del(ctx, guardKey(recipientRef, conditionID, testDate)).Err(); err != nil {
		g.log.Warn("dedupe guard release failed, retry of this report may be suppressed",
			zap.String("recipient", recipientRef),
			zap.Error(err),
		)
	}
}
