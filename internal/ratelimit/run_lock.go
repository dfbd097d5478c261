package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyVisibilityRun = "visibility:run:%s"

// RunLocker serializes visibility runs per tenant. The monthly quota is
// a read-then-act check, so two concurrent runs could both pass it; the
// lock closes that window when redis is configured. A nil RunLocker
// (no redis) allows every run, keeping the documented race.
type RunLocker struct {
	locker *Locker
	ttl    time.Duration
}

func NewRunLocker(cfg config.Config) *RunLocker {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	return &RunLocker{
		locker: NewLocker(client),
		ttl:    2 * time.Minute,
	}
}

func (l *RunLocker) Acquire(ctx context.Context, tenantID snowflake.ID) (string, bool, error) {
	if l == nil {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyVisibilityRun, tenantID.String()), l.ttl)
}

func (l *RunLocker) Release(ctx context.Context, tenantID snowflake.ID, token string) {
	if l == nil {
		return
	}
	_ = l.locker.Release(ctx, fmt.Sprintf(keyVisibilityRun, tenantID.String()), token)
}
