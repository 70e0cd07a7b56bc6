// Package locking provides a distributed single-writer lock on
// (hostId, startTime, endTime), backed by Redis, with the specific
// acquire/release contract the booking engine needs.
package locking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slotwise/scheduling-core/pkg/logger"
)

// releaseScript deletes the key only if its current value equals the
// token supplied, a compare-and-delete so a release with the wrong
// token never deletes the key.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Locker acquires and releases slot locks. Unavailability of the
// backing store must not crash the booking engine: Acquire returns
// ("", nil) rather than an error when Redis is unreachable, so the
// caller proceeds without a lock.
type Locker struct {
	client *redis.Client
	logger *logger.Logger
	ttl    time.Duration
	script *redis.Script
}

func New(client *redis.Client, log *logger.Logger, ttl time.Duration) *Locker {
	return &Locker{
		client: client,
		logger: log,
		ttl:    ttl,
		script: redis.NewScript(releaseScript),
	}
}

// Key builds the canonical slot lock key for a host/interval pair.
func Key(hostID string, start, end time.Time) string {
	return fmt.Sprintf("SLOT:%s:%s:%s", hostID, start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
}

// Acquire attempts to take the lock for key with a fresh opaque token.
// It returns ("", nil) both when another holder already owns the lock
// and when the lock store itself is unavailable — the caller cannot
// tell the difference, by design: either way it must fall back to the
// transactional conflict check as the hard guarantee.
func (l *Locker) Acquire(ctx context.Context, key string) (string, error) {
	if l.client == nil {
		return "", nil
	}
	token, err := newToken()
	if err != nil {
		l.logger.Error("slot lock token generation failed", "error", err)
		return "", nil
	}

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("slot lock store unavailable, proceeding without lock", "key", key, "error", err)
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Release deletes key only if it still holds token (compare-and-delete).
// A no-op for an empty token; failures are logged, never returned as
// fatal, since lock release is a best-effort step after commit.
func (l *Locker) Release(ctx context.Context, key, token string) {
	if l.client == nil || token == "" {
		return
	}
	if err := l.script.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("slot lock release failed", "key", key, "error", err)
	}
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
