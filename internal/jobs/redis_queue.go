package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// envelope is the on-the-wire shape stored in Redis for a delayed job
// and published to NATS for a ready one.
type envelope struct {
	Name     string          `json:"name"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	BackoffS float64         `json:"backoffSeconds"`
}

// RedisQueue is a Queue/ReminderScheduler backed by NATS for immediate
// dispatch and a Redis sorted set for delayed jobs.
type RedisQueue struct {
	redis      *redis.Client
	nats       *nats.Conn
	readySubj  string
	delayedKey string
	jobsKey    string
	clock      clock.Clock
	ctx        context.Context
	logger     *logger.Logger
}

// NewRedisQueue constructs a queue that publishes ready jobs to
// readySubject and stores delayed jobs under a Redis sorted set /
// hash pair namespaced by delayedKey.
func NewRedisQueue(ctx context.Context, client *redis.Client, nc *nats.Conn, readySubject, delayedKey string, c clock.Clock, log *logger.Logger) *RedisQueue {
	return &RedisQueue{
		redis:      client,
		nats:       nc,
		readySubj:  readySubject,
		delayedKey: delayedKey,
		jobsKey:    delayedKey + ":jobs",
		clock:      c,
		ctx:        ctx,
		logger:     log,
	}
}

// Add enqueues a job. Delay=0 publishes immediately to NATS; Delay>0
// stores it in the Redis delay-queue, keyed by JobID when one is
// supplied so a second Add with the same JobID replaces the pending
// job instead of duplicating it.
func (q *RedisQueue) Add(name string, payload any, opts AddOptions) error {
	opts = opts.withDefaults()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}
	env := envelope{Name: name, Payload: body, Attempts: opts.Attempts, BackoffS: opts.BackoffBase.Seconds()}

	if opts.Delay <= 0 {
		return q.publishReady(env)
	}

	envBytes, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal delayed envelope: %w", err)
	}

	jobID := opts.JobID
	if jobID == "" {
		jobID = fmt.Sprintf("%s:%d", name, len(envBytes))
	}

	dueAt := q.clock.Now().Add(opts.Delay).Unix()

	pipe := q.redis.TxPipeline()
	pipe.HSet(q.ctx, q.jobsKey, jobID, envBytes)
	pipe.ZAdd(q.ctx, q.delayedKey, redis.Z{Score: float64(dueAt), Member: jobID})
	_, err = pipe.Exec(q.ctx)
	if err != nil {
		return fmt.Errorf("schedule delayed job: %w", err)
	}
	return nil
}

// Remove deletes a pending delayed job; a no-op if it already fired or
// never existed.
func (q *RedisQueue) Remove(jobID string) error {
	pipe := q.redis.TxPipeline()
	pipe.ZRem(q.ctx, q.delayedKey, jobID)
	pipe.HDel(q.ctx, q.jobsKey, jobID)
	_, err := pipe.Exec(q.ctx)
	if err != nil {
		q.logger.Warn("remove delayed job failed", "jobId", jobID, "error", err)
	}
	return nil
}

func (q *RedisQueue) publishReady(env envelope) error {
	if q.nats == nil {
		q.logger.Debug("job publish skipped (no NATS connection)", "name", env.Name)
		return nil
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal ready envelope: %w", err)
	}
	if err := q.nats.Publish(q.readySubj, body); err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}
