// Package dispatcher polls the Redis delay-queues internal/jobs writes
// to on a cron schedule and republishes due jobs to NATS.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// Source names one delay-queue to poll: its sorted-set/hash pair in
// Redis, and the NATS subject due jobs are republished to.
type Source struct {
	Name         string
	DelayedKey   string
	JobsKey      string
	ReadySubject string
}

const batchSize = 100

type Dispatcher struct {
	cron    *cron.Cron
	redis   *redis.Client
	nats    *nats.Conn
	sources []Source
	clock   clock.Clock
	logger  *logger.Logger
}

func New(redisClient *redis.Client, natsConn *nats.Conn, c clock.Clock, log *logger.Logger, sources ...Source) *Dispatcher {
	return &Dispatcher{
		cron:    cron.New(),
		redis:   redisClient,
		nats:    natsConn,
		sources: sources,
		clock:   c,
		logger:  log,
	}
}

// Start registers the polling task and starts the cron scheduler. It
// polls every 15 seconds: frequent enough that the shortest reminder
// offset (15m) is never missed by more than that margin.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting job dispatcher", "sources", len(d.sources))
	_, err := d.cron.AddFunc("@every 15s", func() {
		d.pollOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("register dispatcher task: %w", err)
	}
	d.cron.Start()
	return nil
}

func (d *Dispatcher) Stop() {
	d.logger.Info("stopping job dispatcher")
	d.cron.Stop()
}

func (d *Dispatcher) pollOnce(ctx context.Context) {
	if d.redis == nil {
		return
	}
	now := float64(d.clock.Now().Unix())
	for _, src := range d.sources {
		d.pollSource(ctx, src, now)
	}
}

func (d *Dispatcher) pollSource(ctx context.Context, src Source, now float64) {
	due, err := d.redis.ZRangeByScore(ctx, src.DelayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%f", now),
		Count: batchSize,
	}).Result()
	if err != nil {
		d.logger.Warn("dispatcher poll failed", "source", src.Name, "error", err)
		return
	}

	for _, jobID := range due {
		body, err := d.redis.HGet(ctx, src.JobsKey, jobID).Result()
		if err != nil {
			d.logger.Warn("dispatcher missing job body", "source", src.Name, "jobId", jobID, "error", err)
			d.cleanup(ctx, src, jobID)
			continue
		}
		if d.nats != nil {
			if err := d.nats.Publish(src.ReadySubject, []byte(body)); err != nil {
				d.logger.Warn("dispatcher publish failed", "source", src.Name, "jobId", jobID, "error", err)
				continue
			}
		}
		d.cleanup(ctx, src, jobID)
	}
}

func (d *Dispatcher) cleanup(ctx context.Context, src Source, jobID string) {
	pipe := d.redis.TxPipeline()
	pipe.ZRem(ctx, src.DelayedKey, jobID)
	pipe.HDel(ctx, src.JobsKey, jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		d.logger.Warn("dispatcher cleanup failed", "source", src.Name, "jobId", jobID, "error", err)
	}
}
