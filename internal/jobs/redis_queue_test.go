package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/jobs"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// Immediate (zero-delay) adds with no NATS connection never touch
// Redis at all, so this path is exercisable without a live backing
// store; the delayed-queue path needs a real Redis connection and is
// left to integration testing.
func TestAddWithoutDelayAndWithoutNATSIsANoop(t *testing.T) {
	q := jobs.NewRedisQueue(context.Background(), nil, nil, "jobs.ready", "jobs.delayed", clock.NewFixed(time.Now()), logger.New("error"))

	err := q.Add(jobs.JobBookingCreated, jobs.NotificationPayload{BookingID: "b-1"}, jobs.DefaultOptions())
	assert.NoError(t, err)
}

func TestReminderJobIDIsStablePerBookingAndOffset(t *testing.T) {
	assert.Equal(t, jobs.ReminderJobID("b-1", "24h"), jobs.ReminderJobID("b-1", "24h"))
	assert.NotEqual(t, jobs.ReminderJobID("b-1", "24h"), jobs.ReminderJobID("b-1", "1h"))
	assert.NotEqual(t, jobs.ReminderJobID("b-1", "24h"), jobs.ReminderJobID("b-2", "24h"))
}

func TestDefaultOptionsFillsRetryBudget(t *testing.T) {
	opts := jobs.DefaultOptions()
	assert.Equal(t, 3, opts.Attempts)
	assert.Equal(t, time.Second, opts.BackoffBase)
}
