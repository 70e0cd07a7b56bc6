// Package booking implements the booking engine:
// create/confirm/cancel/reschedule bookings inside a serialized
// transaction with conflict re-verification, audit logging, and
// post-commit fan-out.
package booking

import (
	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/jobs"
	"github.com/slotwise/scheduling-core/internal/locking"
	"github.com/slotwise/scheduling-core/internal/storage"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

type Engine struct {
	storage       *storage.Storage
	locker        *locking.Locker
	notifications jobs.Queue
	webhooks      jobs.Queue
	reminders     jobs.ReminderScheduler
	clock         clock.Clock
	logger        *logger.Logger
}

func New(
	store *storage.Storage,
	locker *locking.Locker,
	notifications jobs.Queue,
	webhooks jobs.Queue,
	reminders jobs.ReminderScheduler,
	c clock.Clock,
	log *logger.Logger,
) *Engine {
	return &Engine{
		storage:       store,
		locker:        locker,
		notifications: notifications,
		webhooks:      webhooks,
		reminders:     reminders,
		clock:         c,
		logger:        log,
	}
}
