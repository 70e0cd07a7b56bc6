// Package scheduler runs the periodic sweep that closes out bookings
// whose time has passed, the one background task the core owns beyond
// the job dispatcher in internal/jobs/dispatcher.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/slotwise/scheduling-core/internal/booking"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// Scheduler runs background maintenance tasks on a cron schedule.
type Scheduler struct {
	cron          *cron.Cron
	bookingEngine *booking.Engine
	logger        *logger.Logger
}

func New(bookingEngine *booking.Engine, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		bookingEngine: bookingEngine,
		logger:        logger,
	}
}

// Start registers the CONFIRMED->COMPLETED sweep and starts the cron
// runner.
func (s *Scheduler) Start() {
	s.logger.Info("starting background scheduler")

	if _, err := s.cron.AddFunc("@every 5m", func() {
		completed, err := s.bookingEngine.CompletePastBookings(context.Background())
		if err != nil {
			s.logger.Error("past-booking sweep failed", "error", err)
			return
		}
		if completed > 0 {
			s.logger.Info("past-booking sweep completed bookings", "count", completed)
		}
	}); err != nil {
		s.logger.Error("failed to register past-booking sweep", "error", err)
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping background scheduler")
	s.cron.Stop()
}
