// Package availability implements the availability engine: given a
// query, returns bookable slots by composing schedule-window
// resolution, busy-time loading, interval subtraction, constraint
// application, slicing, and assignment-policy combination across
// multiple hosts, timezones, and days.
package availability

import (
	"context"
	"sort"
	"time"

	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/storage"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

type Engine struct {
	storage *storage.Storage
	clock   clock.Clock
	zones   *clock.ZoneLoader
	logger  *logger.Logger
}

func New(store *storage.Storage, c clock.Clock, zones *clock.ZoneLoader, log *logger.Logger) *Engine {
	return &Engine{storage: store, clock: c, zones: zones, logger: log}
}

// ResolveEventType looks up an event type by its organization-scoped
// slug, the lookup a public booking page uses to turn a human-readable
// URL into the eventTypeId GetAvailability and CalendarSummary need.
func (e *Engine) ResolveEventType(ctx context.Context, organizationID, slug string) (*models.EventType, error) {
	return e.storage.GetEventTypeBySlug(ctx, organizationID, slug)
}

// GetAvailability runs the full query-to-slots pipeline end to end.
func (e *Engine) GetAvailability(ctx context.Context, q Query) ([]Slot, error) {
	if !q.End.After(q.Start) {
		return nil, coreerr.Validationf("query range [%s, %s) is empty or inverted", q.Start, q.End)
	}
	if len(q.UserIDs) == 0 {
		return nil, nil
	}
	if q.DurationMinutes <= 0 {
		return nil, coreerr.Validationf("durationMinutes must be positive")
	}

	var et *models.EventType
	if q.EventTypeID != nil {
		loaded, err := e.storage.GetEventTypeByID(ctx, *q.EventTypeID)
		if err != nil {
			return nil, err
		}
		et = loaded
	}

	loc, err := e.zones.Load(q.Timezone)
	if err != nil {
		return nil, coreerr.WrapValidation(err, "invalid timezone %q", q.Timezone)
	}
	now := e.clock.Now()
	duration := time.Duration(q.DurationMinutes) * time.Minute

	hostStarts := make(map[string][]time.Time, len(q.UserIDs))
	for _, hostID := range q.UserIDs {
		starts, err := e.hostPipeline(ctx, hostID, q, et, loc, now)
		if err != nil {
			return nil, err
		}
		hostStarts[hostID] = starts
	}

	assignmentType := models.AssignmentSingle
	if et != nil {
		assignmentType = et.AssignmentType
	}

	var slots []Slot
	switch assignmentType {
	case models.AssignmentCollective:
		slots = combineCollective(q.UserIDs, hostStarts, duration)
	case models.AssignmentRoundRobin:
		if q.EventTypeID == nil {
			return nil, coreerr.Validationf("round-robin assignment requires an eventTypeId")
		}
		fairness, err := e.storage.ListActiveHosts(ctx, *q.EventTypeID)
		if err != nil {
			return nil, err
		}
		slots = combineRoundRobin(fairness, hostStarts, duration)
	default:
		slots = combineSingle(hostStarts, duration)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}
