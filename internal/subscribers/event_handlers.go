// Package subscribers keeps the core's local EventType and
// ScheduleWindow replicas current with the external services that own
// those entities. The availability and booking engines read both
// tables on every query, so the core caches an upsert-on-event local
// copy rather than calling out to an owning service on the hot path.
package subscribers

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// EventHandlers holds the dependencies the sync handlers need.
type EventHandlers struct {
	db     *gorm.DB
	logger *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) *EventHandlers {
	return &EventHandlers{db: db, logger: log}
}

// EventTypeUpsertedPayload mirrors the owning service's
// "event_type.upserted" event. Event-type CRUD lives outside the core.
type EventTypeUpsertedPayload struct {
	ID                   string  `json:"id"`
	OrganizationID       string  `json:"organizationId"`
	OwnerID              *string `json:"ownerId"`
	Slug                 string  `json:"slug"`
	DurationMinutes      int     `json:"durationMinutes"`
	AssignmentType       string  `json:"assignmentType"`
	LocationType         string  `json:"locationType"`
	RequiresConfirmation bool    `json:"requiresConfirmation"`
	BufferBeforeMinutes  *int    `json:"bufferBeforeMinutes"`
	BufferAfterMinutes   *int    `json:"bufferAfterMinutes"`
	MinimumNoticeHours   *int    `json:"minimumNoticeHours"`
	MaxBookingsPerDay    *int    `json:"maxBookingsPerDay"`
	IsActive             bool    `json:"isActive"`
	IsPublic             bool    `json:"isPublic"`
}

// HandleEventTypeUpserted processes an upstream event-type create/update
// event, replacing the core's local replica of that row.
func (h *EventHandlers) HandleEventTypeUpserted(data []byte) error {
	var payload EventTypeUpsertedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.logger.Error("failed to unmarshal event type upsert payload", "error", err)
		return fmt.Errorf("unmarshal event type payload: %w", err)
	}

	et := models.EventType{
		ID:                   payload.ID,
		OrganizationID:       payload.OrganizationID,
		OwnerID:              payload.OwnerID,
		Slug:                 payload.Slug,
		DurationMinutes:      payload.DurationMinutes,
		AssignmentType:       models.AssignmentType(payload.AssignmentType),
		LocationType:         models.LocationType(payload.LocationType),
		RequiresConfirmation: payload.RequiresConfirmation,
		BufferBeforeMinutes:  payload.BufferBeforeMinutes,
		BufferAfterMinutes:   payload.BufferAfterMinutes,
		MinimumNoticeHours:   payload.MinimumNoticeHours,
		MaxBookingsPerDay:    payload.MaxBookingsPerDay,
		IsActive:             payload.IsActive,
		IsPublic:             payload.IsPublic,
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"organization_id", "owner_id", "slug", "duration_minutes",
			"assignment_type", "location_type", "requires_confirmation",
			"buffer_before_minutes", "buffer_after_minutes", "minimum_notice_hours",
			"max_bookings_per_day", "is_active", "is_public", "updated_at",
		}),
	}).Create(&et).Error
	if err != nil {
		h.logger.Error("failed to upsert event type replica", "error", err, "eventTypeId", payload.ID)
		return fmt.Errorf("upsert event type %s: %w", payload.ID, err)
	}

	h.logger.Info("synced event type replica", "eventTypeId", payload.ID)
	return nil
}

// ScheduleWindowPayload is one weekday-or-override window in a
// "schedule.updated" event.
type ScheduleWindowPayload struct {
	DayOfWeek    int     `json:"dayOfWeek"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	SpecificDate *string `json:"specificDate"`
	IsAvailable  bool    `json:"isAvailable"`
}

// ScheduleUpdatedPayload mirrors the owning service's
// "schedule.updated" event: the full replacement set of windows for one
// user's default schedule.
type ScheduleUpdatedPayload struct {
	UserID              string                  `json:"userId"`
	BufferBeforeMinutes int                     `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int                     `json:"bufferAfterMinutes"`
	MinimumNoticeHours  int                     `json:"minimumNoticeHours"`
	MaxBookingsPerDay   *int                    `json:"maxBookingsPerDay"`
	MaxBookingsPerWeek  *int                    `json:"maxBookingsPerWeek"`
	Windows             []ScheduleWindowPayload `json:"windows"`
}

// HandleScheduleUpdated replaces a user's default schedule and its
// windows atomically: find-or-create the schedule row, then delete and
// recreate its windows.
func (h *EventHandlers) HandleScheduleUpdated(data []byte) error {
	var payload ScheduleUpdatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.logger.Error("failed to unmarshal schedule update payload", "error", err)
		return fmt.Errorf("unmarshal schedule payload: %w", err)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var sched models.UserSchedule
		err := tx.Where("user_id = ? AND is_default = ?", payload.UserID, true).First(&sched).Error
		switch {
		case err == nil:
			sched.BufferBeforeMinutes = payload.BufferBeforeMinutes
			sched.BufferAfterMinutes = payload.BufferAfterMinutes
			sched.MinimumNoticeHours = payload.MinimumNoticeHours
			sched.MaxBookingsPerDay = payload.MaxBookingsPerDay
			sched.MaxBookingsPerWeek = payload.MaxBookingsPerWeek
			if err := tx.Save(&sched).Error; err != nil {
				return fmt.Errorf("update default schedule for user %s: %w", payload.UserID, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			sched = models.UserSchedule{
				UserID: payload.UserID, Name: "default", IsDefault: true,
				BufferBeforeMinutes: payload.BufferBeforeMinutes,
				BufferAfterMinutes:  payload.BufferAfterMinutes,
				MinimumNoticeHours:  payload.MinimumNoticeHours,
				MaxBookingsPerDay:   payload.MaxBookingsPerDay,
				MaxBookingsPerWeek:  payload.MaxBookingsPerWeek,
			}
			if err := tx.Create(&sched).Error; err != nil {
				return fmt.Errorf("create default schedule for user %s: %w", payload.UserID, err)
			}
		default:
			return fmt.Errorf("load default schedule for user %s: %w", payload.UserID, err)
		}

		if err := tx.Where("schedule_id = ?", sched.ID).Delete(&models.ScheduleWindow{}).Error; err != nil {
			return fmt.Errorf("clear existing windows for schedule %s: %w", sched.ID, err)
		}

		if len(payload.Windows) == 0 {
			return nil
		}
		windows := make([]models.ScheduleWindow, len(payload.Windows))
		for i, w := range payload.Windows {
			windows[i] = models.ScheduleWindow{
				ScheduleID:   sched.ID,
				DayOfWeek:    w.DayOfWeek,
				StartTime:    w.StartTime,
				EndTime:      w.EndTime,
				SpecificDate: w.SpecificDate,
				IsAvailable:  w.IsAvailable,
			}
		}
		if err := tx.Create(&windows).Error; err != nil {
			return fmt.Errorf("create windows for schedule %s: %w", sched.ID, err)
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to process schedule update", "error", err, "userId", payload.UserID)
		return err
	}

	h.logger.Info("synced schedule replica", "userId", payload.UserID)
	return nil
}
