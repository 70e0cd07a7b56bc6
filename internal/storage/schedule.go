package storage

import (
	"context"
	"time"

	"github.com/slotwise/scheduling-core/internal/models"
)

// GetDefaultSchedule returns the user's default schedule, falling back
// to any schedule if none is marked default.
// Returns coreerr.NotFound if the user has no schedule at all.
func (s *Storage) GetDefaultSchedule(ctx context.Context, userID string) (*models.UserSchedule, error) {
	var sched models.UserSchedule
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		First(&sched).Error
	if err != nil {
		return nil, wrapNotFound(err, "no schedule for user %s", userID)
	}
	return &sched, nil
}

// ListWindows returns all schedule windows for a schedule, ordered so
// specific-date overrides and weekday windows can both be scanned once.
func (s *Storage) ListWindows(ctx context.Context, scheduleID string) ([]models.ScheduleWindow, error) {
	var windows []models.ScheduleWindow
	err := s.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error
	if err != nil {
		return nil, wrapNotFound(err, "windows lookup failed for schedule %s", scheduleID)
	}
	return windows, nil
}

// ListBusyBlocks returns BusyBlocks for a user overlapping [start, end).
func (s *Storage) ListBusyBlocks(ctx context.Context, userID string, start, end time.Time) ([]models.BusyBlock, error) {
	var blocks []models.BusyBlock
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("start_time < ? AND end_time > ?", end, start).
		Find(&blocks).Error
	if err != nil {
		return nil, wrapNotFound(err, "busy blocks lookup failed for user %s", userID)
	}
	return blocks, nil
}
