package availability

import (
	"time"

	"github.com/slotwise/scheduling-core/internal/interval"
	"github.com/slotwise/scheduling-core/internal/models"
)

// resolveConstraints layers event-type overrides over the schedule's
// defaults, field-wise; event-type values win when non-null
//. et may be nil (no event type on the query).
func resolveConstraints(sched *models.UserSchedule, et *models.EventType) effectiveConstraints {
	c := effectiveConstraints{
		bufferBefore:  time.Duration(sched.BufferBeforeMinutes) * time.Minute,
		bufferAfter:   time.Duration(sched.BufferAfterMinutes) * time.Minute,
		minimumNotice: time.Duration(sched.MinimumNoticeHours) * time.Hour,
	}
	if sched.MaxBookingsPerDay != nil {
		v := *sched.MaxBookingsPerDay
		c.maxBookingsPerDay = &v
	}

	if et == nil {
		return c
	}
	if et.BufferBeforeMinutes != nil {
		c.bufferBefore = time.Duration(*et.BufferBeforeMinutes) * time.Minute
	}
	if et.BufferAfterMinutes != nil {
		c.bufferAfter = time.Duration(*et.BufferAfterMinutes) * time.Minute
	}
	if et.MinimumNoticeHours != nil {
		c.minimumNotice = time.Duration(*et.MinimumNoticeHours) * time.Hour
	}
	if et.MaxBookingsPerDay != nil {
		v := *et.MaxBookingsPerDay
		c.maxBookingsPerDay = &v
	}
	return c
}

// applyConstraints runs minimum notice, buffers, and the daily cap over
// ranges in order. activeCountByDay maps a local calendar date
// ("YYYY-MM-DD") to the host's already-active booking count on that
// day, used by the daily cap.
func applyConstraints(ranges []interval.Range, c effectiveConstraints, now time.Time, loc *time.Location, activeCountByDay map[string]int) []interval.Range {
	var out []interval.Range

	noticeFloor := now.Add(c.minimumNotice)
	for _, r := range ranges {
		trimmed, ok := interval.TrimBefore(r, noticeFloor)
		if !ok {
			continue
		}
		shrunk, ok := interval.Shrink(trimmed, c.bufferBefore, c.bufferAfter)
		if !ok {
			continue
		}
		out = append(out, shrunk)
	}

	if c.maxBookingsPerDay == nil {
		return out
	}

	var capped []interval.Range
	for _, r := range out {
		day := r.Start.In(loc).Format("2006-01-02")
		if activeCountByDay[day] >= *c.maxBookingsPerDay {
			continue
		}
		capped = append(capped, r)
	}
	return capped
}

// countActiveByLocalDay groups active bookings by their local calendar
// day in loc, for the daily-cap check.
func countActiveByLocalDay(bookings []models.Booking, loc *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		day := b.StartTime.In(loc).Format("2006-01-02")
		counts[day]++
	}
	return counts
}
