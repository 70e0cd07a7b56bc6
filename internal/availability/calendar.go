package availability

import (
	"context"
	"sort"
	"time"

	"github.com/slotwise/scheduling-core/internal/coreerr"
)

// DailyCalendarSummary is a per-day booked/available slot count, sized
// against the queried event type's actual duration rather than a fixed
// placeholder length.
type DailyCalendarSummary struct {
	Date           string `json:"date"`
	TotalSlots     int    `json:"totalSlots"`
	BookedSlots    int    `json:"bookedSlots"`
	AvailableSlots int    `json:"availableSlots"`
}

// CalendarSummary reports, for each local day in [start, end), how many
// slots the event type's duration fits against the hosts' combined
// schedules, how many are already booked, and how many remain available.
func (e *Engine) CalendarSummary(ctx context.Context, eventTypeID string, hostIDs []string, start, end time.Time, timezone string) ([]DailyCalendarSummary, error) {
	et, err := e.storage.GetEventTypeByID(ctx, eventTypeID)
	if err != nil {
		return nil, err
	}
	if !et.IsActive {
		return nil, coreerr.Validationf("event type %s is not active", eventTypeID)
	}

	loc, err := e.zones.Load(timezone)
	if err != nil {
		return nil, coreerr.WrapValidation(err, "invalid timezone %q", timezone)
	}

	available, err := e.GetAvailability(ctx, Query{
		EventTypeID:     &eventTypeID,
		UserIDs:         hostIDs,
		Start:           start,
		End:             end,
		DurationMinutes: et.DurationMinutes,
		Timezone:        timezone,
	})
	if err != nil {
		return nil, err
	}

	booked := make(map[string]int)
	for _, hostID := range hostIDs {
		bookings, err := e.storage.ListActiveBookingsForHost(ctx, hostID, start, end)
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			day := b.StartTime.In(loc).Format("2006-01-02")
			booked[day]++
		}
	}

	byDay := make(map[string]int)
	for _, s := range available {
		day := s.Start.In(loc).Format("2006-01-02")
		byDay[day]++
	}

	days := make(map[string]bool)
	for d := range byDay {
		days[d] = true
	}
	for d := range booked {
		days[d] = true
	}

	var out []DailyCalendarSummary
	for d := range days {
		out = append(out, DailyCalendarSummary{
			Date:           d,
			AvailableSlots: byDay[d],
			BookedSlots:    booked[d],
			TotalSlots:     byDay[d] + booked[d],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
