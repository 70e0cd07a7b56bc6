package availability

import (
	"context"
	"sort"
	"time"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/interval"
	"github.com/slotwise/scheduling-core/internal/models"
)

// hostPipeline loads a single host's schedule, subtracts conflicts,
// applies constraints, and slices the result, returning its ascending,
// deduplicated slot start instants. A host with no schedule at all
// contributes no slots rather than failing the whole query: collective
// and round-robin assignment still need the other hosts' availability,
// and a missing schedule is this host's way of saying "never available".
func (e *Engine) hostPipeline(ctx context.Context, hostID string, q Query, et *models.EventType, loc *time.Location, now time.Time) ([]time.Time, error) {
	sched, err := e.storage.GetDefaultSchedule(ctx, hostID)
	if err != nil {
		if coreerr.KindOf(err) == coreerr.NotFound {
			return nil, nil
		}
		return nil, err
	}
	windows, err := e.storage.ListWindows(ctx, sched.ID)
	if err != nil {
		return nil, err
	}

	nominal, err := resolveWindows(windows, q.Start, q.End, loc)
	if err != nil {
		return nil, err
	}

	bookings, err := e.storage.ListActiveBookingsForHost(ctx, hostID, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	busyBlocks, err := e.storage.ListBusyBlocks(ctx, hostID, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	busy := toBusyRanges(bookings, busyBlocks)

	var free []interval.Range
	for _, r := range nominal {
		free = append(free, interval.Subtract(r, busy)...)
	}

	constraints := resolveConstraints(sched, et)
	countByDay := countActiveByLocalDay(bookings, loc)
	constrained := applyConstraints(free, constraints, now, loc, countByDay)

	duration := time.Duration(q.DurationMinutes) * time.Minute
	starts := sliceRanges(constrained, duration)
	return dedupeSorted(starts), nil
}

func toBusyRanges(bookings []models.Booking, blocks []models.BusyBlock) []interval.Range {
	var out []interval.Range
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		out = append(out, interval.Range{Start: b.StartTime, End: b.EndTime})
	}
	for _, bl := range blocks {
		out = append(out, interval.Range{Start: bl.StartTime, End: bl.EndTime})
	}
	return out
}

func dedupeSorted(times []time.Time) []time.Time {
	if len(times) == 0 {
		return nil
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	out := times[:1]
	for _, t := range times[1:] {
		if !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
