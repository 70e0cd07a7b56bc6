package availability

import (
	"time"

	"github.com/slotwise/scheduling-core/internal/interval"
)

// sliceRange walks r in duration-long windows, starting from r.Start and
// advancing by the fixed 15-minute grid, emitting one slot start per
// fitting window. Slots are aligned to the range
// start, not to the hour.
func sliceRange(r interval.Range, duration time.Duration) []time.Time {
	var starts []time.Time
	for s := r.Start; !s.Add(duration).After(r.End); s = s.Add(slotGrid) {
		starts = append(starts, s)
	}
	return starts
}

// sliceRanges slices every range in rs and returns the flattened,
// ascending list of slot start instants.
func sliceRanges(rs []interval.Range, duration time.Duration) []time.Time {
	var all []time.Time
	for _, r := range rs {
		all = append(all, sliceRange(r, duration)...)
	}
	return all
}
