// Package interval implements the half-open [start, end) interval
// arithmetic shared by the availability and booking engines: overlap
// testing, subtraction, and shrinking. Equality at a boundary never
// counts as overlap.
package interval

import "time"

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start, or 0 if the range is empty/inverted.
func (r Range) Duration() time.Duration {
	if !r.End.After(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Empty reports whether the range has non-positive length.
func (r Range) Empty() bool {
	return !r.End.After(r.Start)
}

// Overlaps reports whether r and other share any instant, under the
// half-open overlap predicate s < e' AND e > s'.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Contains reports whether instant t falls within [r.Start, r.End).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Subtract removes every busy range from r, returning the surviving
// pieces in ascending order. A busy range straddling r splits it into
// two; a busy range covering r entirely removes it.
func Subtract(r Range, busy []Range) []Range {
	remaining := []Range{r}
	for _, b := range busy {
		var next []Range
		for _, seg := range remaining {
			next = append(next, subtractOne(seg, b)...)
		}
		remaining = next
		if len(remaining) == 0 {
			break
		}
	}
	return remaining
}

func subtractOne(seg, busy Range) []Range {
	if !seg.Overlaps(busy) {
		return []Range{seg}
	}
	var out []Range
	if busy.Start.After(seg.Start) {
		left := Range{Start: seg.Start, End: busy.Start}
		if !left.Empty() {
			out = append(out, left)
		}
	}
	if busy.End.Before(seg.End) {
		right := Range{Start: busy.End, End: seg.End}
		if !right.Empty() {
			out = append(out, right)
		}
	}
	return out
}

// Shrink narrows r by before from the left and after from the right,
// returning ok=false if the result is empty or inverted.
func Shrink(r Range, before, after time.Duration) (Range, bool) {
	shrunk := Range{Start: r.Start.Add(before), End: r.End.Add(-after)}
	if shrunk.Empty() {
		return Range{}, false
	}
	return shrunk, true
}

// TrimBefore left-trims r so it starts no earlier than floor, dropping
// it entirely if floor is at or after r.End (a minimum-notice floor
// that ends at or before the range drops it).
func TrimBefore(r Range, floor time.Time) (Range, bool) {
	if !r.End.After(floor) {
		return Range{}, false
	}
	if r.Start.Before(floor) {
		r.Start = floor
	}
	return r, true
}
