package interval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slotwise/scheduling-core/internal/interval"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rng(start, end string) interval.Range {
	return interval.Range{Start: mustTime(start), End: mustTime(end)}
}

func TestRangeOverlaps(t *testing.T) {
	a := rng("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")

	assert.True(t, a.Overlaps(rng("2024-01-01T09:30:00Z", "2024-01-01T09:45:00Z")))
	assert.True(t, a.Overlaps(rng("2024-01-01T08:00:00Z", "2024-01-01T09:30:00Z")))
	assert.False(t, a.Overlaps(rng("2024-01-01T10:00:00Z", "2024-01-01T11:00:00Z")), "touching at the boundary is not overlap")
	assert.False(t, a.Overlaps(rng("2024-01-01T07:00:00Z", "2024-01-01T09:00:00Z")), "touching at the boundary is not overlap")
}

func TestRangeContains(t *testing.T) {
	a := rng("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")
	assert.True(t, a.Contains(mustTime("2024-01-01T09:00:00Z")))
	assert.False(t, a.Contains(mustTime("2024-01-01T10:00:00Z")), "end is exclusive")
	assert.False(t, a.Contains(mustTime("2024-01-01T08:59:59Z")))
}

func TestSubtractSplitsMiddle(t *testing.T) {
	whole := rng("2024-01-01T09:00:00Z", "2024-01-01T12:00:00Z")
	busy := rng("2024-01-01T10:00:00Z", "2024-01-01T11:00:00Z")

	got := interval.Subtract(whole, []interval.Range{busy})

	assert.Equal(t, []interval.Range{
		rng("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z"),
		rng("2024-01-01T11:00:00Z", "2024-01-01T12:00:00Z"),
	}, got)
}

func TestSubtractRemovesWhenBusyCoversWhole(t *testing.T) {
	whole := rng("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")
	busy := rng("2024-01-01T08:00:00Z", "2024-01-01T11:00:00Z")

	got := interval.Subtract(whole, []interval.Range{busy})
	assert.Empty(t, got)
}

func TestSubtractMultipleBusyRangesAccumulate(t *testing.T) {
	whole := rng("2024-01-01T09:00:00Z", "2024-01-01T17:00:00Z")
	busy := []interval.Range{
		rng("2024-01-01T10:00:00Z", "2024-01-01T10:30:00Z"),
		rng("2024-01-01T14:00:00Z", "2024-01-01T15:00:00Z"),
	}

	got := interval.Subtract(whole, busy)

	assert.Equal(t, []interval.Range{
		rng("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z"),
		rng("2024-01-01T10:30:00Z", "2024-01-01T14:00:00Z"),
		rng("2024-01-01T15:00:00Z", "2024-01-01T17:00:00Z"),
	}, got)
}

func TestShrinkByBuffers(t *testing.T) {
	r := rng("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")

	shrunk, ok := interval.Shrink(r, 10*time.Minute, 15*time.Minute)
	assert.True(t, ok)
	assert.Equal(t, rng("2024-01-01T09:10:00Z", "2024-01-01T09:45:00Z"), shrunk)
}

func TestShrinkToEmptyReturnsFalse(t *testing.T) {
	r := rng("2024-01-01T09:00:00Z", "2024-01-01T09:20:00Z")

	_, ok := interval.Shrink(r, 15*time.Minute, 15*time.Minute)
	assert.False(t, ok)
}

func TestTrimBeforeNoticeFloor(t *testing.T) {
	r := rng("2024-01-01T09:00:00Z", "2024-01-01T12:00:00Z")

	trimmed, ok := interval.TrimBefore(r, mustTime("2024-01-01T10:00:00Z"))
	assert.True(t, ok)
	assert.Equal(t, rng("2024-01-01T10:00:00Z", "2024-01-01T12:00:00Z"), trimmed)
}

func TestTrimBeforeDropsWhenFloorAtOrAfterEnd(t *testing.T) {
	r := rng("2024-01-01T09:00:00Z", "2024-01-01T12:00:00Z")

	_, ok := interval.TrimBefore(r, mustTime("2024-01-01T12:00:00Z"))
	assert.False(t, ok, "floor at the end boundary drops the range entirely")

	_, ok = interval.TrimBefore(r, mustTime("2024-01-02T00:00:00Z"))
	assert.False(t, ok)
}

func TestDurationOfInvertedRangeIsZero(t *testing.T) {
	r := interval.Range{Start: mustTime("2024-01-01T10:00:00Z"), End: mustTime("2024-01-01T09:00:00Z")}
	assert.Equal(t, time.Duration(0), r.Duration())
	assert.True(t, r.Empty())
}
