package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slotwise/scheduling-core/internal/interval"
	"github.com/slotwise/scheduling-core/internal/models"
)

// resolveWindows walks every local calendar day touching [start, end) in
// loc and produces the nominal-availability ranges for each, applying
// specificDate overrides ahead of the recurring weekday windows
//.
func resolveWindows(windows []models.ScheduleWindow, start, end time.Time, loc *time.Location) ([]interval.Range, error) {
	var ranges []interval.Range

	startLocal := start.In(loc)
	endLocal := end.In(loc)
	day := civilMidnight(startLocal, loc)
	lastDay := civilMidnight(endLocal.Add(-time.Nanosecond), loc)

	for !day.After(lastDay) {
		dayRanges, err := rangesForDay(windows, day, loc)
		if err != nil {
			return nil, err
		}
		for _, r := range dayRanges {
			clipped := interval.Range{Start: r.Start, End: r.End}
			if clipped.Start.Before(start) {
				clipped.Start = start
			}
			if clipped.End.After(end) {
				clipped.End = end
			}
			if !clipped.Empty() {
				ranges = append(ranges, clipped)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return ranges, nil
}

func rangesForDay(windows []models.ScheduleWindow, day time.Time, loc *time.Location) ([]interval.Range, error) {
	dateStr := day.Format("2006-01-02")
	weekday := int(day.Weekday())

	var overrides []models.ScheduleWindow
	for _, w := range windows {
		if w.SpecificDate != nil && *w.SpecificDate == dateStr {
			overrides = append(overrides, w)
		}
	}

	if len(overrides) > 0 {
		var out []interval.Range
		for _, w := range overrides {
			if !w.IsAvailable {
				continue
			}
			r, err := windowToRange(w, day, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}

	var out []interval.Range
	for _, w := range windows {
		if w.SpecificDate != nil || !w.IsAvailable || w.DayOfWeek != weekday {
			continue
		}
		r, err := windowToRange(w, day, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func windowToRange(w models.ScheduleWindow, day time.Time, loc *time.Location) (interval.Range, error) {
	stH, stM, err := parseHHMM(w.StartTime)
	if err != nil {
		return interval.Range{}, fmt.Errorf("schedule window %s: %w", w.ID, err)
	}
	etH, etM, err := parseHHMM(w.EndTime)
	if err != nil {
		return interval.Range{}, fmt.Errorf("schedule window %s: %w", w.ID, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), stH, stM, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), etH, etM, 0, 0, loc)
	return interval.Range{Start: start, End: end}, nil
}

// parseHHMM parses "HH:MM" into hour and minute components.
func parseHHMM(timeStr string) (int, int, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format: expected HH:MM, got %s", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour: %s", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute: %s", parts[1])
	}
	return hour, minute, nil
}

func civilMidnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
