package availability

import (
	"sort"
	"time"

	"github.com/slotwise/scheduling-core/internal/models"
)

// combineSingle tags each host's own slots with just that host, merging
// across hosts and sorting by start.
func combineSingle(hostStarts map[string][]time.Time, duration time.Duration) []Slot {
	var slots []Slot
	for hostID, starts := range hostStarts {
		for _, s := range starts {
			slots = append(slots, Slot{Start: s, End: s.Add(duration), HostIDs: []string{hostID}})
		}
	}
	sortSlots(slots)
	return slots
}

// combineCollective emits a slot only for starts present in every host's
// set, tagged with the full host list.
func combineCollective(hostIDs []string, hostStarts map[string][]time.Time, duration time.Duration) []Slot {
	if len(hostIDs) == 0 {
		return nil
	}
	sets := make(map[string]map[time.Time]bool, len(hostStarts))
	for hostID, starts := range hostStarts {
		set := make(map[time.Time]bool, len(starts))
		for _, s := range starts {
			set[s] = true
		}
		sets[hostID] = set
	}

	union := unionStarts(hostStarts)
	var slots []Slot
	for _, s := range union {
		inAll := true
		for _, hostID := range hostIDs {
			if !sets[hostID][s] {
				inAll = false
				break
			}
		}
		if inAll {
			slots = append(slots, Slot{Start: s, End: s.Add(duration), HostIDs: append([]string{}, hostIDs...)})
		}
	}
	return slots
}

// combineRoundRobin walks the union of slot starts in ascending order
// and, for each, picks the next available host in the fairness rotation
//. fairness is pre-sorted by
// (bookingCount asc, lastBookedAt asc nulls-first, priority desc).
func combineRoundRobin(fairness []models.EventTypeHost, hostStarts map[string][]time.Time, duration time.Duration) []Slot {
	if len(fairness) == 0 {
		return nil
	}
	sets := make(map[string]map[time.Time]bool, len(hostStarts))
	for hostID, starts := range hostStarts {
		set := make(map[time.Time]bool, len(starts))
		for _, s := range starts {
			set[s] = true
		}
		sets[hostID] = set
	}

	union := unionStarts(hostStarts)
	cursor := 0
	var slots []Slot
	for _, s := range union {
		chosen := -1
		for i := 0; i < len(fairness); i++ {
			idx := (cursor + i) % len(fairness)
			hostID := fairness[idx].UserID
			if sets[hostID][s] {
				chosen = idx
				break
			}
		}
		if chosen == -1 {
			continue
		}
		slots = append(slots, Slot{Start: s, End: s.Add(duration), HostIDs: []string{fairness[chosen].UserID}})
		cursor = (chosen + 1) % len(fairness)
	}
	return slots
}

func unionStarts(hostStarts map[string][]time.Time) []time.Time {
	set := make(map[time.Time]bool)
	for _, starts := range hostStarts {
		for _, s := range starts {
			set[s] = true
		}
	}
	out := make([]time.Time, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].HostIDs[0] < slots[j].HostIDs[0]
	})
}
