package availability

import "time"

// Query is the input to GetAvailability.
type Query struct {
	EventTypeID     *string
	UserIDs         []string
	Start           time.Time
	End             time.Time
	DurationMinutes int
	Timezone        string
}

// Slot is one bookable window, tagged with the host(s) eligible for it
// under the event type's assignment policy.
type Slot struct {
	Start   time.Time
	End     time.Time
	HostIDs []string
}

// effectiveConstraints is the result of layering event-type overrides
// over a user schedule's defaults, field-wise, event-type wins when
// non-null.
type effectiveConstraints struct {
	bufferBefore      time.Duration
	bufferAfter       time.Duration
	minimumNotice     time.Duration
	maxBookingsPerDay *int
}

const slotGrid = 15 * time.Minute
