package booking

import "context"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListInput is the input to List.
type ListInput struct {
	OrganizationID string
	Limit          int
	Offset         int
}

// List paginates an organization's bookings, newest start time first.
func (e *Engine) List(ctx context.Context, in ListInput) (*ListResult, error) {
	limit := in.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	bookings, total, err := e.storage.ListBookingsByOrganization(ctx, in.OrganizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListResult{Bookings: bookings, Total: total, Limit: limit, Offset: offset}, nil
}
