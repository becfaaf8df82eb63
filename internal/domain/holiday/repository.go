package holiday

import (
	"context"
)

// RequestRepository defines data access for holiday requests.
type RequestRepository interface {
	Create(ctx context.Context, request HolidayRequest) (HolidayRequest, error)

	GetByID(ctx context.Context, id string) (HolidayRequest, error)

	// List retrieves requests with filters and pagination, newest first.
	List(ctx context.Context, filter RequestFilter) ([]HolidayRequest, int64, error)

	// UpdateStatus moves a pending request to approved or rejected, storing
	// the rejection reason when one is given. Returns
	// ErrRequestAlreadyProcessed when the request is no longer pending.
	UpdateStatus(ctx context.Context, id string, status RequestStatus, rejectReason *string) error
}
