package holiday

import (
	"context"
)

// RequestService defines business logic for holiday requests.
type RequestService interface {
	// Submit creates a pending request for the user behind the code.
	Submit(ctx context.Context, req CreateRequestRequest) (RequestResponse, error)

	// ListMine retrieves the requests of the user behind the code.
	ListMine(ctx context.Context, code string) ([]RequestResponse, error)

	// List retrieves requests with filters (admin).
	List(ctx context.Context, filter RequestFilter) (ListRequestsResponse, error)

	// Approve marks a pending request approved.
	Approve(ctx context.Context, id string) (RequestResponse, error)

	// Reject marks a pending request rejected.
	Reject(ctx context.Context, req RejectRequestRequest) (RequestResponse, error)
}
