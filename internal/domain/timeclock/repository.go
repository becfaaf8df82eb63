package timeclock

import (
	"context"
)

// UserRepository is the persistence collaborator for user documents. The
// core treats the store as a key-value document store reachable by user id
// or secret code.
type UserRepository interface {
	// GetBySecretCode looks up a user by their 8-digit punch code.
	GetBySecretCode(ctx context.Context, code string) (User, error)

	// GetByID retrieves a user document by id.
	GetByID(ctx context.Context, id string) (User, error)

	// List retrieves all user documents, for reporting and sweeps.
	List(ctx context.Context) ([]User, error)

	// AppendEvents appends events to the user's attendance log and, in the
	// same store operation, updates the cached amount and state when
	// provided. The update is atomic: either everything lands or nothing
	// does.
	AppendEvents(ctx context.Context, userID string, events []AttendanceEvent, newAmount *float64, newState *UserState) error
}

// AuditRepository writes immutable audit records mirroring persisted
// events. Records are derived data: the attendance log remains the source
// of truth and the audit trail can be rebuilt from it.
type AuditRepository interface {
	CreateRecord(ctx context.Context, record AttendanceRecord) error
}

// StateCache is an optional fast-path cache of derived user state. A nil
// cache is valid; the user document's state field remains the materialized
// view of record.
type StateCache interface {
	Get(ctx context.Context, userID string) (*UserState, error)
	Set(ctx context.Context, userID string, state UserState) error
	Invalidate(ctx context.Context, userID string) error
}
