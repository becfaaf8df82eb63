package timeclock

import (
	"context"
)

// TimeclockService defines the punch, remediation, and reporting operations
// exposed to the terminal and dashboard.
type TimeclockService interface {
	// SubmitAction processes one punch: resolves the next legal action for
	// the user behind the code (auto-detected unless the request names
	// one), appends the event, and updates pay. When the log holds an
	// anomaly the response carries it instead of a recorded action.
	SubmitAction(ctx context.Context, req SubmitActionRequest) (SubmitActionResponse, error)

	// RemediateForgottenPunchOut closes a session left open over midnight
	// at the supplied prior-day time and starts a fresh session now.
	RemediateForgottenPunchOut(ctx context.Context, req RemediateForgottenRequest) (RemediationResponse, error)

	// RemediateLongBreak closes an overlong break at the supplied time and
	// ends the whole session now, recomputing pay.
	RemediateLongBreak(ctx context.Context, req RemediateLongBreakRequest) (RemediationResponse, error)

	// RemediateLongWork closes an overlong session at the supplied time,
	// recomputing pay from events up to that stop.
	RemediateLongWork(ctx context.Context, req RemediateLongWorkRequest) (RemediationResponse, error)

	// ComputeRangeTotals aggregates paid minutes, breaks, sessions, and
	// money over a date range, for one user or all users.
	ComputeRangeTotals(ctx context.Context, filter RangeTotalsFilter) (RangeTotalsResponse, error)

	// GetUserState returns the user's derived state, recomputing from the
	// full log when asked or when no cached value exists.
	GetUserState(ctx context.Context, userID string, recompute bool) (StateResponse, error)
}
