package timeclock

import (
	"errors"
	"fmt"
)

// Timeclock domain errors
var (
	// Punch errors
	ErrInvalidCode         = errors.New("no user matches the submitted code")
	ErrNoValidAction       = errors.New("no valid action for the current state")
	ErrDuplicateSubmission = errors.New("duplicate submission: an identical punch was just recorded")

	// Remediation errors
	ErrInvalidTime = errors.New("supplied time is not within the valid bounds")
	ErrNoAnomaly   = errors.New("no open anomaly to remediate")

	// Log errors
	ErrLegacyLog = errors.New("attendance log contains legacy IN/OUT entries and needs manual reconciliation")

	// Store errors
	ErrUserNotFound     = errors.New("user not found")
	ErrStoreUnavailable = errors.New("attendance store unavailable")
)

// IllegalActionError is returned when an explicitly requested action is not
// legal for the user's current state. The message names the blocking
// condition.
type IllegalActionError struct {
	Requested ActionType
	Reason    string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", requestedLabel(e.Requested), e.Reason)
}

func requestedLabel(a ActionType) string {
	switch a {
	case ActionStartWork:
		return "start work"
	case ActionStopWork:
		return "stop work"
	case ActionStartBreak:
		return "start break"
	case ActionStopBreak:
		return "stop break"
	default:
		return string(a)
	}
}
