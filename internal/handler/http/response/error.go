package response

import (
	"errors"
	"net/http"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/auth"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/holiday"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// An illegal explicit action is a client mistake with a helpful message.
	var illegal *timeclock.IllegalActionError
	if errors.As(err, &illegal) {
		Conflict(w, illegal.Error())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, auth.ErrAdminRequired):
		Forbidden(w, "Admin privilege required")

	// Timeclock errors
	case errors.Is(err, timeclock.ErrInvalidCode):
		NotFound(w, "No user matches the submitted code")
	case errors.Is(err, timeclock.ErrDuplicateSubmission):
		Conflict(w, "An identical punch was just recorded")
	case errors.Is(err, timeclock.ErrNoValidAction):
		Conflict(w, "No valid action for the current state")
	case errors.Is(err, timeclock.ErrInvalidTime):
		BadRequest(w, "Supplied time is not within the valid bounds", nil)
	case errors.Is(err, timeclock.ErrNoAnomaly):
		Conflict(w, "No open anomaly to remediate")
	case errors.Is(err, timeclock.ErrLegacyLog):
		Conflict(w, "Attendance log needs migration before this operation")
	case errors.Is(err, timeclock.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, timeclock.ErrStoreUnavailable):
		ServiceUnavailable(w, "Attendance store unavailable")

	// Holiday errors
	case errors.Is(err, holiday.ErrRequestNotFound):
		NotFound(w, "Holiday request not found")
	case errors.Is(err, holiday.ErrRequestAlreadyProcessed):
		Conflict(w, "Holiday request already processed")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
