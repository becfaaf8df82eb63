package timeclock

import (
	"time"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/validator"
)

// Requested action names as submitted by the terminal UI.
const (
	RequestStartWork  = "start-work"
	RequestStopWork   = "stop-work"
	RequestStartBreak = "start-break"
	RequestStopBreak  = "stop-break"
)

var requestedActions = []string{RequestStartWork, RequestStopWork, RequestStartBreak, RequestStopBreak}

// RequestedToAction maps a terminal action name to its event type. The
// empty string maps to the empty ActionType (auto-detect).
func RequestedToAction(requested string) ActionType {
	switch requested {
	case RequestStartWork:
		return ActionStartWork
	case RequestStopWork:
		return ActionStopWork
	case RequestStartBreak:
		return ActionStartBreak
	case RequestStopBreak:
		return ActionStopBreak
	default:
		return ""
	}
}

// ========================================
// PUNCH DTOs
// ========================================

type SubmitActionRequest struct {
	Code   string `json:"code"`
	Action string `json:"action,omitempty"` // optional explicit action
}

func (r *SubmitActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	} else if !validator.IsValidSecretCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be an 8-digit number",
		})
	}

	if r.Action != "" && !validator.IsInSlice(r.Action, requestedActions) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: start-work, stop-work, start-break, stop-break",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SubmitActionResponse reports either a recorded punch or an anomaly that
// must be remediated before the punch can proceed.
type SubmitActionResponse struct {
	UserID         string     `json:"user_id"`
	UserName       string     `json:"user_name"`
	Message        string     `json:"message"`
	Action         ActionType `json:"action,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	AmountEarned   *float64   `json:"amount_earned,omitempty"`
	Anomaly        *Anomaly   `json:"anomaly,omitempty"`
	NeedsMigration bool       `json:"needs_migration,omitempty"`
}

// ========================================
// REMEDIATION DTOs
// ========================================

type RemediateForgottenRequest struct {
	Code     string `json:"code"`
	StopTime string `json:"stop_time"` // RFC3339, punch-out time for the prior day
}

func (r *RemediateForgottenRequest) Validate() error {
	return validateRemediation(r.Code, r.StopTime, "stop_time")
}

type RemediateLongBreakRequest struct {
	Code          string `json:"code"`
	BreakStopTime string `json:"break_stop_time"` // RFC3339
}

func (r *RemediateLongBreakRequest) Validate() error {
	return validateRemediation(r.Code, r.BreakStopTime, "break_stop_time")
}

type RemediateLongWorkRequest struct {
	Code         string `json:"code"`
	WorkStopTime string `json:"work_stop_time"` // RFC3339
}

func (r *RemediateLongWorkRequest) Validate() error {
	return validateRemediation(r.Code, r.WorkStopTime, "work_stop_time")
}

func validateRemediation(code, timeStr, timeField string) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	} else if !validator.IsValidSecretCode(code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be an 8-digit number",
		})
	}

	if validator.IsEmpty(timeStr) {
		errs = append(errs, validator.ValidationError{
			Field:   timeField,
			Message: timeField + " is required",
		})
	} else if _, ok := validator.IsValidDateTime(timeStr); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   timeField,
			Message: timeField + " must be an RFC3339 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RemediationResponse reports the synthesized events and the recomputed
// state after a guided backfill.
type RemediationResponse struct {
	UserID       string            `json:"user_id"`
	Message      string            `json:"message"`
	Appended     []AttendanceEvent `json:"appended"`
	AmountEarned float64           `json:"amount_earned"`
	State        UserState         `json:"state"`
}

// ========================================
// REPORTING DTOs
// ========================================

type RangeTotalsFilter struct {
	UserID    *string `json:"user_id,omitempty"` // nil means all users
	StartDate string  `json:"start_date"`        // YYYY-MM-DD
	EndDate   string  `json:"end_date"`          // YYYY-MM-DD
}

func (f *RangeTotalsFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(f.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UserTotals is one user's share of a range report.
type UserTotals struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	RangeTotals
}

type RangeTotalsResponse struct {
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Totals    RangeTotals  `json:"totals"`
	Users     []UserTotals `json:"users,omitempty"`
}

// StateResponse is the admin view of a user's derived state.
type StateResponse struct {
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	State          UserState `json:"state"`
	Recomputed     bool      `json:"recomputed"`
	NeedsMigration bool      `json:"needs_migration,omitempty"`
}
