package timeclock

import (
	"sort"
	"time"
)

// ActionType identifies a punch event kind as stored in the attendance log.
type ActionType string

const (
	ActionStartWork  ActionType = "START_WORK"
	ActionStopWork   ActionType = "STOP_WORK"
	ActionStartBreak ActionType = "START_BREAK"
	ActionStopBreak  ActionType = "STOP_BREAK"

	// Legacy binary punch kinds from the pre-break data model. Read for
	// migration only, never written by new logic.
	ActionLegacyIn  ActionType = "IN"
	ActionLegacyOut ActionType = "OUT"
)

// IsLegacy reports whether the action comes from the old IN/OUT data model.
func (a ActionType) IsLegacy() bool {
	return a == ActionLegacyIn || a == ActionLegacyOut
}

// AttendanceEvent is a single immutable entry in a user's append-only
// attendance log.
type AttendanceEvent struct {
	ID        string     `json:"id"`
	Type      ActionType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
}

// SortEvents returns a copy of events in canonical order: ascending by
// timestamp, ties broken by original position.
func SortEvents(events []AttendanceEvent) []AttendanceEvent {
	sorted := make([]AttendanceEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// UserState is the derived working/break state of a user. It is a
// materialized view of the attendance log, cached on the user document and
// recomputable from scratch at any time.
type UserState struct {
	IsWorking      bool       `json:"is_working"`
	IsOnBreak      bool       `json:"is_on_break"`
	LastWorkStart  *time.Time `json:"last_work_start,omitempty"`
	LastBreakStart *time.Time `json:"last_break_start,omitempty"`
	LastAction     ActionType `json:"last_action,omitempty"`
	LastActionTime *time.Time `json:"last_action_time,omitempty"`
}

// User is the punch-terminal user document. It is owned by the backing
// store; the service loads it, mutates it in memory, and persists it back.
type User struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SecretCode    string            `json:"secret_code"`
	HourlyRate    float64           `json:"hourly_rate"`
	Amount        float64           `json:"amount"`
	AttendanceLog []AttendanceEvent `json:"attendance_log"`
	CurrentState  *UserState        `json:"current_state,omitempty"`
}

// LastEvent returns the most recent event in canonical order, or nil for an
// empty log.
func (u *User) LastEvent() *AttendanceEvent {
	if len(u.AttendanceLog) == 0 {
		return nil
	}
	sorted := SortEvents(u.AttendanceLog)
	return &sorted[len(sorted)-1]
}

// AttendanceRecord is the immutable audit row mirroring a persisted event,
// written for reporting. AmountEarned is set only on session-closing events.
type AttendanceRecord struct {
	ID           string
	UserID       string
	UserName     string
	EventID      string
	EventType    ActionType
	EventTime    time.Time
	AmountEarned *float64
	CreatedAt    time.Time
}

// AnomalyKind classifies a detected log irregularity requiring guided
// manual correction.
type AnomalyKind string

const (
	AnomalyLongBreak         AnomalyKind = "LONG_BREAK"
	AnomalyLongWork          AnomalyKind = "LONG_WORK"
	AnomalyForgottenPunchOut AnomalyKind = "FORGOTTEN_PUNCH_OUT"
)

// Anomaly is a control signal, not an error: the requested punch cannot
// proceed until the caller remediates the open interval. OpenedAt is the
// start of the offending interval; OpenAction says which start event left
// it open (relevant for ForgottenPunchOut).
type Anomaly struct {
	Kind       AnomalyKind `json:"kind"`
	OpenedAt   time.Time   `json:"opened_at"`
	OpenAction ActionType  `json:"open_action"`
}

// RangeTotals is the payroll aggregation over a date range.
type RangeTotals struct {
	WorkMinutes  float64 `json:"work_minutes"`
	WorkHours    float64 `json:"work_hours"`
	BreakMinutes float64 `json:"break_minutes"`
	BreakHours   float64 `json:"break_hours"`
	BreakCount   int     `json:"break_count"`
	SessionCount int     `json:"session_count"`
	Amount       float64 `json:"amount"`
}
