package timeclock

import (
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

// StateCalculator derives a user's working/break state from the attendance
// log. Derivation is a pure fold: recomputing over the same log always
// yields the same state, so it doubles as the verification path for the
// cached state field on the user document.
type StateCalculator struct{}

func NewStateCalculator() *StateCalculator {
	return &StateCalculator{}
}

// Derive folds the log in canonical order into a UserState. Logs containing
// legacy IN/OUT entries short-circuit to the idle zero state and return
// ErrLegacyLog: legacy data carries no break semantics, so the state is
// unknown and the user must be flagged for manual reconciliation instead of
// guessed at.
func (c *StateCalculator) Derive(events []timeclock.AttendanceEvent) (timeclock.UserState, error) {
	var state timeclock.UserState
	for _, ev := range timeclock.SortEvents(events) {
		if ev.Type.IsLegacy() {
			return timeclock.UserState{}, timeclock.ErrLegacyLog
		}
		state = c.Apply(state, ev)
	}
	return state, nil
}

// Apply advances a state by one event. It is the single transition
// function shared by full derivation and the incremental cache update, so
// the two can never drift.
func (c *StateCalculator) Apply(state timeclock.UserState, ev timeclock.AttendanceEvent) timeclock.UserState {
	ts := ev.Timestamp
	switch ev.Type {
	case timeclock.ActionStartWork:
		state.IsWorking = true
		state.IsOnBreak = false
		state.LastWorkStart = &ts
		state.LastBreakStart = nil
	case timeclock.ActionStartBreak:
		// A break only exists inside a work session; ignore strays so the
		// IsOnBreak => IsWorking invariant holds even for malformed logs.
		if state.IsWorking {
			state.IsOnBreak = true
			state.LastBreakStart = &ts
		}
	case timeclock.ActionStopBreak:
		state.IsOnBreak = false
		state.LastBreakStart = nil
	case timeclock.ActionStopWork:
		state.IsWorking = false
		state.IsOnBreak = false
		state.LastWorkStart = nil
		state.LastBreakStart = nil
	}
	state.LastAction = ev.Type
	state.LastActionTime = &ts
	return state
}

// HasLegacyEvents reports whether the log still contains unmigrated IN/OUT
// entries.
func HasLegacyEvents(events []timeclock.AttendanceEvent) bool {
	for _, ev := range events {
		if ev.Type.IsLegacy() {
			return true
		}
	}
	return false
}
