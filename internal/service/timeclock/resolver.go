package timeclock

import (
	"time"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

// ResolverConfig holds the anomaly thresholds for the action resolver.
type ResolverConfig struct {
	MaxBreak       time.Duration
	MaxWorkSession time.Duration
}

// DefaultResolverConfig returns the standard thresholds: breaks over 1.5h
// and sessions over 12h are anomalies.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MaxBreak:       90 * time.Minute,
		MaxWorkSession: 12 * time.Hour,
	}
}

// Resolution is the outcome of resolving one punch: either the action to
// record, or an anomaly that must be remediated first.
type Resolution struct {
	Action  timeclock.ActionType
	Anomaly *timeclock.Anomaly
}

// ActionResolver decides the next legal action for a state, enforcing the
// legality table and the anomaly thresholds.
//
//	idle:     start-work only
//	working:  stop-work or start-break
//	on break: stop-break only
type ActionResolver struct {
	cfg ResolverConfig
}

func NewActionResolver(cfg ResolverConfig) *ActionResolver {
	if cfg.MaxBreak <= 0 {
		cfg.MaxBreak = DefaultResolverConfig().MaxBreak
	}
	if cfg.MaxWorkSession <= 0 {
		cfg.MaxWorkSession = DefaultResolverConfig().MaxWorkSession
	}
	return &ActionResolver{cfg: cfg}
}

// Resolve determines the next action for the given state at the captured
// instant. When explicit is empty the action is auto-detected in priority
// order stop-break > start-break > stop-work > start-work. A session left
// open on a prior calendar day is reported as a ForgottenPunchOut anomaly
// before anything else is considered.
func (r *ActionResolver) Resolve(state timeclock.UserState, now time.Time, explicit timeclock.ActionType) (Resolution, error) {
	if anomaly := r.overnightAnomaly(state, now); anomaly != nil {
		return Resolution{Anomaly: anomaly}, nil
	}

	if explicit != "" {
		return r.resolveExplicit(state, now, explicit)
	}
	return r.autoDetect(state, now)
}

// overnightAnomaly reports a session still open from a prior calendar day.
func (r *ActionResolver) overnightAnomaly(state timeclock.UserState, now time.Time) *timeclock.Anomaly {
	if !state.IsWorking || state.LastActionTime == nil {
		return nil
	}
	if sameCalendarDay(*state.LastActionTime, now) {
		return nil
	}
	if state.IsOnBreak && state.LastBreakStart != nil {
		return &timeclock.Anomaly{
			Kind:       timeclock.AnomalyForgottenPunchOut,
			OpenedAt:   *state.LastBreakStart,
			OpenAction: timeclock.ActionStartBreak,
		}
	}
	if state.LastWorkStart == nil {
		return nil
	}
	return &timeclock.Anomaly{
		Kind:       timeclock.AnomalyForgottenPunchOut,
		OpenedAt:   *state.LastWorkStart,
		OpenAction: timeclock.ActionStartWork,
	}
}

func (r *ActionResolver) resolveExplicit(state timeclock.UserState, now time.Time, action timeclock.ActionType) (Resolution, error) {
	switch action {
	case timeclock.ActionStartWork:
		if state.IsWorking {
			return Resolution{}, &timeclock.IllegalActionError{Requested: action, Reason: "already working"}
		}
	case timeclock.ActionStopWork:
		if !state.IsWorking {
			return Resolution{}, &timeclock.IllegalActionError{Requested: action, Reason: "not working"}
		}
		if state.IsOnBreak {
			return Resolution{}, &timeclock.IllegalActionError{Requested: action, Reason: "still on break"}
		}
		if anomaly := r.longWorkAnomaly(state, now); anomaly != nil {
			return Resolution{Anomaly: anomaly}, nil
		}
	case timeclock.ActionStartBreak:
		if !state.IsWorking {
			return Resolution{}, &timeclock.IllegalActionError{Requested: action, Reason: "not working"}
		}
		if state.IsOnBreak {
			return Resolution{}, &timeclock.IllegalActionError{Requested: action, Reason: "already on break"}
		}
	case timeclock.ActionStopBreak:
		if !state.IsOnBreak {
			return Resolution{}, &timeclock.IllegalActionError{Requested: action, Reason: "not on break"}
		}
		if anomaly := r.longBreakAnomaly(state, now); anomaly != nil {
			return Resolution{Anomaly: anomaly}, nil
		}
	default:
		return Resolution{}, timeclock.ErrNoValidAction
	}
	return Resolution{Action: action}, nil
}

func (r *ActionResolver) autoDetect(state timeclock.UserState, now time.Time) (Resolution, error) {
	switch {
	case state.IsOnBreak:
		if anomaly := r.longBreakAnomaly(state, now); anomaly != nil {
			return Resolution{Anomaly: anomaly}, nil
		}
		return Resolution{Action: timeclock.ActionStopBreak}, nil
	case state.IsWorking:
		// start-break outranks stop-work; leaving work is an explicit
		// choice on the terminal.
		if anomaly := r.longWorkAnomaly(state, now); anomaly != nil {
			return Resolution{Anomaly: anomaly}, nil
		}
		return Resolution{Action: timeclock.ActionStartBreak}, nil
	case !state.IsWorking:
		return Resolution{Action: timeclock.ActionStartWork}, nil
	}
	// Unreachable given the table above, guarded all the same.
	return Resolution{}, timeclock.ErrNoValidAction
}

func (r *ActionResolver) longBreakAnomaly(state timeclock.UserState, now time.Time) *timeclock.Anomaly {
	if state.LastBreakStart == nil || now.Sub(*state.LastBreakStart) <= r.cfg.MaxBreak {
		return nil
	}
	return &timeclock.Anomaly{
		Kind:       timeclock.AnomalyLongBreak,
		OpenedAt:   *state.LastBreakStart,
		OpenAction: timeclock.ActionStartBreak,
	}
}

func (r *ActionResolver) longWorkAnomaly(state timeclock.UserState, now time.Time) *timeclock.Anomaly {
	if state.LastWorkStart == nil || now.Sub(*state.LastWorkStart) <= r.cfg.MaxWorkSession {
		return nil
	}
	return &timeclock.Anomaly{
		Kind:       timeclock.AnomalyLongWork,
		OpenedAt:   *state.LastWorkStart,
		OpenAction: timeclock.ActionStartWork,
	}
}

// sameCalendarDay compares the calendar dates of two instants, each in its
// own location. All timestamps in one deployment originate from the same
// clock, so the comparison is consistent.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
