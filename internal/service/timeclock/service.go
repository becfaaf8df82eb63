package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/metrics"
)

const defaultDuplicateEpsilon = 5 * time.Second

// TimeclockServiceImpl wires the state calculator, action resolver, and
// payroll calculator over the user store. One instant is captured per
// submission and used for every decision and timestamp in that submission.
type TimeclockServiceImpl struct {
	users    timeclock.UserRepository
	audit    timeclock.AuditRepository
	cache    timeclock.StateCache
	states   *StateCalculator
	resolver *ActionResolver
	payroll  *PayrollCalculator
	metrics  *metrics.Collectors
	epsilon  time.Duration
	now      func() time.Time
}

func NewTimeclockService(
	users timeclock.UserRepository,
	audit timeclock.AuditRepository,
	cache timeclock.StateCache,
	cfg ResolverConfig,
	duplicateEpsilon time.Duration,
	collectors *metrics.Collectors,
) *TimeclockServiceImpl {
	if duplicateEpsilon <= 0 {
		duplicateEpsilon = defaultDuplicateEpsilon
	}
	return &TimeclockServiceImpl{
		users:    users,
		audit:    audit,
		cache:    cache,
		states:   NewStateCalculator(),
		resolver: NewActionResolver(cfg),
		payroll:  NewPayrollCalculator(),
		metrics:  collectors,
		epsilon:  duplicateEpsilon,
		now:      time.Now,
	}
}

func (s *TimeclockServiceImpl) SubmitAction(ctx context.Context, req timeclock.SubmitActionRequest) (timeclock.SubmitActionResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.SubmitActionResponse{}, err
	}

	now := s.now()

	user, err := s.users.GetBySecretCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, timeclock.ErrUserNotFound) {
			return timeclock.SubmitActionResponse{}, timeclock.ErrInvalidCode
		}
		return timeclock.SubmitActionResponse{}, fmt.Errorf("get user by code: %w", err)
	}

	state, needsMigration := s.stateOf(&user)

	// Double-taps on the terminal land within the epsilon window; reject
	// them before resolution so the second tap cannot toggle the state.
	if last := user.LastEvent(); last != nil {
		sameRequest := req.Action == "" || timeclock.RequestedToAction(req.Action) == last.Type
		if sameRequest && now.Sub(last.Timestamp) >= 0 && now.Sub(last.Timestamp) < s.epsilon {
			return timeclock.SubmitActionResponse{}, timeclock.ErrDuplicateSubmission
		}
	}

	resolution, err := s.resolver.Resolve(state, now, timeclock.RequestedToAction(req.Action))
	if err != nil {
		return timeclock.SubmitActionResponse{}, err
	}

	if resolution.Anomaly != nil {
		s.metrics.AnomalyDetected(string(resolution.Anomaly.Kind))
		return timeclock.SubmitActionResponse{
			UserID:         user.ID,
			UserName:       user.Name,
			Message:        anomalyMessage(resolution.Anomaly.Kind),
			Anomaly:        resolution.Anomaly,
			NeedsMigration: needsMigration,
		}, nil
	}

	event := timeclock.AttendanceEvent{
		ID:        uuid.NewString(),
		Type:      resolution.Action,
		Timestamp: now,
	}
	newState := s.states.Apply(state, event)

	var amountEarned, newAmount *float64
	if event.Type == timeclock.ActionStopWork && state.LastWorkStart != nil {
		earned := s.payroll.SessionEarnings(*state.LastWorkStart, now, user.HourlyRate)
		total := round2(user.Amount + earned)
		amountEarned = &earned
		newAmount = &total
	}

	if err := s.users.AppendEvents(ctx, user.ID, []timeclock.AttendanceEvent{event}, newAmount, &newState); err != nil {
		return timeclock.SubmitActionResponse{}, fmt.Errorf("append punch event: %w", err)
	}

	s.cacheState(ctx, user.ID, newState)
	s.writeAudit(ctx, &user, event, amountEarned)
	s.metrics.PunchRecorded(string(event.Type))

	return timeclock.SubmitActionResponse{
		UserID:         user.ID,
		UserName:       user.Name,
		Message:        actionMessage(event.Type),
		Action:         event.Type,
		Timestamp:      &now,
		AmountEarned:   amountEarned,
		NeedsMigration: needsMigration,
	}, nil
}

func (s *TimeclockServiceImpl) RemediateForgottenPunchOut(ctx context.Context, req timeclock.RemediateForgottenRequest) (timeclock.RemediationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.RemediationResponse{}, err
	}

	now := s.now()

	user, state, err := s.loadForRemediation(ctx, req.Code)
	if err != nil {
		return timeclock.RemediationResponse{}, err
	}

	anomaly := s.resolver.overnightAnomaly(state, now)
	if anomaly == nil {
		return timeclock.RemediationResponse{}, timeclock.ErrNoAnomaly
	}

	stop, _ := time.Parse(time.RFC3339, req.StopTime)
	if !stop.After(anomaly.OpenedAt) || stop.After(now) {
		return timeclock.RemediationResponse{}, timeclock.ErrInvalidTime
	}

	// Close the stale day first: end the open break if one is hanging, then
	// end the session, all at the supplied stop time.
	var closing []timeclock.AttendanceEvent
	if state.IsOnBreak {
		closing = append(closing, timeclock.AttendanceEvent{
			ID: uuid.NewString(), Type: timeclock.ActionStopBreak, Timestamp: stop,
		})
	}
	closing = append(closing, timeclock.AttendanceEvent{
		ID: uuid.NewString(), Type: timeclock.ActionStopWork, Timestamp: stop,
	})

	earned := 0.0
	if state.LastWorkStart != nil {
		earned = s.payroll.SessionEarnings(*state.LastWorkStart, stop, user.HourlyRate)
	}
	total := round2(user.Amount + earned)

	closedState := state
	for _, ev := range closing {
		closedState = s.states.Apply(closedState, ev)
	}

	if err := s.users.AppendEvents(ctx, user.ID, closing, &total, &closedState); err != nil {
		return timeclock.RemediationResponse{}, fmt.Errorf("close stale session: %w", err)
	}
	for _, ev := range closing {
		s.writeAudit(ctx, &user, ev, earnedFor(ev.Type, earned))
	}

	// Start today's session as its own write: the stale day is repaired
	// even if this one fails.
	fresh := timeclock.AttendanceEvent{
		ID: uuid.NewString(), Type: timeclock.ActionStartWork, Timestamp: now,
	}
	finalState := s.states.Apply(closedState, fresh)

	if err := s.users.AppendEvents(ctx, user.ID, []timeclock.AttendanceEvent{fresh}, nil, &finalState); err != nil {
		return timeclock.RemediationResponse{}, fmt.Errorf("start fresh session: %w", err)
	}
	s.writeAudit(ctx, &user, fresh, nil)

	s.cacheState(ctx, user.ID, finalState)
	s.metrics.RemediationCompleted(string(timeclock.AnomalyForgottenPunchOut))

	return timeclock.RemediationResponse{
		UserID:       user.ID,
		Message:      "previous session closed and a new session started",
		Appended:     append(closing, fresh),
		AmountEarned: earned,
		State:        finalState,
	}, nil
}

func (s *TimeclockServiceImpl) RemediateLongBreak(ctx context.Context, req timeclock.RemediateLongBreakRequest) (timeclock.RemediationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.RemediationResponse{}, err
	}

	now := s.now()

	user, state, err := s.loadForRemediation(ctx, req.Code)
	if err != nil {
		return timeclock.RemediationResponse{}, err
	}

	if !state.IsOnBreak || s.resolver.longBreakAnomaly(state, now) == nil {
		return timeclock.RemediationResponse{}, timeclock.ErrNoAnomaly
	}

	breakStop, _ := time.Parse(time.RFC3339, req.BreakStopTime)
	if !breakStop.After(*state.LastBreakStart) || breakStop.After(now) {
		return timeclock.RemediationResponse{}, timeclock.ErrInvalidTime
	}

	// The break is corrected at the supplied time and the session ends now:
	// a break this long means the day is over.
	appended := []timeclock.AttendanceEvent{
		{ID: uuid.NewString(), Type: timeclock.ActionStopBreak, Timestamp: breakStop},
		{ID: uuid.NewString(), Type: timeclock.ActionStopWork, Timestamp: now},
	}

	earned := 0.0
	if state.LastWorkStart != nil {
		earned = s.payroll.SessionEarnings(*state.LastWorkStart, now, user.HourlyRate)
	}
	total := round2(user.Amount + earned)

	finalState := state
	for _, ev := range appended {
		finalState = s.states.Apply(finalState, ev)
	}

	if err := s.users.AppendEvents(ctx, user.ID, appended, &total, &finalState); err != nil {
		return timeclock.RemediationResponse{}, fmt.Errorf("remediate long break: %w", err)
	}
	for _, ev := range appended {
		s.writeAudit(ctx, &user, ev, earnedFor(ev.Type, earned))
	}

	s.cacheState(ctx, user.ID, finalState)
	s.metrics.RemediationCompleted(string(timeclock.AnomalyLongBreak))

	return timeclock.RemediationResponse{
		UserID:       user.ID,
		Message:      "break corrected and session closed",
		Appended:     appended,
		AmountEarned: earned,
		State:        finalState,
	}, nil
}

func (s *TimeclockServiceImpl) RemediateLongWork(ctx context.Context, req timeclock.RemediateLongWorkRequest) (timeclock.RemediationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.RemediationResponse{}, err
	}

	now := s.now()

	user, state, err := s.loadForRemediation(ctx, req.Code)
	if err != nil {
		return timeclock.RemediationResponse{}, err
	}

	if !state.IsWorking || state.IsOnBreak || s.resolver.longWorkAnomaly(state, now) == nil {
		return timeclock.RemediationResponse{}, timeclock.ErrNoAnomaly
	}

	workStop, _ := time.Parse(time.RFC3339, req.WorkStopTime)
	if !workStop.After(*state.LastWorkStart) || workStop.After(now) {
		return timeclock.RemediationResponse{}, timeclock.ErrInvalidTime
	}

	event := timeclock.AttendanceEvent{
		ID: uuid.NewString(), Type: timeclock.ActionStopWork, Timestamp: workStop,
	}

	earned := s.payroll.SessionEarnings(*state.LastWorkStart, workStop, user.HourlyRate)
	total := round2(user.Amount + earned)
	finalState := s.states.Apply(state, event)

	if err := s.users.AppendEvents(ctx, user.ID, []timeclock.AttendanceEvent{event}, &total, &finalState); err != nil {
		return timeclock.RemediationResponse{}, fmt.Errorf("remediate long session: %w", err)
	}
	s.writeAudit(ctx, &user, event, &earned)

	s.cacheState(ctx, user.ID, finalState)
	s.metrics.RemediationCompleted(string(timeclock.AnomalyLongWork))

	return timeclock.RemediationResponse{
		UserID:       user.ID,
		Message:      "session closed at the corrected time",
		Appended:     []timeclock.AttendanceEvent{event},
		AmountEarned: earned,
		State:        finalState,
	}, nil
}

func (s *TimeclockServiceImpl) ComputeRangeTotals(ctx context.Context, filter timeclock.RangeTotalsFilter) (timeclock.RangeTotalsResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeclock.RangeTotalsResponse{}, err
	}

	start, _ := time.Parse("2006-01-02", filter.StartDate)
	end, _ := time.Parse("2006-01-02", filter.EndDate)
	now := s.now()

	var users []timeclock.User
	if filter.UserID != nil {
		user, err := s.users.GetByID(ctx, *filter.UserID)
		if err != nil {
			return timeclock.RangeTotalsResponse{}, fmt.Errorf("get user: %w", err)
		}
		users = []timeclock.User{user}
	} else {
		all, err := s.users.List(ctx)
		if err != nil {
			return timeclock.RangeTotalsResponse{}, fmt.Errorf("list users: %w", err)
		}
		users = all
	}

	liveRange := !now.Before(start) && now.Before(end.AddDate(0, 0, 1))

	resp := timeclock.RangeTotalsResponse{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
	for _, user := range users {
		events := FilterRange(timeclock.SortEvents(user.AttendanceLog), start, end)
		if liveRange {
			if state, _ := s.stateOf(&user); state.IsWorking {
				events = WithVirtualStop(events, now)
			}
		}
		totals := s.payroll.Totals(events, user.HourlyRate)
		resp.Users = append(resp.Users, timeclock.UserTotals{
			UserID:      user.ID,
			UserName:    user.Name,
			RangeTotals: totals,
		})
		resp.Totals.WorkMinutes += totals.WorkMinutes
		resp.Totals.BreakMinutes += totals.BreakMinutes
		resp.Totals.BreakCount += totals.BreakCount
		resp.Totals.SessionCount += totals.SessionCount
		resp.Totals.Amount += totals.Amount
	}
	resp.Totals.WorkMinutes = round2(resp.Totals.WorkMinutes)
	resp.Totals.BreakMinutes = round2(resp.Totals.BreakMinutes)
	resp.Totals.WorkHours = round2(resp.Totals.WorkMinutes / 60)
	resp.Totals.BreakHours = round2(resp.Totals.BreakMinutes / 60)
	resp.Totals.Amount = round2(resp.Totals.Amount)

	return resp, nil
}

func (s *TimeclockServiceImpl) GetUserState(ctx context.Context, userID string, recompute bool) (timeclock.StateResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return timeclock.StateResponse{}, fmt.Errorf("get user: %w", err)
	}

	if HasLegacyEvents(user.AttendanceLog) {
		resp := timeclock.StateResponse{
			UserID:         user.ID,
			UserName:       user.Name,
			NeedsMigration: true,
		}
		if user.CurrentState != nil {
			resp.State = *user.CurrentState
		}
		return resp, nil
	}

	if !recompute {
		if user.CurrentState != nil {
			return timeclock.StateResponse{
				UserID:   user.ID,
				UserName: user.Name,
				State:    *user.CurrentState,
			}, nil
		}
		if s.cache != nil {
			if cached, err := s.cache.Get(ctx, user.ID); err == nil && cached != nil {
				return timeclock.StateResponse{
					UserID:   user.ID,
					UserName: user.Name,
					State:    *cached,
				}, nil
			}
		}
	}

	state, err := s.states.Derive(user.AttendanceLog)
	if err != nil {
		return timeclock.StateResponse{}, err
	}
	s.cacheState(ctx, user.ID, state)

	return timeclock.StateResponse{
		UserID:     user.ID,
		UserName:   user.Name,
		State:      state,
		Recomputed: true,
	}, nil
}

// stateOf returns the working state for a loaded user document, falling back
// from the cached document field to a full derivation. A maintained document
// state is authoritative even when the log still carries legacy IN/OUT
// entries: only the first post-legacy punch starts from idle, after which the
// state is kept incrementally alongside each append. The migration flag stays
// set until the log itself is migrated.
func (s *TimeclockServiceImpl) stateOf(user *timeclock.User) (timeclock.UserState, bool) {
	legacy := HasLegacyEvents(user.AttendanceLog)
	if user.CurrentState != nil {
		return *user.CurrentState, legacy
	}
	if legacy {
		return timeclock.UserState{}, true
	}
	state, _ := s.states.Derive(user.AttendanceLog)
	return state, false
}

func (s *TimeclockServiceImpl) loadForRemediation(ctx context.Context, code string) (timeclock.User, timeclock.UserState, error) {
	user, err := s.users.GetBySecretCode(ctx, code)
	if err != nil {
		if errors.Is(err, timeclock.ErrUserNotFound) {
			return timeclock.User{}, timeclock.UserState{}, timeclock.ErrInvalidCode
		}
		return timeclock.User{}, timeclock.UserState{}, fmt.Errorf("get user by code: %w", err)
	}
	if user.CurrentState == nil && HasLegacyEvents(user.AttendanceLog) {
		return timeclock.User{}, timeclock.UserState{}, timeclock.ErrLegacyLog
	}
	state, _ := s.stateOf(&user)
	return user, state, nil
}

func (s *TimeclockServiceImpl) cacheState(ctx context.Context, userID string, state timeclock.UserState) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, userID, state); err != nil {
		slog.WarnContext(ctx, "state cache update failed", "user_id", userID, "error", err)
	}
}

func (s *TimeclockServiceImpl) writeAudit(ctx context.Context, user *timeclock.User, ev timeclock.AttendanceEvent, amountEarned *float64) {
	if s.audit == nil {
		return
	}
	record := timeclock.AttendanceRecord{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		UserName:     user.Name,
		EventID:      ev.ID,
		EventType:    ev.Type,
		EventTime:    ev.Timestamp,
		AmountEarned: amountEarned,
		CreatedAt:    s.now(),
	}
	if err := s.audit.CreateRecord(ctx, record); err != nil {
		slog.WarnContext(ctx, "audit record write failed", "user_id", user.ID, "event_id", ev.ID, "error", err)
	}
}

// earnedFor attaches the session's earnings to its closing event only.
func earnedFor(action timeclock.ActionType, earned float64) *float64 {
	if action != timeclock.ActionStopWork {
		return nil
	}
	return &earned
}

func actionMessage(action timeclock.ActionType) string {
	switch action {
	case timeclock.ActionStartWork:
		return "work session started"
	case timeclock.ActionStopWork:
		return "work session ended"
	case timeclock.ActionStartBreak:
		return "break started"
	case timeclock.ActionStopBreak:
		return "break ended"
	default:
		return "action recorded"
	}
}

func anomalyMessage(kind timeclock.AnomalyKind) string {
	switch kind {
	case timeclock.AnomalyForgottenPunchOut:
		return "a session from a previous day is still open; submit the time it actually ended"
	case timeclock.AnomalyLongBreak:
		return "the current break exceeds the allowed length; submit the time it actually ended"
	case timeclock.AnomalyLongWork:
		return "the current session exceeds the allowed length; submit the time work actually stopped"
	default:
		return "attendance log needs manual correction"
	}
}
