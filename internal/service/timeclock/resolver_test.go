package timeclock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

func workingState(since time.Time) timeclock.UserState {
	action := timeclock.ActionStartWork
	return timeclock.UserState{
		IsWorking:      true,
		LastWorkStart:  &since,
		LastAction:     action,
		LastActionTime: &since,
	}
}

func onBreakState(workSince, breakSince time.Time) timeclock.UserState {
	state := workingState(workSince)
	state.IsOnBreak = true
	state.LastBreakStart = &breakSince
	state.LastAction = timeclock.ActionStartBreak
	state.LastActionTime = &breakSince
	return state
}

func TestActionResolver_ExplicitLegality(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	idle := timeclock.UserState{}
	working := workingState(now.Add(-2 * time.Hour))
	onBreak := onBreakState(now.Add(-2*time.Hour), now.Add(-20*time.Minute))

	cases := []struct {
		name    string
		state   timeclock.UserState
		action  timeclock.ActionType
		legal   bool
		blocked string
	}{
		{"idle start-work", idle, timeclock.ActionStartWork, true, ""},
		{"idle stop-work", idle, timeclock.ActionStopWork, false, "not working"},
		{"idle start-break", idle, timeclock.ActionStartBreak, false, "not working"},
		{"idle stop-break", idle, timeclock.ActionStopBreak, false, "not on break"},
		{"working start-work", working, timeclock.ActionStartWork, false, "already working"},
		{"working stop-work", working, timeclock.ActionStopWork, true, ""},
		{"working start-break", working, timeclock.ActionStartBreak, true, ""},
		{"working stop-break", working, timeclock.ActionStopBreak, false, "not on break"},
		{"on-break start-work", onBreak, timeclock.ActionStartWork, false, "already working"},
		{"on-break stop-work", onBreak, timeclock.ActionStopWork, false, "still on break"},
		{"on-break start-break", onBreak, timeclock.ActionStartBreak, false, "already on break"},
		{"on-break stop-break", onBreak, timeclock.ActionStopBreak, true, ""},
	}

	resolver := NewActionResolver(DefaultResolverConfig())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := resolver.Resolve(c.state, now, c.action)
			if c.legal {
				require.NoError(t, err)
				assert.Equal(t, c.action, res.Action)
				assert.Nil(t, res.Anomaly)
				return
			}
			var illegal *timeclock.IllegalActionError
			require.ErrorAs(t, err, &illegal)
			assert.Equal(t, c.action, illegal.Requested)
			assert.Contains(t, illegal.Error(), c.blocked)
		})
	}
}

func TestActionResolver_AutoDetect(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	resolver := NewActionResolver(DefaultResolverConfig())

	res, err := resolver.Resolve(timeclock.UserState{}, now, "")
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStartWork, res.Action)

	res, err = resolver.Resolve(workingState(now.Add(-2*time.Hour)), now, "")
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStartBreak, res.Action)

	res, err = resolver.Resolve(onBreakState(now.Add(-2*time.Hour), now.Add(-20*time.Minute)), now, "")
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStopBreak, res.Action)
}

func TestActionResolver_LongBreakThreshold(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	resolver := NewActionResolver(DefaultResolverConfig())

	// Exactly at the limit is still a normal stop.
	atLimit := onBreakState(now.Add(-4*time.Hour), now.Add(-90*time.Minute))
	res, err := resolver.Resolve(atLimit, now, "")
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStopBreak, res.Action)

	over := onBreakState(now.Add(-4*time.Hour), now.Add(-91*time.Minute))
	res, err = resolver.Resolve(over, now, "")
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyLongBreak, res.Anomaly.Kind)
	assert.Equal(t, now.Add(-91*time.Minute), res.Anomaly.OpenedAt)

	// Same anomaly on an explicit stop-break.
	res, err = resolver.Resolve(over, now, timeclock.ActionStopBreak)
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyLongBreak, res.Anomaly.Kind)
}

func TestActionResolver_LongWorkThreshold(t *testing.T) {
	now := time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)
	resolver := NewActionResolver(DefaultResolverConfig())

	within := workingState(now.Add(-11 * time.Hour))
	res, err := resolver.Resolve(within, now, timeclock.ActionStopWork)
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStopWork, res.Action)

	over := workingState(now.Add(-13 * time.Hour))
	res, err = resolver.Resolve(over, now, timeclock.ActionStopWork)
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyLongWork, res.Anomaly.Kind)
	assert.Equal(t, now.Add(-13*time.Hour), res.Anomaly.OpenedAt)
}

func TestActionResolver_ForgottenPunchOut(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	resolver := NewActionResolver(DefaultResolverConfig())

	yesterday := now.Add(-16 * time.Hour)
	stale := workingState(yesterday)

	// The stale session blocks auto detection and explicit requests alike.
	res, err := resolver.Resolve(stale, now, "")
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyForgottenPunchOut, res.Anomaly.Kind)
	assert.Equal(t, timeclock.ActionStartWork, res.Anomaly.OpenAction)
	assert.Equal(t, yesterday, res.Anomaly.OpenedAt)

	res, err = resolver.Resolve(stale, now, timeclock.ActionStartWork)
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyForgottenPunchOut, res.Anomaly.Kind)

	// A break left open over midnight reports the break as the open interval.
	staleBreak := onBreakState(yesterday, yesterday.Add(4*time.Hour))
	res, err = resolver.Resolve(staleBreak, now, "")
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyForgottenPunchOut, res.Anomaly.Kind)
	assert.Equal(t, timeclock.ActionStartBreak, res.Anomaly.OpenAction)
	assert.Equal(t, yesterday.Add(4*time.Hour), res.Anomaly.OpenedAt)
}

func TestActionResolver_SameDayLongSessionIsNotForgotten(t *testing.T) {
	now := time.Date(2026, 3, 5, 22, 0, 0, 0, time.UTC)
	resolver := NewActionResolver(DefaultResolverConfig())

	// 13h open on the same calendar day is a long session, not a stale one.
	res, err := resolver.Resolve(workingState(now.Add(-13*time.Hour)), now, timeclock.ActionStopWork)
	require.NoError(t, err)
	require.NotNil(t, res.Anomaly)
	assert.Equal(t, timeclock.AnomalyLongWork, res.Anomaly.Kind)
}

func TestActionResolver_UnknownAction(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	resolver := NewActionResolver(DefaultResolverConfig())

	_, err := resolver.Resolve(timeclock.UserState{}, now, timeclock.ActionType("TELEPORT"))
	assert.True(t, errors.Is(err, timeclock.ErrNoValidAction))
}
