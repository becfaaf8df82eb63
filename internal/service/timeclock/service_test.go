package timeclock

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

type fakeUserRepo struct {
	users map[string]*timeclock.User
}

func newFakeUserRepo(users ...*timeclock.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*timeclock.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetBySecretCode(_ context.Context, code string) (timeclock.User, error) {
	for _, u := range f.users {
		if u.SecretCode == code {
			return *u, nil
		}
	}
	return timeclock.User{}, timeclock.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (timeclock.User, error) {
	if u, ok := f.users[id]; ok {
		return *u, nil
	}
	return timeclock.User{}, timeclock.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]timeclock.User, error) {
	var users []timeclock.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) AppendEvents(_ context.Context, userID string, events []timeclock.AttendanceEvent, newAmount *float64, newState *timeclock.UserState) error {
	u, ok := f.users[userID]
	if !ok {
		return timeclock.ErrUserNotFound
	}
	u.AttendanceLog = append(u.AttendanceLog, events...)
	if newAmount != nil {
		u.Amount = *newAmount
	}
	if newState != nil {
		state := *newState
		u.CurrentState = &state
	}
	return nil
}

type fakeAuditRepo struct {
	records []timeclock.AttendanceRecord
}

func (f *fakeAuditRepo) CreateRecord(_ context.Context, record timeclock.AttendanceRecord) error {
	f.records = append(f.records, record)
	return nil
}

func newTestService(repo *fakeUserRepo, audit *fakeAuditRepo, now time.Time) *TimeclockServiceImpl {
	svc := NewTimeclockService(repo, audit, nil, DefaultResolverConfig(), 5*time.Second, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func testUser(events ...timeclock.AttendanceEvent) *timeclock.User {
	return &timeclock.User{
		ID:            "u1",
		Name:          "Ada",
		SecretCode:    "12345678",
		HourlyRate:    10,
		AttendanceLog: events,
	}
}

func TestSubmitAction_FirstPunchStartsWork(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser())
	audit := &fakeAuditRepo{}
	svc := newTestService(repo, audit, now)

	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	require.NoError(t, err)

	assert.Equal(t, timeclock.ActionStartWork, resp.Action)
	assert.Equal(t, "u1", resp.UserID)
	require.NotNil(t, resp.Timestamp)
	assert.Equal(t, now, *resp.Timestamp)
	assert.Nil(t, resp.AmountEarned)

	stored := repo.users["u1"]
	require.Len(t, stored.AttendanceLog, 1)
	assert.Equal(t, timeclock.ActionStartWork, stored.AttendanceLog[0].Type)
	assert.NotEmpty(t, stored.AttendanceLog[0].ID)
	require.NotNil(t, stored.CurrentState)
	assert.True(t, stored.CurrentState.IsWorking)

	require.Len(t, audit.records, 1)
	assert.Equal(t, stored.AttendanceLog[0].ID, audit.records[0].EventID)
}

func TestSubmitAction_StopWorkEarnsPay(t *testing.T) {
	now := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-8*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{
		Code: "12345678", Action: timeclock.RequestStopWork,
	})
	require.NoError(t, err)

	assert.Equal(t, timeclock.ActionStopWork, resp.Action)
	require.NotNil(t, resp.AmountEarned)
	assert.Equal(t, 80.0, *resp.AmountEarned)
	assert.Equal(t, 80.0, repo.users["u1"].Amount)
	assert.False(t, repo.users["u1"].CurrentState.IsWorking)
}

func TestSubmitAction_DuplicateWithinEpsilon(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 2, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-2*time.Second)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	// Second tap of the same punch toggles nothing.
	_, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	assert.ErrorIs(t, err, timeclock.ErrDuplicateSubmission)
	assert.Len(t, repo.users["u1"].AttendanceLog, 1)

	// A different explicit action inside the window is a real punch.
	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{
		Code: "12345678", Action: timeclock.RequestStartBreak,
	})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStartBreak, resp.Action)
}

func TestSubmitAction_InvalidCode(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeUserRepo(testUser()), &fakeAuditRepo{}, now)

	_, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "99999999"})
	assert.ErrorIs(t, err, timeclock.ErrInvalidCode)
}

func TestSubmitAction_ValidationRejectsBadInput(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeUserRepo(testUser()), &fakeAuditRepo{}, now)

	_, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "123"})
	assert.Error(t, err)

	_, err = svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678", Action: "fly"})
	assert.Error(t, err)
}

func TestSubmitAction_IllegalExplicitAction(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser())
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	_, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{
		Code: "12345678", Action: timeclock.RequestStopWork,
	})
	var illegal *timeclock.IllegalActionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, timeclock.ActionStopWork, illegal.Requested)
	assert.Empty(t, repo.users["u1"].AttendanceLog)
}

func TestSubmitAction_ForgottenPunchOutBlocks(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	yesterday := now.Add(-16 * time.Hour)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, yesterday),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	require.NoError(t, err)

	require.NotNil(t, resp.Anomaly)
	assert.Equal(t, timeclock.AnomalyForgottenPunchOut, resp.Anomaly.Kind)
	assert.Equal(t, yesterday, resp.Anomaly.OpenedAt)
	assert.Empty(t, resp.Action)
	assert.Len(t, repo.users["u1"].AttendanceLog, 1)
}

func TestSubmitAction_LongBreakBlocks(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-5*time.Hour)),
		ev("2", timeclock.ActionStartBreak, now.Add(-2*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	require.NoError(t, err)
	require.NotNil(t, resp.Anomaly)
	assert.Equal(t, timeclock.AnomalyLongBreak, resp.Anomaly.Kind)
}

func TestSubmitAction_LegacyLogStartsFresh(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionLegacyIn, now.AddDate(0, -1, 0)),
		ev("2", timeclock.ActionLegacyOut, now.AddDate(0, -1, 0).Add(8*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	require.NoError(t, err)

	// Legacy entries carry no break semantics; the user is treated as idle
	// and flagged for migration.
	assert.Equal(t, timeclock.ActionStartWork, resp.Action)
	assert.True(t, resp.NeedsMigration)
}

func TestSubmitAction_LegacyLogSecondPunchUsesMaintainedState(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionLegacyIn, start.AddDate(0, -1, 0)),
		ev("2", timeclock.ActionLegacyOut, start.AddDate(0, -1, 0).Add(8*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, start)

	resp, err := svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	require.NoError(t, err)
	require.Equal(t, timeclock.ActionStartWork, resp.Action)

	// The first fresh punch persisted a document state; later punches must
	// trust it instead of re-zeroing on the legacy entries still in the log.
	svc.now = func() time.Time { return start.Add(4 * time.Hour) }
	resp, err = svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{Code: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ActionStartBreak, resp.Action)
	assert.True(t, resp.NeedsMigration)

	svc.now = func() time.Time { return start.Add(4*time.Hour + 30*time.Minute) }
	_, err = svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{
		Code: "12345678", Action: timeclock.RequestStopBreak,
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	resp, err = svc.SubmitAction(context.Background(), timeclock.SubmitActionRequest{
		Code: "12345678", Action: timeclock.RequestStopWork,
	})
	require.NoError(t, err)

	assert.Equal(t, timeclock.ActionStopWork, resp.Action)
	require.NotNil(t, resp.AmountEarned)
	assert.Equal(t, 80.0, *resp.AmountEarned)
	assert.False(t, repo.users["u1"].CurrentState.IsWorking)
}

func TestRemediateForgottenPunchOut(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	workStart := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, workStart),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.RemediateForgottenPunchOut(context.Background(), timeclock.RemediateForgottenRequest{
		Code:     "12345678",
		StopTime: "2026-03-04T17:00:00Z",
	})
	require.NoError(t, err)

	// Yesterday closed at 17:00 for 8h of pay, today restarted now.
	assert.Equal(t, 80.0, resp.AmountEarned)
	require.Len(t, resp.Appended, 2)
	assert.Equal(t, timeclock.ActionStopWork, resp.Appended[0].Type)
	assert.Equal(t, timeclock.ActionStartWork, resp.Appended[1].Type)
	assert.Equal(t, now, resp.Appended[1].Timestamp)
	assert.True(t, resp.State.IsWorking)

	stored := repo.users["u1"]
	assert.Equal(t, 80.0, stored.Amount)
	require.Len(t, stored.AttendanceLog, 3)
}

func TestRemediateForgottenPunchOut_OpenBreak(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	workStart := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, workStart),
		ev("2", timeclock.ActionStartBreak, workStart.Add(3*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.RemediateForgottenPunchOut(context.Background(), timeclock.RemediateForgottenRequest{
		Code:     "12345678",
		StopTime: "2026-03-04T17:00:00Z",
	})
	require.NoError(t, err)

	require.Len(t, resp.Appended, 3)
	assert.Equal(t, timeclock.ActionStopBreak, resp.Appended[0].Type)
	assert.Equal(t, timeclock.ActionStopWork, resp.Appended[1].Type)
	assert.Equal(t, timeclock.ActionStartWork, resp.Appended[2].Type)
	assert.Equal(t, 80.0, resp.AmountEarned)
}

func TestRemediateForgottenPunchOut_Bounds(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	workStart := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, workStart),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	// Before the session opened.
	_, err := svc.RemediateForgottenPunchOut(context.Background(), timeclock.RemediateForgottenRequest{
		Code: "12345678", StopTime: "2026-03-04T08:00:00Z",
	})
	assert.ErrorIs(t, err, timeclock.ErrInvalidTime)

	// In the future.
	_, err = svc.RemediateForgottenPunchOut(context.Background(), timeclock.RemediateForgottenRequest{
		Code: "12345678", StopTime: "2026-03-05T10:00:00Z",
	})
	assert.ErrorIs(t, err, timeclock.ErrInvalidTime)
	assert.Len(t, repo.users["u1"].AttendanceLog, 1)
}

func TestRemediateForgottenPunchOut_NoAnomaly(t *testing.T) {
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser())
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	_, err := svc.RemediateForgottenPunchOut(context.Background(), timeclock.RemediateForgottenRequest{
		Code: "12345678", StopTime: "2026-03-04T17:00:00Z",
	})
	assert.ErrorIs(t, err, timeclock.ErrNoAnomaly)
}

func TestRemediateLongBreak(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-330*time.Minute)),
		ev("2", timeclock.ActionStartBreak, now.Add(-150*time.Minute)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.RemediateLongBreak(context.Background(), timeclock.RemediateLongBreakRequest{
		Code:          "12345678",
		BreakStopTime: "2026-03-05T12:30:00Z",
	})
	require.NoError(t, err)

	// 09:00 to 14:30 at 10/h, breaks paid.
	assert.Equal(t, 55.0, resp.AmountEarned)
	require.Len(t, resp.Appended, 2)
	assert.Equal(t, timeclock.ActionStopBreak, resp.Appended[0].Type)
	assert.Equal(t, timeclock.ActionStopWork, resp.Appended[1].Type)
	assert.Equal(t, now, resp.Appended[1].Timestamp)
	assert.False(t, resp.State.IsWorking)
	assert.Equal(t, 55.0, repo.users["u1"].Amount)
}

func TestRemediateLongBreak_NoAnomaly(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-5*time.Hour)),
		ev("2", timeclock.ActionStartBreak, now.Add(-30*time.Minute)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	_, err := svc.RemediateLongBreak(context.Background(), timeclock.RemediateLongBreakRequest{
		Code: "12345678", BreakStopTime: "2026-03-05T14:15:00Z",
	})
	assert.ErrorIs(t, err, timeclock.ErrNoAnomaly)
}

func TestRemediateLongWork(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-13*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.RemediateLongWork(context.Background(), timeclock.RemediateLongWorkRequest{
		Code:         "12345678",
		WorkStopTime: "2026-03-05T09:00:00Z",
	})
	require.NoError(t, err)

	// 01:00 to 09:00 at 10/h.
	assert.Equal(t, 80.0, resp.AmountEarned)
	require.Len(t, resp.Appended, 1)
	assert.Equal(t, timeclock.ActionStopWork, resp.Appended[0].Type)
	assert.False(t, resp.State.IsWorking)
	assert.Equal(t, 80.0, repo.users["u1"].Amount)
}

func TestComputeRangeTotals(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	ada := testUser(standardDay(day)...)
	bob := &timeclock.User{
		ID: "u2", Name: "Bob", SecretCode: "87654321", HourlyRate: 20,
		AttendanceLog: []timeclock.AttendanceEvent{
			ev("b1", timeclock.ActionStartWork, day.Add(10*time.Hour)),
			ev("b2", timeclock.ActionStopWork, day.Add(14*time.Hour)),
		},
	}
	svc := newTestService(newFakeUserRepo(ada, bob), &fakeAuditRepo{}, now)

	resp, err := svc.ComputeRangeTotals(context.Background(), timeclock.RangeTotalsFilter{
		StartDate: "2026-03-01", EndDate: "2026-03-31",
	})
	require.NoError(t, err)

	require.Len(t, resp.Users, 2)
	assert.Equal(t, 80.0, resp.Users[0].Amount)
	assert.Equal(t, 80.0, resp.Users[1].Amount)
	assert.Equal(t, 160.0, resp.Totals.Amount)
	assert.Equal(t, 2, resp.Totals.SessionCount)
	assert.Equal(t, 720.0, resp.Totals.WorkMinutes)

	userID := "u2"
	resp, err = svc.ComputeRangeTotals(context.Background(), timeclock.RangeTotalsFilter{
		UserID: &userID, StartDate: "2026-03-01", EndDate: "2026-03-31",
	})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Bob", resp.Users[0].UserName)
	assert.Equal(t, 80.0, resp.Totals.Amount)
}

func TestComputeRangeTotals_LiveSessionPriced(t *testing.T) {
	now := time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-4*time.Hour)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.ComputeRangeTotals(context.Background(), timeclock.RangeTotalsFilter{
		StartDate: "2026-03-05", EndDate: "2026-03-05",
	})
	require.NoError(t, err)

	// Session in progress is priced up to the report instant but nothing is
	// written back.
	assert.Equal(t, 40.0, resp.Totals.Amount)
	assert.Len(t, repo.users["u1"].AttendanceLog, 1)
}

func TestGetUserState(t *testing.T) {
	now := time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC)
	user := testUser(
		ev("1", timeclock.ActionStartWork, now.Add(-4*time.Hour)),
	)
	stale := timeclock.UserState{IsWorking: false}
	user.CurrentState = &stale
	repo := newFakeUserRepo(user)
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	// Without recompute the cached document state is trusted as-is.
	resp, err := svc.GetUserState(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.False(t, resp.State.IsWorking)
	assert.False(t, resp.Recomputed)

	resp, err = svc.GetUserState(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.True(t, resp.State.IsWorking)
	assert.True(t, resp.Recomputed)
}

func TestGetUserState_LegacyLog(t *testing.T) {
	now := time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo(testUser(
		ev("1", timeclock.ActionLegacyIn, now.AddDate(0, -1, 0)),
	))
	svc := newTestService(repo, &fakeAuditRepo{}, now)

	resp, err := svc.GetUserState(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.True(t, resp.NeedsMigration)
	assert.Equal(t, timeclock.UserState{}, resp.State)

	// Once post-legacy punches have built a document state it is reported
	// alongside the migration flag.
	working := timeclock.UserState{IsWorking: true}
	repo.users["u1"].CurrentState = &working
	resp, err = svc.GetUserState(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.True(t, resp.NeedsMigration)
	assert.True(t, resp.State.IsWorking)
}
