package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/metrics"
)

// TimeclockJobs holds the nightly sweep over the attendance store. The sweep
// never mutates anything: open sessions are only ever closed through guided
// remediation, so the job's output is visibility for the admin.
type TimeclockJobs struct {
	users   timeclock.UserRepository
	metrics *metrics.Collectors
	now     func() time.Time
}

func NewTimeclockJobs(users timeclock.UserRepository, collectors *metrics.Collectors) *TimeclockJobs {
	return &TimeclockJobs{
		users:   users,
		metrics: collectors,
		now:     time.Now,
	}
}

func (j *TimeclockJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("report_overnight_open_sessions", 1*time.Hour, j.ReportOvernightOpenSessions)
}

// ReportOvernightOpenSessions counts sessions left open from a prior
// calendar day. It only does real work during the midnight hour.
func (j *TimeclockJobs) ReportOvernightOpenSessions(ctx context.Context) error {
	now := j.now()
	if now.Hour() != 0 {
		return nil
	}

	users, err := j.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users for overnight sweep: %w", err)
	}

	open := 0
	for _, user := range users {
		state := user.CurrentState
		if state == nil || !state.IsWorking || state.LastActionTime == nil {
			continue
		}
		ly, lm, ld := state.LastActionTime.Date()
		ny, nm, nd := now.Date()
		if ly == ny && lm == nm && ld == nd {
			continue
		}
		open++
		slog.Info("overnight open session",
			"user_id", user.ID,
			"user_name", user.Name,
			"last_action", string(state.LastAction),
			"last_action_time", state.LastActionTime,
		)
	}

	j.metrics.SetOpenOvernight(open)
	slog.Info("overnight sweep completed", "users", len(users), "open_sessions", open)
	return nil
}
