package timeclock

import (
	"math"
	"time"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

// PayrollCalculator turns an attendance log into paid time and money. Breaks
// are paid: they are tracked for reporting but never deducted from a
// session's paid minutes.
type PayrollCalculator struct{}

func NewPayrollCalculator() *PayrollCalculator {
	return &PayrollCalculator{}
}

// Totals folds the log into range totals at the given hourly rate. Only
// closed sessions count: an interval still open at the end of the log
// contributes nothing until its stop event lands. Legacy IN/OUT entries are
// skipped; they are reconciled through migration, not payroll.
func (p *PayrollCalculator) Totals(events []timeclock.AttendanceEvent, hourlyRate float64) timeclock.RangeTotals {
	var totals timeclock.RangeTotals
	var workStart, breakStart *time.Time

	for _, ev := range timeclock.SortEvents(events) {
		if ev.Type.IsLegacy() {
			continue
		}
		ts := ev.Timestamp
		switch ev.Type {
		case timeclock.ActionStartWork:
			// A repeated start overwrites the open session rather than
			// closing it; only an explicit stop earns pay.
			workStart = &ts
			breakStart = nil
		case timeclock.ActionStartBreak:
			if workStart != nil && breakStart == nil {
				breakStart = &ts
			}
		case timeclock.ActionStopBreak:
			if breakStart != nil {
				totals.BreakMinutes += ts.Sub(*breakStart).Minutes()
				totals.BreakCount++
				breakStart = nil
			}
		case timeclock.ActionStopWork:
			if workStart != nil {
				totals.WorkMinutes += ts.Sub(*workStart).Minutes()
				totals.SessionCount++
				workStart = nil
				// A break left open at punch-out has no stop to pair with
				// and is not reported.
				breakStart = nil
			}
		}
	}

	totals.WorkMinutes = round2(totals.WorkMinutes)
	totals.BreakMinutes = round2(totals.BreakMinutes)
	totals.WorkHours = round2(totals.WorkMinutes / 60)
	totals.BreakHours = round2(totals.BreakMinutes / 60)
	totals.Amount = round2(totals.WorkMinutes / 60 * hourlyRate)
	return totals
}

// SessionEarnings prices one closed work session.
func (p *PayrollCalculator) SessionEarnings(start, stop time.Time, hourlyRate float64) float64 {
	if !stop.After(start) {
		return 0
	}
	return round2(stop.Sub(start).Minutes() / 60 * hourlyRate)
}

// FilterRange returns the events falling on the calendar days from start
// through end inclusive.
func FilterRange(events []timeclock.AttendanceEvent, start, end time.Time) []timeclock.AttendanceEvent {
	endExclusive := end.AddDate(0, 0, 1)
	var filtered []timeclock.AttendanceEvent
	for _, ev := range events {
		if ev.Timestamp.Before(start) || !ev.Timestamp.Before(endExclusive) {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered
}

// WithVirtualStop appends a synthetic punch-out at the cutoff so an
// in-progress session can be priced for a live report. The synthetic event
// is never persisted.
func WithVirtualStop(events []timeclock.AttendanceEvent, cutoff time.Time) []timeclock.AttendanceEvent {
	extended := make([]timeclock.AttendanceEvent, len(events), len(events)+1)
	copy(extended, events)
	return append(extended, timeclock.AttendanceEvent{
		Type:      timeclock.ActionStopWork,
		Timestamp: cutoff,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
