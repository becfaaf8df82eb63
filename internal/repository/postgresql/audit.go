package postgresql

import (
	"context"
	"fmt"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) timeclock.AuditRepository {
	return &auditRepository{db: db}
}

// CreateRecord implements timeclock.AuditRepository.
func (r *auditRepository) CreateRecord(ctx context.Context, record timeclock.AttendanceRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, user_id, user_name, event_id, event_type, event_time, amount_earned, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := q.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.UserName,
		record.EventID,
		record.EventType,
		record.EventTime,
		record.AmountEarned,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}

	return nil
}
