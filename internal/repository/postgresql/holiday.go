package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/holiday"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/database"
)

type holidayRequestRepository struct {
	db *database.DB
}

func NewHolidayRequestRepository(db *database.DB) holiday.RequestRepository {
	return &holidayRequestRepository{db: db}
}

// Create implements holiday.RequestRepository.
func (r *holidayRequestRepository) Create(ctx context.Context, request holiday.HolidayRequest) (holiday.HolidayRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holiday_requests (
			id, user_id, user_name, secret_code, start_date, end_date, reason, status, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := q.Exec(ctx, query,
		request.ID,
		request.UserID,
		request.UserName,
		request.SecretCode,
		request.StartDate,
		request.EndDate,
		request.Reason,
		request.Status,
		request.SubmittedAt,
	)
	if err != nil {
		return holiday.HolidayRequest{}, fmt.Errorf("create holiday request: %w", err)
	}

	return request, nil
}

// GetByID implements holiday.RequestRepository.
func (r *holidayRequestRepository) GetByID(ctx context.Context, id string) (holiday.HolidayRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, user_name, secret_code, start_date, end_date, reason, status, reject_reason, submitted_at
		FROM holiday_requests
		WHERE id = $1
	`

	var request holiday.HolidayRequest
	err := q.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.UserID, &request.UserName, &request.SecretCode,
		&request.StartDate, &request.EndDate, &request.Reason, &request.Status,
		&request.RejectReason, &request.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.HolidayRequest{}, holiday.ErrRequestNotFound
		}
		return holiday.HolidayRequest{}, fmt.Errorf("get holiday request: %w", err)
	}

	return request, nil
}

// List implements holiday.RequestRepository.
func (r *holidayRequestRepository) List(ctx context.Context, filter holiday.RequestFilter) ([]holiday.HolidayRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *filter.UserID)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM holiday_requests " + whereClause
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count holiday requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, user_name, secret_code, start_date, end_date, reason, status, reject_reason, submitted_at
		FROM holiday_requests
		%s
		ORDER BY submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list holiday requests: %w", err)
	}
	defer rows.Close()

	var requests []holiday.HolidayRequest
	for rows.Next() {
		var request holiday.HolidayRequest
		err := rows.Scan(
			&request.ID, &request.UserID, &request.UserName, &request.SecretCode,
			&request.StartDate, &request.EndDate, &request.Reason, &request.Status,
			&request.RejectReason, &request.SubmittedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan holiday request row: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate holiday request rows: %w", err)
	}

	return requests, total, nil
}

// UpdateStatus implements holiday.RequestRepository. The pending check and
// the update run in one transaction so two moderators cannot both process
// the same request.
func (r *holidayRequestRepository) UpdateStatus(ctx context.Context, id string, status holiday.RequestStatus, rejectReason *string) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var current holiday.RequestStatus
		err := q.QueryRow(ctx, `
			SELECT status
			FROM holiday_requests
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return holiday.ErrRequestNotFound
			}
			return fmt.Errorf("lock holiday request: %w", err)
		}
		if current != holiday.StatusPending {
			return holiday.ErrRequestAlreadyProcessed
		}

		_, err = q.Exec(ctx, `
			UPDATE holiday_requests
			SET status = $2, reject_reason = $3
			WHERE id = $1
		`, id, status, rejectReason)
		if err != nil {
			return fmt.Errorf("update holiday request status: %w", err)
		}
		return nil
	})
}
