package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/database"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) timeclock.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, secret_code, hourly_rate, amount, attendance_log, current_state`

// GetBySecretCode implements timeclock.UserRepository.
func (r *userRepository) GetBySecretCode(ctx context.Context, code string) (timeclock.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE secret_code = $1
	`

	user, err := scanUser(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeclock.User{}, timeclock.ErrUserNotFound
		}
		return timeclock.User{}, fmt.Errorf("get user by secret code: %w: %v", timeclock.ErrStoreUnavailable, err)
	}

	return user, nil
}

// GetByID implements timeclock.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string) (timeclock.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeclock.User{}, timeclock.ErrUserNotFound
		}
		return timeclock.User{}, fmt.Errorf("get user by id: %w: %v", timeclock.ErrStoreUnavailable, err)
	}

	return user, nil
}

// List implements timeclock.UserRepository.
func (r *userRepository) List(ctx context.Context) ([]timeclock.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY name, id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w: %v", timeclock.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var users []timeclock.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

// AppendEvents implements timeclock.UserRepository. The log append and the
// cached amount and state land in one UPDATE, so a crash can never leave the
// document half-written.
func (r *userRepository) AppendEvents(ctx context.Context, userID string, events []timeclock.AttendanceEvent, newAmount *float64, newState *timeclock.UserState) error {
	q := GetQuerier(ctx, r.db)

	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal attendance events: %w", err)
	}

	var stateJSON []byte
	if newState != nil {
		stateJSON, err = json.Marshal(newState)
		if err != nil {
			return fmt.Errorf("marshal user state: %w", err)
		}
	}

	query := `
		UPDATE users
		SET attendance_log = COALESCE(attendance_log, '[]'::jsonb) || $2::jsonb,
			amount = COALESCE($3, amount),
			current_state = COALESCE($4::jsonb, current_state),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, userID, eventsJSON, newAmount, stateJSON)
	if err != nil {
		return fmt.Errorf("append attendance events: %w: %v", timeclock.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return timeclock.ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (timeclock.User, error) {
	var user timeclock.User
	var logJSON, stateJSON []byte

	err := row.Scan(
		&user.ID, &user.Name, &user.SecretCode, &user.HourlyRate, &user.Amount,
		&logJSON, &stateJSON,
	)
	if err != nil {
		return timeclock.User{}, err
	}

	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &user.AttendanceLog); err != nil {
			return timeclock.User{}, fmt.Errorf("unmarshal attendance log: %w", err)
		}
	}
	if len(stateJSON) > 0 {
		var state timeclock.UserState
		if err := json.Unmarshal(stateJSON, &state); err != nil {
			return timeclock.User{}, fmt.Errorf("unmarshal user state: %w", err)
		}
		user.CurrentState = &state
	}

	return user, nil
}
