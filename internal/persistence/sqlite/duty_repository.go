package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/example/community-roster/internal/persistence"
)

// DutyRepository implements persistence.DutyRepository using SQLite.
type DutyRepository struct {
	store *Store
}

// NewDutyRepository creates a SQLite-backed duty repository.
func NewDutyRepository(store *Store) *DutyRepository {
	return &DutyRepository{store: store}
}

// CreateDuty inserts a duty assignment and its assignee rows.
func (r *DutyRepository) CreateDuty(ctx context.Context, duty persistence.Duty) error {
	if duty.ID == "" || duty.Category == "" {
		return persistence.ErrConstraintViolation
	}

	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO duties (id, category, date, starts_at, notes, creator_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			duty.ID,
			duty.Category,
			duty.Date.Format(dateFormat),
			formatNullableTime(duty.StartsAt),
			duty.Notes,
			duty.CreatorID,
			formatTime(duty.CreatedAt),
			formatTime(duty.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertAssignees(ctx, tx, duty.ID, duty.Assignees)
	})
}

// UpdateDuty replaces an existing duty assignment and its assignee rows.
func (r *DutyRepository) UpdateDuty(ctx context.Context, duty persistence.Duty) error {
	if duty.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE duties
			SET category = ?, date = ?, starts_at = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			duty.Category,
			duty.Date.Format(dateFormat),
			formatNullableTime(duty.StartsAt),
			duty.Notes,
			formatTime(duty.UpdatedAt),
			duty.ID,
		)
		if err != nil {
			return mapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM duty_assignees WHERE duty_id = ?`, duty.ID); err != nil {
			return mapError(err)
		}
		return insertAssignees(ctx, tx, duty.ID, duty.Assignees)
	})
}

// GetDuty retrieves a duty by ID together with its assignees.
func (r *DutyRepository) GetDuty(ctx context.Context, id string) (persistence.Duty, error) {
	if id == "" {
		return persistence.Duty{}, persistence.ErrNotFound
	}

	duty, err := scanDuty(r.store.db.QueryRowContext(ctx, `
		SELECT id, category, date, starts_at, notes, creator_id, created_at, updated_at
		FROM duties WHERE id = ?`, id))
	if err != nil {
		return persistence.Duty{}, err
	}

	assignees, err := r.loadAssignees(ctx, duty.ID)
	if err != nil {
		return persistence.Duty{}, err
	}
	duty.Assignees = assignees
	return duty, nil
}

// ListDuties returns duty assignments matching the filter, ordered by date,
// category, then ID.
func (r *DutyRepository) ListDuties(ctx context.Context, filter persistence.DutyFilter) ([]persistence.Duty, error) {
	query := `
		SELECT DISTINCT d.id, d.category, d.date, d.starts_at, d.notes, d.creator_id, d.created_at, d.updated_at
		FROM duties d`
	var args []any
	var clauses []string

	if filter.MemberID != "" {
		query += ` JOIN duty_assignees da ON da.duty_id = d.id`
		clauses = append(clauses, `da.member_id = ?`)
		args = append(args, filter.MemberID)
	}
	if filter.Category != "" {
		clauses = append(clauses, `d.category = ?`)
		args = append(args, filter.Category)
	}
	if filter.From != nil {
		clauses = append(clauses, `d.date >= ?`)
		args = append(args, filter.From.Format(dateFormat))
	}
	if filter.To != nil {
		clauses = append(clauses, `d.date <= ?`)
		args = append(args, filter.To.Format(dateFormat))
	}

	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY d.date, d.category, d.id`

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var duties []persistence.Duty
	for rows.Next() {
		duty, err := scanDuty(rows)
		if err != nil {
			return nil, err
		}
		duties = append(duties, duty)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range duties {
		assignees, err := r.loadAssignees(ctx, duties[i].ID)
		if err != nil {
			return nil, err
		}
		duties[i].Assignees = assignees
	}
	return duties, nil
}

// DeleteDuty removes a duty; assignee rows cascade.
func (r *DutyRepository) DeleteDuty(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM duties WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *DutyRepository) loadAssignees(ctx context.Context, dutyID string) ([]string, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT member_id FROM duty_assignees WHERE duty_id = ?`, dutyID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignees []string
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, mapError(err)
		}
		assignees = append(assignees, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	sort.Strings(assignees)
	return assignees, nil
}

func insertAssignees(ctx context.Context, tx *sql.Tx, dutyID string, assignees []string) error {
	for _, memberID := range assignees {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO duty_assignees (duty_id, member_id) VALUES (?, ?)`, dutyID, memberID); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func scanDuty(row rowScanner) (persistence.Duty, error) {
	var duty persistence.Duty
	var date string
	var startsAt sql.NullString
	var notes sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&duty.ID,
		&duty.Category,
		&date,
		&startsAt,
		&notes,
		&duty.CreatorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Duty{}, mapError(err)
	}

	if duty.Date, err = time.Parse(dateFormat, date); err != nil {
		return persistence.Duty{}, fmt.Errorf("sqlite: parse date: %w", err)
	}
	if duty.StartsAt, err = parseNullableTime(startsAt, "starts_at"); err != nil {
		return persistence.Duty{}, err
	}
	if notes.Valid {
		value := notes.String
		duty.Notes = &value
	}
	if duty.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Duty{}, err
	}
	if duty.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Duty{}, err
	}
	return duty, nil
}
