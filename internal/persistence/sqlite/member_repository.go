package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/community-roster/internal/persistence"
)

// MemberRepository implements persistence.MemberRepository using SQLite.
type MemberRepository struct {
	store *Store
}

// NewMemberRepository creates a SQLite-backed member repository.
func NewMemberRepository(store *Store) *MemberRepository {
	return &MemberRepository{store: store}
}

// CreateMember inserts a new member and their role rows.
func (r *MemberRepository) CreateMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" || member.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO members (id, email, first_name, last_name, gender, university, course, birth_date, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			member.ID,
			normalizeEmail(member.Email),
			member.FirstName,
			member.LastName,
			member.Gender,
			member.University,
			member.Course,
			formatNullableDate(member.BirthDate),
			member.PasswordHash,
			formatTime(member.CreatedAt),
			formatTime(member.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertRoles(ctx, tx, member.ID, member.Roles)
	})
}

// UpdateMember replaces an existing member record and their role rows.
func (r *MemberRepository) UpdateMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" || member.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE members
			SET email = ?, first_name = ?, last_name = ?, gender = ?, university = ?, course = ?, birth_date = ?, password_hash = ?, updated_at = ?
			WHERE id = ?`,
			normalizeEmail(member.Email),
			member.FirstName,
			member.LastName,
			member.Gender,
			member.University,
			member.Course,
			formatNullableDate(member.BirthDate),
			member.PasswordHash,
			formatTime(member.UpdatedAt),
			member.ID,
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

		if _, err := tx.ExecContext(ctx, `DELETE FROM member_roles WHERE member_id = ?`, member.ID); err != nil {
			return mapError(err)
		}
		return insertRoles(ctx, tx, member.ID, member.Roles)
	})
}

// GetMember retrieves a member by ID together with their roles.
func (r *MemberRepository) GetMember(ctx context.Context, id string) (persistence.Member, error) {
	if id == "" {
		return persistence.Member{}, persistence.ErrNotFound
	}
	return r.getMember(ctx, `WHERE id = ?`, id)
}

// GetMemberByEmail retrieves a member by their normalised email address.
func (r *MemberRepository) GetMemberByEmail(ctx context.Context, email string) (persistence.Member, error) {
	if strings.TrimSpace(email) == "" {
		return persistence.Member{}, persistence.ErrNotFound
	}
	return r.getMember(ctx, `WHERE email = ?`, normalizeEmail(email))
}

func (r *MemberRepository) getMember(ctx context.Context, where string, arg any) (persistence.Member, error) {
	query := `
		SELECT id, email, first_name, last_name, gender, university, course, birth_date, password_hash, created_at, updated_at
		FROM members ` + where

	member, err := scanMember(r.store.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return persistence.Member{}, err
	}

	roles, err := r.loadRoles(ctx, member.ID)
	if err != nil {
		return persistence.Member{}, err
	}
	member.Roles = roles
	return member, nil
}

// ListMembers returns all members ordered by last name, first name, then ID.
func (r *MemberRepository) ListMembers(ctx context.Context) ([]persistence.Member, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, email, first_name, last_name, gender, university, course, birth_date, password_hash, created_at, updated_at
		FROM members
		ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []persistence.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range members {
		roles, err := r.loadRoles(ctx, members[i].ID)
		if err != nil {
			return nil, err
		}
		members[i].Roles = roles
	}
	return members, nil
}

// DeleteMember removes a member; role and assignee rows cascade.
func (r *MemberRepository) DeleteMember(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
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

func (r *MemberRepository) loadRoles(ctx context.Context, memberID string) ([]string, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT role FROM member_roles WHERE member_id = ?`, memberID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, mapError(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	sort.Strings(roles)
	return roles, nil
}

func insertRoles(ctx context.Context, tx *sql.Tx, memberID string, roles []string) error {
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO member_roles (member_id, role) VALUES (?, ?)`, memberID, role); err != nil {
			return mapError(err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (persistence.Member, error) {
	var member persistence.Member
	var birthDate sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&member.ID,
		&member.Email,
		&member.FirstName,
		&member.LastName,
		&member.Gender,
		&member.University,
		&member.Course,
		&birthDate,
		&member.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Member{}, mapError(err)
	}

	if member.BirthDate, err = parseNullableDate(birthDate); err != nil {
		return persistence.Member{}, err
	}
	if member.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Member{}, err
	}
	if member.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Member{}, err
	}
	return member, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func formatNullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}

func parseNullableDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, value.String)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse birth_date: %w", err)
	}
	return &t, nil
}
