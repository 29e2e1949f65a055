package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/community-roster/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a SQLite-backed session repository.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// CreateSession persists a new session and returns the stored record.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.MemberID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, member_id, expires_at, created_at, updated_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.MemberID,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		formatNullableTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return r.GetSession(ctx, session.ID)
}

// GetSession retrieves a session by its identifier.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	err := r.store.db.QueryRowContext(ctx, `
		SELECT id, member_id, expires_at, created_at, updated_at, revoked_at
		FROM sessions WHERE id = ?`, id).Scan(
		&session.ID,
		&session.MemberID,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt, "expires_at"); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt, err = parseNullableTime(revokedAt, "revoked_at"); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// RevokeSession marks a session as revoked at the given instant.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (persistence.Session, error) {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(revokedAt),
		formatTime(revokedAt),
		id,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, err
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return r.GetSession(ctx, id)
}

// DeleteExpiredSessions removes sessions that expired before the reference
// instant.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.store.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, formatTime(reference))
	return mapError(err)
}
