package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/community-roster/internal/auth"
	"github.com/example/community-roster/internal/roster"
)

// CredentialReader resolves members together with their stored password hash.
type CredentialReader interface {
	GetMemberCredentialsByEmail(ctx context.Context, email string) (MemberCredentials, error)
	GetMember(ctx context.Context, id string) (Member, error)
}

// SessionStore persists session lifecycle state.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService authenticates members and manages their sessions and tokens.
type AuthService struct {
	credentials CredentialReader
	sessions    SessionStore
	secret      string
	sessionTTL  time.Duration
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthService wires dependencies for the authentication service.
func NewAuthService(credentials CredentialReader, sessions SessionStore, secret string, sessionTTL time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials: credentials,
		sessions:    sessions,
		secret:      secret,
		sessionTTL:  sessionTTL,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate verifies the supplied credentials, opens a session, and signs
// a token for it. The dashboard route for the member is resolved as part of
// the result so clients can redirect immediately after login.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil || s.credentials == nil || s.sessions == nil {
		return AuthenticateResult{}, fmt.Errorf("auth service not configured")
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "authentication failed", "error_kind", ErrorKind(err))
		}
	}()

	if email == "" || params.Password == "" {
		return AuthenticateResult{}, ErrInvalidCredentials
	}

	creds, err := s.credentials.GetMemberCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthenticateResult{}, ErrInvalidCredentials
		}
		return AuthenticateResult{}, err
	}

	if err = VerifyPassword(creds.PasswordHash, params.Password); err != nil {
		if errors.Is(err, ErrMalformedPasswordHash) {
			return AuthenticateResult{}, err
		}
		return AuthenticateResult{}, ErrInvalidCredentials
	}

	now := s.now()
	session := Session{
		ID:        s.idGenerator(),
		MemberID:  creds.Member.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return AuthenticateResult{}, err
	}

	token, err := auth.NewToken(s.secret, auth.TokenClaims{
		SessionID: session.ID,
		MemberID:  creds.Member.ID,
		Roles:     roleStrings(creds.Member.Roles),
	}, now, session.ExpiresAt)
	if err != nil {
		return AuthenticateResult{}, err
	}

	logger.With("member_id", creds.Member.ID, "session_id", session.ID).
		InfoContext(ctx, "member authenticated")
	return AuthenticateResult{
		Member:    creds.Member,
		Session:   session,
		Token:     token,
		Dashboard: roster.DashboardForUser(creds.Member.Roster()),
	}, nil
}

// ValidateToken checks a signed token against the session store and returns
// the acting principal. Roles are read fresh from the member record so role
// changes take effect without re-login.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.credentials == nil || s.sessions == nil {
		return Principal{}, fmt.Errorf("auth service not configured")
	}

	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}
	if session.MemberID != claims.MemberID {
		return Principal{}, ErrInvalidCredentials
	}

	member, err := s.credentials.GetMember(ctx, session.MemberID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}

	return Principal{MemberID: member.ID, Roles: member.Roles}, nil
}

// Logout revokes the session behind the supplied token. Revoking an already
// revoked or unknown session is not an error for the caller.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}

	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return nil
	}

	if _, err := s.sessions.RevokeSession(ctx, claims.SessionID, s.now()); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	s.loggerWith(ctx, "Logout", "session_id", claims.SessionID).InfoContext(ctx, "session revoked")
	return nil
}

// PruneSessions removes sessions that expired before the current instant.
func (s *AuthService) PruneSessions(ctx context.Context) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

func roleStrings(roles []roster.Role) []string {
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}
