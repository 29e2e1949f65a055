package persistence

import (
	"context"
	"time"
)

// MemberRepository exposes CRUD operations for community members.
type MemberRepository interface {
	CreateMember(ctx context.Context, member Member) error
	UpdateMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, id string) (Member, error)
	GetMemberByEmail(ctx context.Context, email string) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// DutyFilter narrows duty assignment queries.
type DutyFilter struct {
	Category string
	From     *time.Time
	To       *time.Time
	MemberID string
}

// DutyRepository stores duty assignments and their assignees.
type DutyRepository interface {
	CreateDuty(ctx context.Context, duty Duty) error
	UpdateDuty(ctx context.Context, duty Duty) error
	GetDuty(ctx context.Context, id string) (Duty, error)
	ListDuties(ctx context.Context, filter DutyFilter) ([]Duty, error)
	DeleteDuty(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// TemplateRepository stores message templates keyed by name.
type TemplateRepository interface {
	UpsertTemplate(ctx context.Context, template MessageTemplate) error
	GetTemplate(ctx context.Context, name string) (MessageTemplate, error)
	ListTemplates(ctx context.Context) ([]MessageTemplate, error)
	DeleteTemplate(ctx context.Context, name string) error
}
