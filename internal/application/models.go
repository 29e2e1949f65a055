package application

import (
	"time"

	"github.com/example/community-roster/internal/roster"
)

// Principal represents the authenticated member invoking a service method.
// The zero value stands for an unauthenticated caller.
type Principal struct {
	MemberID string
	Roles    []roster.Role
}

// Roster projects the principal into the rule engine's member shape. An
// unauthenticated principal projects to nil so every predicate denies it.
func (p Principal) Roster() *roster.Member {
	if p.MemberID == "" {
		return nil
	}
	return &roster.Member{ID: p.MemberID, Roles: p.Roles}
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Roster().HasRole(roster.RoleAdmin)
}

// Member represents a community member exposed by the application services.
type Member struct {
	ID         string
	Email      string
	FirstName  string
	LastName   string
	Gender     string
	University string
	Course     string
	BirthDate  *time.Time
	Roles      []roster.Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Roster projects the member into the rule engine's shape.
func (m Member) Roster() *roster.Member {
	return &roster.Member{ID: m.ID, Roles: m.Roles}
}

// MemberInput captures caller provided member attributes.
type MemberInput struct {
	Email      string
	FirstName  string
	LastName   string
	Gender     string
	University string
	Course     string
	BirthDate  *time.Time
	Roles      []roster.Role
	Password   string
}

// CreateMemberParams wraps the data required to create a member.
type CreateMemberParams struct {
	Principal Principal
	Input     MemberInput
}

// UpdateMemberParams wraps the data required to update an existing member.
type UpdateMemberParams struct {
	Principal Principal
	MemberID  string
	Input     MemberInput
}

// MemberCredentials models the authentication attributes persisted for a member.
type MemberCredentials struct {
	Member       Member
	PasswordHash string
}

// Duty represents a persisted duty assignment.
type Duty struct {
	ID        string
	Category  roster.Category
	Date      time.Time
	StartsAt  *time.Time
	Notes     string
	CreatorID string
	Assignees []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DutyInput captures caller provided duty assignment fields.
type DutyInput struct {
	Category  roster.Category
	Date      time.Time
	StartsAt  *time.Time
	Notes     string
	Assignees []string
}

// CreateDutyParams wraps the data required to create a duty assignment.
type CreateDutyParams struct {
	Principal Principal
	Input     DutyInput
}

// UpdateDutyParams wraps the data required to update an existing duty assignment.
type UpdateDutyParams struct {
	Principal Principal
	DutyID    string
	Input     DutyInput
}

// ListDutiesParams wraps the data required to list duty assignments.
type ListDutiesParams struct {
	Principal Principal
	Category  roster.Category
	From      *time.Time
	To        *time.Time
	Week      *time.Time
	MemberID  string
}

// Session represents an authenticated session issued to a member.
type Session struct {
	ID        string
	MemberID  string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a member.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	Member    Member
	Session   Session
	Token     string
	Dashboard roster.Route
}

// MessageTemplate represents a named message body with placeholders.
type MessageTemplate struct {
	Name      string
	Subject   string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateInput captures caller provided template fields.
type TemplateInput struct {
	Name    string
	Subject string
	Body    string
}

// Reminder is a rendered notification for a member's upcoming duty.
type Reminder struct {
	DutyID   string
	Category roster.Category
	MemberID string
	StartsAt time.Time
	Subject  string
	Body     string
}
