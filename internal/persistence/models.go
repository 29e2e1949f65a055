package persistence

import "time"

// Member represents a community member record.
type Member struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Gender       string
	University   string
	Course       string
	BirthDate    *time.Time
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Duty represents a persisted duty assignment: a meditation session, a meal
// slot, or a work duty task on a calendar day.
type Duty struct {
	ID        string
	Category  string
	Date      time.Time
	StartsAt  *time.Time
	Notes     *string
	CreatorID string
	Assignees []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents an authentication session persisted for a member.
type Session struct {
	ID        string
	MemberID  string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// MessageTemplate represents a named message body with placeholders that the
// messaging service expands per member and duty.
type MessageTemplate struct {
	Name      string
	Subject   string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
