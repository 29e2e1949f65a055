// Package testfixtures provides deterministic clocks, identifier generators,
// and domain fixtures shared by test suites across the module.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/community-roster/internal/persistence"
	"github.com/example/community-roster/internal/roster"
)

var (
	memberCounter uint64
	dutyCounter   uint64
)

// referenceTime is a Tuesday, inside the weekly edit window.
var referenceTime = time.Date(2025, time.January, 21, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// MemberFixture is a deterministic member record for persistence tests.
type MemberFixture struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Roles        []roster.Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MemberOption configures the generated member fixture.
type MemberOption func(*MemberFixture)

// NewMemberFixture returns a deterministic member fixture with optional overrides.
func NewMemberFixture(opts ...MemberOption) MemberFixture {
	idx := atomic.AddUint64(&memberCounter, 1)
	id := fmt.Sprintf("member-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := MemberFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		FirstName:    fmt.Sprintf("First%03d", idx),
		LastName:     fmt.Sprintf("Last%03d", idx),
		Roles:        []roster.Role{roster.RoleFriend},
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMemberID overrides the generated member ID.
func WithMemberID(id string) MemberOption {
	return func(f *MemberFixture) {
		f.ID = id
	}
}

// WithMemberEmail overrides the generated email address.
func WithMemberEmail(email string) MemberOption {
	return func(f *MemberFixture) {
		f.Email = email
	}
}

// WithMemberRoles replaces the generated role set.
func WithMemberRoles(roles ...roster.Role) MemberOption {
	return func(f *MemberFixture) {
		f.Roles = roles
	}
}

// Persistence converts the fixture into the persistence layer member model.
func (f MemberFixture) Persistence() persistence.Member {
	roleTags := make([]string, len(f.Roles))
	for i, role := range f.Roles {
		roleTags[i] = string(role)
	}
	return persistence.Member{
		ID:           f.ID,
		Email:        f.Email,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		PasswordHash: f.PasswordHash,
		Roles:        roleTags,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// DutyFixture is a deterministic duty record for persistence tests.
type DutyFixture struct {
	ID        string
	Category  roster.Category
	Date      time.Time
	StartsAt  *time.Time
	CreatorID string
	Assignees []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DutyOption configures the generated duty fixture.
type DutyOption func(*DutyFixture)

// NewDutyFixture returns a deterministic duty fixture with optional overrides.
func NewDutyFixture(opts ...DutyOption) DutyFixture {
	idx := atomic.AddUint64(&dutyCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := DutyFixture{
		ID:        fmt.Sprintf("duty-%03d", idx),
		Category:  roster.CategoryCooking,
		Date:      roster.WeekOf(referenceTime, time.UTC).AddDate(0, 0, int(idx)%7),
		CreatorID: "member-001",
		Assignees: []string{"member-001"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDutyCategory overrides the generated category.
func WithDutyCategory(category roster.Category) DutyOption {
	return func(f *DutyFixture) {
		f.Category = category
	}
}

// WithDutyDate overrides the generated duty date.
func WithDutyDate(date time.Time) DutyOption {
	return func(f *DutyFixture) {
		f.Date = date
	}
}

// WithDutyAssignees replaces the generated assignee list.
func WithDutyAssignees(memberIDs ...string) DutyOption {
	return func(f *DutyFixture) {
		f.Assignees = memberIDs
	}
}

// Persistence converts the fixture into the persistence layer duty model.
func (f DutyFixture) Persistence() persistence.Duty {
	return persistence.Duty{
		ID:        f.ID,
		Category:  string(f.Category),
		Date:      f.Date,
		StartsAt:  f.StartsAt,
		CreatorID: f.CreatorID,
		Assignees: f.Assignees,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
