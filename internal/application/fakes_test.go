package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/community-roster/internal/roster"
)

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]Member
	hashes  map[string]string
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members: make(map[string]Member),
		hashes:  make(map[string]string),
	}
}

func (r *fakeMemberRepo) CreateMember(ctx context.Context, member Member, passwordHash string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if existing.Email == member.Email {
			return Member{}, ErrAlreadyExists
		}
	}
	r.members[member.ID] = member
	r.hashes[member.ID] = passwordHash
	return member, nil
}

func (r *fakeMemberRepo) UpdateMember(ctx context.Context, member Member, passwordHash string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[member.ID]; !ok {
		return Member{}, ErrNotFound
	}
	r.members[member.ID] = member
	if passwordHash != "" {
		r.hashes[member.ID] = passwordHash
	}
	return member, nil
}

func (r *fakeMemberRepo) GetMember(ctx context.Context, id string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return member, nil
}

func (r *fakeMemberRepo) GetMemberCredentialsByEmail(ctx context.Context, email string) (MemberCredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, member := range r.members {
		if member.Email == email {
			return MemberCredentials{Member: member, PasswordHash: r.hashes[id]}, nil
		}
	}
	return MemberCredentials{}, ErrNotFound
}

func (r *fakeMemberRepo) DeleteMember(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return ErrNotFound
	}
	delete(r.members, id)
	delete(r.hashes, id)
	return nil
}

func (r *fakeMemberRepo) ListMembers(ctx context.Context) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Member, 0, len(r.members))
	for _, member := range r.members {
		out = append(out, member)
	}
	return out, nil
}

func (r *fakeMemberRepo) add(member Member, passwordHash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = member
	r.hashes[member.ID] = passwordHash
}

type fakeDutyRepo struct {
	mu     sync.Mutex
	duties map[string]Duty
}

func newFakeDutyRepo() *fakeDutyRepo {
	return &fakeDutyRepo{duties: make(map[string]Duty)}
}

func (r *fakeDutyRepo) CreateDuty(ctx context.Context, duty Duty) (Duty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duties[duty.ID] = duty
	return duty, nil
}

func (r *fakeDutyRepo) GetDuty(ctx context.Context, id string) (Duty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	duty, ok := r.duties[id]
	if !ok {
		return Duty{}, ErrNotFound
	}
	return duty, nil
}

func (r *fakeDutyRepo) UpdateDuty(ctx context.Context, duty Duty) (Duty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.duties[duty.ID]; !ok {
		return Duty{}, ErrNotFound
	}
	r.duties[duty.ID] = duty
	return duty, nil
}

func (r *fakeDutyRepo) DeleteDuty(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.duties[id]; !ok {
		return ErrNotFound
	}
	delete(r.duties, id)
	return nil
}

func (r *fakeDutyRepo) ListDuties(ctx context.Context, filter DutyListFilter) ([]Duty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Duty
	for _, duty := range r.duties {
		if filter.Category != "" && duty.Category != filter.Category {
			continue
		}
		if filter.From != nil && dayOf(duty.Date).Before(dayOf(*filter.From)) {
			continue
		}
		if filter.To != nil && dayOf(duty.Date).After(dayOf(*filter.To)) {
			continue
		}
		if filter.MemberID != "" && !contains(duty.Assignees, filter.MemberID) {
			continue
		}
		out = append(out, duty)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]Session)}
}

func (r *fakeSessionStore) CreateSession(ctx context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return session, nil
}

func (r *fakeSessionStore) GetSession(ctx context.Context, id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (r *fakeSessionStore) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	session.RevokedAt = &revokedAt
	r.sessions[id] = session
	return session, nil
}

func (r *fakeSessionStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(r.sessions, id)
		}
	}
	return nil
}

type fakeTemplateStore struct {
	mu        sync.Mutex
	templates map[string]MessageTemplate
}

func newFakeTemplateStore() *fakeTemplateStore {
	return &fakeTemplateStore{templates: make(map[string]MessageTemplate)}
}

func (r *fakeTemplateStore) UpsertTemplate(ctx context.Context, template MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.Name] = template
	return nil
}

func (r *fakeTemplateStore) GetTemplate(ctx context.Context, name string) (MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[name]
	if !ok {
		return MessageTemplate{}, ErrNotFound
	}
	return template, nil
}

func (r *fakeTemplateStore) ListTemplates(ctx context.Context) ([]MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MessageTemplate, 0, len(r.templates))
	for _, template := range r.templates {
		out = append(out, template)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTemplateStore) DeleteTemplate(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[name]; !ok {
		return ErrNotFound
	}
	delete(r.templates, name)
	return nil
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func adminPrincipal(id string) Principal {
	return Principal{MemberID: id, Roles: []roster.Role{roster.RoleAdmin}}
}

func principalWith(id string, roles ...roster.Role) Principal {
	return Principal{MemberID: id, Roles: roles}
}
