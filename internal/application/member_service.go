package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/community-roster/internal/roster"
)

// MemberRepository captures the persistence operations needed by the member service.
type MemberRepository interface {
	// CreateMember persists a new member with the given password hash.
	CreateMember(ctx context.Context, member Member, passwordHash string) (Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	// UpdateMember replaces member attributes. An empty passwordHash keeps
	// the stored credential unchanged.
	UpdateMember(ctx context.Context, member Member, passwordHash string) (Member, error)
	DeleteMember(ctx context.Context, id string) error
	ListMembers(ctx context.Context) ([]Member, error)
}

// MemberService orchestrates validation, authorization, and persistence for members.
type MemberService struct {
	members      MemberRepository
	hashPassword func(string) (string, error)
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewMemberService wires dependencies for the member service.
func NewMemberService(members MemberRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MemberService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MemberService{
		members:      members,
		hashPassword: HashPassword,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *MemberService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MemberService", operation, attrs...)
}

// CreateMember validates input and persists a new member for administrators.
func (s *MemberService) CreateMember(ctx context.Context, params CreateMemberParams) (Member, error) {
	if s == nil || s.members == nil {
		return Member{}, fmt.Errorf("member service not configured")
	}
	if !params.Principal.IsAdmin() {
		return Member{}, ErrUnauthorized
	}

	normalized := normalizeMemberInput(params.Input)
	if vErr := validateMemberInput(normalized, true); vErr.HasErrors() {
		return Member{}, vErr
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return Member{}, err
	}

	now := s.now()
	member := Member{
		ID:         s.idGenerator(),
		Email:      normalized.Email,
		FirstName:  normalized.FirstName,
		LastName:   normalized.LastName,
		Gender:     normalized.Gender,
		University: normalized.University,
		Course:     normalized.Course,
		BirthDate:  normalized.BirthDate,
		Roles:      normalized.Roles,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	persisted, err := s.members.CreateMember(ctx, member, hash)
	if err != nil {
		s.loggerWith(ctx, "CreateMember", "email", member.Email).
			ErrorContext(ctx, "member creation failed", "error", err, "error_kind", ErrorKind(err))
		return Member{}, err
	}

	s.loggerWith(ctx, "CreateMember", "member_id", persisted.ID).InfoContext(ctx, "member created")
	return persisted, nil
}

// UpdateMember validates input and updates an existing member for administrators.
func (s *MemberService) UpdateMember(ctx context.Context, params UpdateMemberParams) (Member, error) {
	if s == nil || s.members == nil {
		return Member{}, fmt.Errorf("member service not configured")
	}
	if !params.Principal.IsAdmin() {
		return Member{}, ErrUnauthorized
	}

	existing, err := s.members.GetMember(ctx, params.MemberID)
	if err != nil {
		return Member{}, err
	}

	normalized := normalizeMemberInput(params.Input)
	if vErr := validateMemberInput(normalized, false); vErr.HasErrors() {
		return Member{}, vErr
	}

	hash := ""
	if normalized.Password != "" {
		if hash, err = s.hashPassword(normalized.Password); err != nil {
			return Member{}, err
		}
	}

	updated := existing
	updated.Email = normalized.Email
	updated.FirstName = normalized.FirstName
	updated.LastName = normalized.LastName
	updated.Gender = normalized.Gender
	updated.University = normalized.University
	updated.Course = normalized.Course
	updated.BirthDate = normalized.BirthDate
	updated.Roles = normalized.Roles
	updated.UpdatedAt = s.now()

	persisted, err := s.members.UpdateMember(ctx, updated, hash)
	if err != nil {
		s.loggerWith(ctx, "UpdateMember", "member_id", params.MemberID).
			ErrorContext(ctx, "member update failed", "error", err, "error_kind", ErrorKind(err))
		return Member{}, err
	}

	s.loggerWith(ctx, "UpdateMember", "member_id", persisted.ID).InfoContext(ctx, "member updated")
	return persisted, nil
}

// DeleteMember removes a member when requested by an administrator.
func (s *MemberService) DeleteMember(ctx context.Context, principal Principal, memberID string) error {
	if s == nil || s.members == nil {
		return fmt.Errorf("member service not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	if err := s.members.DeleteMember(ctx, memberID); err != nil {
		s.loggerWith(ctx, "DeleteMember", "member_id", memberID).
			ErrorContext(ctx, "member delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.loggerWith(ctx, "DeleteMember", "member_id", memberID).InfoContext(ctx, "member deleted")
	return nil
}

// GetMember returns a single member. Administrators may fetch anyone; other
// principals only themselves.
func (s *MemberService) GetMember(ctx context.Context, principal Principal, memberID string) (Member, error) {
	if s == nil || s.members == nil {
		return Member{}, fmt.Errorf("member service not configured")
	}
	if !principal.IsAdmin() && principal.MemberID != memberID {
		return Member{}, ErrUnauthorized
	}
	return s.members.GetMember(ctx, memberID)
}

// ListMembers returns all members for administrators, ordered by name.
func (s *MemberService) ListMembers(ctx context.Context, principal Principal) ([]Member, error) {
	if s == nil || s.members == nil {
		return nil, fmt.Errorf("member service not configured")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}

	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Member, len(members))
	copy(out, members)
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Dashboard resolves the landing route for the principal.
func (s *MemberService) Dashboard(principal Principal) roster.Route {
	return roster.DashboardForUser(principal.Roster())
}

func normalizeMemberInput(input MemberInput) MemberInput {
	normalized := MemberInput{
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Gender:     strings.ToLower(strings.TrimSpace(input.Gender)),
		University: strings.TrimSpace(input.University),
		Course:     strings.TrimSpace(input.Course),
		BirthDate:  input.BirthDate,
		Password:   input.Password,
	}

	seen := make(map[roster.Role]bool, len(input.Roles))
	for _, role := range input.Roles {
		if !seen[role] {
			seen[role] = true
			normalized.Roles = append(normalized.Roles, role)
		}
	}
	// Members never carry an empty role set; Friend is the baseline tag.
	if len(normalized.Roles) == 0 {
		normalized.Roles = []roster.Role{roster.RoleFriend}
	}
	return normalized
}

func validateMemberInput(input MemberInput, passwordRequired bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.FirstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if input.LastName == "" {
		vErr.add("last_name", "last name is required")
	}

	for _, role := range input.Roles {
		if !roster.ValidRole(role) {
			vErr.add("roles", fmt.Sprintf("unknown role: %s", role))
			break
		}
	}

	if passwordRequired && input.Password == "" {
		vErr.add("password", "password is required")
	}
	if input.Password != "" && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}

	return vErr
}
