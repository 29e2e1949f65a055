package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/community-roster/internal/roster"
)

// DutyRepository captures the persistence operations needed by the duty service.
type DutyRepository interface {
	CreateDuty(ctx context.Context, duty Duty) (Duty, error)
	GetDuty(ctx context.Context, id string) (Duty, error)
	UpdateDuty(ctx context.Context, duty Duty) (Duty, error)
	DeleteDuty(ctx context.Context, id string) error
	ListDuties(ctx context.Context, filter DutyListFilter) ([]Duty, error)
}

// DutyListFilter narrows the duties returned by ListDuties. From and To are
// inclusive date bounds; the time of day is ignored.
type DutyListFilter struct {
	Category roster.Category
	From     *time.Time
	To       *time.Time
	MemberID string
}

// MemberDirectory resolves member records for assignee validation.
type MemberDirectory interface {
	GetMember(ctx context.Context, id string) (Member, error)
}

// DutyService orchestrates authorization, eligibility checks, and persistence
// for duty assignments.
type DutyService struct {
	duties      DutyRepository
	directory   MemberDirectory
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewDutyService wires dependencies for the duty service. The location is used
// to evaluate edit windows and to resolve week boundaries.
func NewDutyService(duties DutyRepository, directory MemberDirectory, idGenerator func() string, now func() time.Time, location *time.Location, logger *slog.Logger) *DutyService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &DutyService{
		duties:      duties,
		directory:   directory,
		idGenerator: idGenerator,
		now:         now,
		location:    location,
		logger:      defaultLogger(logger),
	}
}

func (s *DutyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DutyService", operation, attrs...)
}

// CreateDuty persists a new duty assignment after authorization and
// eligibility checks.
func (s *DutyService) CreateDuty(ctx context.Context, params CreateDutyParams) (Duty, error) {
	if s == nil || s.duties == nil {
		return Duty{}, fmt.Errorf("duty service not configured")
	}

	normalized := normalizeDutyInput(params.Input)
	if vErr := validateDutyInput(normalized); vErr.HasErrors() {
		return Duty{}, vErr
	}

	actor := params.Principal.Roster()
	if !roster.CanCreateSchedule(actor, normalized.Category) {
		return Duty{}, ErrUnauthorized
	}

	if err := s.checkAssignees(ctx, normalized); err != nil {
		return Duty{}, err
	}

	now := s.now()
	duty := Duty{
		ID:        s.idGenerator(),
		Category:  normalized.Category,
		Date:      normalized.Date,
		StartsAt:  normalized.StartsAt,
		Notes:     normalized.Notes,
		CreatorID: params.Principal.MemberID,
		Assignees: normalized.Assignees,
		CreatedAt: now,
		UpdatedAt: now,
	}

	persisted, err := s.duties.CreateDuty(ctx, duty)
	if err != nil {
		s.loggerWith(ctx, "CreateDuty", "category", string(duty.Category)).
			ErrorContext(ctx, "duty creation failed", "error", err, "error_kind", ErrorKind(err))
		return Duty{}, err
	}

	s.loggerWith(ctx, "CreateDuty", "duty_id", persisted.ID, "category", string(persisted.Category)).
		InfoContext(ctx, "duty created")
	return persisted, nil
}

// UpdateDuty applies caller changes to an existing duty assignment. The
// category of a duty is fixed once created.
func (s *DutyService) UpdateDuty(ctx context.Context, params UpdateDutyParams) (Duty, error) {
	if s == nil || s.duties == nil {
		return Duty{}, fmt.Errorf("duty service not configured")
	}

	existing, err := s.duties.GetDuty(ctx, params.DutyID)
	if err != nil {
		return Duty{}, err
	}

	normalized := normalizeDutyInput(params.Input)
	if normalized.Category == "" {
		normalized.Category = existing.Category
	}
	if vErr := validateDutyInput(normalized); vErr.HasErrors() {
		return Duty{}, vErr
	}
	if normalized.Category != existing.Category {
		vErr := &ValidationError{}
		vErr.add("category", "category cannot be changed")
		return Duty{}, vErr
	}

	if err := s.authorizeMutation(params.Principal, existing.Category); err != nil {
		return Duty{}, err
	}

	if err := s.checkAssignees(ctx, normalized); err != nil {
		return Duty{}, err
	}

	updated := existing
	updated.Date = normalized.Date
	updated.StartsAt = normalized.StartsAt
	updated.Notes = normalized.Notes
	updated.Assignees = normalized.Assignees
	updated.UpdatedAt = s.now()

	persisted, err := s.duties.UpdateDuty(ctx, updated)
	if err != nil {
		s.loggerWith(ctx, "UpdateDuty", "duty_id", params.DutyID).
			ErrorContext(ctx, "duty update failed", "error", err, "error_kind", ErrorKind(err))
		return Duty{}, err
	}

	s.loggerWith(ctx, "UpdateDuty", "duty_id", persisted.ID).InfoContext(ctx, "duty updated")
	return persisted, nil
}

// DeleteDuty removes a duty assignment under the same rules as editing it.
func (s *DutyService) DeleteDuty(ctx context.Context, principal Principal, dutyID string) error {
	if s == nil || s.duties == nil {
		return fmt.Errorf("duty service not configured")
	}

	existing, err := s.duties.GetDuty(ctx, dutyID)
	if err != nil {
		return err
	}

	if err := s.authorizeMutation(principal, existing.Category); err != nil {
		return err
	}

	if err := s.duties.DeleteDuty(ctx, dutyID); err != nil {
		s.loggerWith(ctx, "DeleteDuty", "duty_id", dutyID).
			ErrorContext(ctx, "duty delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.loggerWith(ctx, "DeleteDuty", "duty_id", dutyID).InfoContext(ctx, "duty deleted")
	return nil
}

// GetDuty returns a single duty assignment the principal may view.
func (s *DutyService) GetDuty(ctx context.Context, principal Principal, dutyID string) (Duty, error) {
	if s == nil || s.duties == nil {
		return Duty{}, fmt.Errorf("duty service not configured")
	}

	duty, err := s.duties.GetDuty(ctx, dutyID)
	if err != nil {
		return Duty{}, err
	}
	if !roster.CanAccessSchedule(principal.Roster(), duty.Category) {
		return Duty{}, ErrUnauthorized
	}
	return duty, nil
}

// ListDuties returns the duty assignments matching the filter that the
// principal is allowed to view. When Week is set the range covers the Monday
// through Sunday that contains it, overriding From and To.
func (s *DutyService) ListDuties(ctx context.Context, params ListDutiesParams) ([]Duty, error) {
	if s == nil || s.duties == nil {
		return nil, fmt.Errorf("duty service not configured")
	}

	if params.Category != "" {
		if !roster.ValidCategory(params.Category) {
			vErr := &ValidationError{}
			vErr.add("category", fmt.Sprintf("unknown category: %s", params.Category))
			return nil, vErr
		}
		if !roster.CanAccessSchedule(params.Principal.Roster(), params.Category) {
			return nil, ErrUnauthorized
		}
	}

	filter := DutyListFilter{
		Category: params.Category,
		From:     params.From,
		To:       params.To,
		MemberID: params.MemberID,
	}
	if params.Week != nil {
		start := roster.WeekOf(*params.Week, s.location)
		end := start.AddDate(0, 0, 6)
		filter.From = &start
		filter.To = &end
	}

	duties, err := s.duties.ListDuties(ctx, filter)
	if err != nil {
		return nil, err
	}

	actor := params.Principal.Roster()
	visible := make([]Duty, 0, len(duties))
	for _, duty := range duties {
		if roster.CanAccessSchedule(actor, duty.Category) {
			visible = append(visible, duty)
		}
	}
	return visible, nil
}

// authorizeMutation enforces the edit rules for an existing duty. Meditation
// duties are admin only; cooking and work duty additionally honour the weekly
// edit window, which even administrators cannot override.
func (s *DutyService) authorizeMutation(principal Principal, category roster.Category) error {
	actor := principal.Roster()
	if category == roster.CategoryMeditation {
		if !actor.HasRole(roster.RoleAdmin) {
			return ErrUnauthorized
		}
		return nil
	}
	if !actor.HasRole(roster.RoleAdmin) {
		return ErrUnauthorized
	}
	if !roster.WithinEditWindow(s.now().In(s.location)) {
		return ErrEditWindowClosed
	}
	return nil
}

// checkAssignees resolves every assignee and, for cooking duties, rejects
// members ineligible for kitchen duty on the scheduled date.
func (s *DutyService) checkAssignees(ctx context.Context, input DutyInput) error {
	if s.directory == nil {
		return nil
	}
	for _, memberID := range input.Assignees {
		member, err := s.directory.GetMember(ctx, memberID)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("assignees", fmt.Sprintf("unknown member: %s", memberID))
			return vErr
		}
		if input.Category == roster.CategoryCooking && !roster.CanAssignToKitchenDuty(member.Roster(), input.Date) {
			vErr := &ValidationError{}
			vErr.add("assignees", fmt.Sprintf("member %s is not eligible for kitchen duty on %s", memberID, input.Date.Format("2006-01-02")))
			return vErr
		}
	}
	return nil
}

func normalizeDutyInput(input DutyInput) DutyInput {
	normalized := DutyInput{
		Category: roster.Category(strings.ToLower(strings.TrimSpace(string(input.Category)))),
		Date:     input.Date,
		StartsAt: input.StartsAt,
		Notes:    strings.TrimSpace(input.Notes),
	}

	seen := make(map[string]bool, len(input.Assignees))
	for _, id := range input.Assignees {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		normalized.Assignees = append(normalized.Assignees, id)
	}
	sort.Strings(normalized.Assignees)
	return normalized
}

func validateDutyInput(input DutyInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Category == "" {
		vErr.add("category", "category is required")
	} else if !roster.ValidCategory(input.Category) {
		vErr.add("category", fmt.Sprintf("unknown category: %s", input.Category))
	}

	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if len(input.Assignees) == 0 {
		vErr.add("assignees", "at least one assignee is required")
	}
	if input.StartsAt != nil && !input.Date.IsZero() {
		if input.StartsAt.Year() != input.Date.Year() || input.StartsAt.YearDay() != input.Date.YearDay() {
			vErr.add("starts_at", "start time must fall on the duty date")
		}
	}

	return vErr
}
