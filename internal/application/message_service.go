package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/community-roster/internal/roster"
)

// TemplateStore persists named message templates.
type TemplateStore interface {
	UpsertTemplate(ctx context.Context, template MessageTemplate) error
	GetTemplate(ctx context.Context, name string) (MessageTemplate, error)
	ListTemplates(ctx context.Context) ([]MessageTemplate, error)
	DeleteTemplate(ctx context.Context, name string) error
}

// defaultReminderTemplate is used when no category specific template exists.
var defaultReminderTemplate = MessageTemplate{
	Name:    "reminder.default",
	Subject: "Upcoming duty: {{category}}",
	Body:    "Hi {{first_name}}, your {{category}} duty starts at {{time}} on {{date}}.",
}

// MessageService manages message templates and renders duty reminders.
type MessageService struct {
	templates TemplateStore
	duties    DutyRepository
	directory MemberDirectory
	now       func() time.Time
	logger    *slog.Logger
}

// NewMessageService wires dependencies for the message service.
func NewMessageService(templates TemplateStore, duties DutyRepository, directory MemberDirectory, now func() time.Time, logger *slog.Logger) *MessageService {
	if now == nil {
		now = time.Now
	}
	return &MessageService{
		templates: templates,
		duties:    duties,
		directory: directory,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *MessageService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MessageService", operation, attrs...)
}

// SaveTemplate creates or replaces a template. Only administrators may
// manage templates.
func (s *MessageService) SaveTemplate(ctx context.Context, principal Principal, input TemplateInput) (MessageTemplate, error) {
	if s == nil || s.templates == nil {
		return MessageTemplate{}, fmt.Errorf("message service not configured")
	}
	if !principal.IsAdmin() {
		return MessageTemplate{}, ErrUnauthorized
	}

	normalized := MessageTemplate{
		Name:    strings.TrimSpace(input.Name),
		Subject: strings.TrimSpace(input.Subject),
		Body:    input.Body,
	}
	vErr := &ValidationError{}
	if normalized.Name == "" {
		vErr.add("name", "name is required")
	}
	if normalized.Body == "" {
		vErr.add("body", "body is required")
	}
	if vErr.HasErrors() {
		return MessageTemplate{}, vErr
	}

	now := s.now()
	normalized.CreatedAt = now
	normalized.UpdatedAt = now
	if err := s.templates.UpsertTemplate(ctx, normalized); err != nil {
		s.loggerWith(ctx, "SaveTemplate", "template", normalized.Name).
			ErrorContext(ctx, "template save failed", "error", err, "error_kind", ErrorKind(err))
		return MessageTemplate{}, err
	}

	stored, err := s.templates.GetTemplate(ctx, normalized.Name)
	if err != nil {
		return MessageTemplate{}, err
	}
	s.loggerWith(ctx, "SaveTemplate", "template", stored.Name).InfoContext(ctx, "template saved")
	return stored, nil
}

// GetTemplate returns a template by name for administrators.
func (s *MessageService) GetTemplate(ctx context.Context, principal Principal, name string) (MessageTemplate, error) {
	if s == nil || s.templates == nil {
		return MessageTemplate{}, fmt.Errorf("message service not configured")
	}
	if !principal.IsAdmin() {
		return MessageTemplate{}, ErrUnauthorized
	}
	return s.templates.GetTemplate(ctx, name)
}

// ListTemplates returns every stored template for administrators.
func (s *MessageService) ListTemplates(ctx context.Context, principal Principal) ([]MessageTemplate, error) {
	if s == nil || s.templates == nil {
		return nil, fmt.Errorf("message service not configured")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.templates.ListTemplates(ctx)
}

// DeleteTemplate removes a template by name for administrators.
func (s *MessageService) DeleteTemplate(ctx context.Context, principal Principal, name string) error {
	if s == nil || s.templates == nil {
		return fmt.Errorf("message service not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	return s.templates.DeleteTemplate(ctx, name)
}

// seedTemplate is the YAML shape of one catalog entry.
type seedTemplate struct {
	Name    string `yaml:"name"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type seedCatalog struct {
	Templates []seedTemplate `yaml:"templates"`
}

// CatalogFromYAML parses a template seed catalog.
func CatalogFromYAML(data []byte) ([]TemplateInput, error) {
	var catalog seedCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	inputs := make([]TemplateInput, 0, len(catalog.Templates))
	for i, tpl := range catalog.Templates {
		if strings.TrimSpace(tpl.Name) == "" {
			return nil, fmt.Errorf("parse template catalog: entry %d has no name", i)
		}
		if tpl.Body == "" {
			return nil, fmt.Errorf("parse template catalog: entry %q has no body", tpl.Name)
		}
		inputs = append(inputs, TemplateInput{
			Name:    strings.TrimSpace(tpl.Name),
			Subject: strings.TrimSpace(tpl.Subject),
			Body:    tpl.Body,
		})
	}
	return inputs, nil
}

// SeedTemplates upserts the given catalog entries, typically at startup.
// Existing templates with the same name are overwritten.
func (s *MessageService) SeedTemplates(ctx context.Context, inputs []TemplateInput) error {
	if s == nil || s.templates == nil {
		return fmt.Errorf("message service not configured")
	}

	now := s.now()
	for _, input := range inputs {
		template := MessageTemplate{
			Name:      input.Name,
			Subject:   input.Subject,
			Body:      input.Body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.templates.UpsertTemplate(ctx, template); err != nil {
			return fmt.Errorf("seed template %q: %w", input.Name, err)
		}
	}

	s.loggerWith(ctx, "SeedTemplates", "count", len(inputs)).InfoContext(ctx, "templates seeded")
	return nil
}

// DueReminders renders a reminder for every assignee of a duty whose start
// time rounds to at most fifteen minutes from now. Duties without a start
// time never produce reminders.
func (s *MessageService) DueReminders(ctx context.Context) ([]Reminder, error) {
	if s == nil || s.templates == nil || s.duties == nil {
		return nil, fmt.Errorf("message service not configured")
	}

	now := s.now()
	from := now
	to := now.Add(15 * time.Minute)
	duties, err := s.duties.ListDuties(ctx, DutyListFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	var reminders []Reminder
	for _, duty := range duties {
		if duty.StartsAt == nil || !roster.ShouldSendReminder(now, *duty.StartsAt) {
			continue
		}
		template := s.reminderTemplate(ctx, duty.Category)
		for _, memberID := range duty.Assignees {
			reminder, err := s.renderReminder(ctx, template, duty, memberID)
			if err != nil {
				s.loggerWith(ctx, "DueReminders", "duty_id", duty.ID, "member_id", memberID).
					WarnContext(ctx, "reminder skipped", "error", err)
				continue
			}
			reminders = append(reminders, reminder)
		}
	}
	return reminders, nil
}

func (s *MessageService) reminderTemplate(ctx context.Context, category roster.Category) MessageTemplate {
	name := "reminder." + string(category)
	template, err := s.templates.GetTemplate(ctx, name)
	if err == nil {
		return template
	}
	if !errors.Is(err, ErrNotFound) {
		s.loggerWith(ctx, "DueReminders", "template", name).
			WarnContext(ctx, "template lookup failed", "error", err)
	}
	if template, err = s.templates.GetTemplate(ctx, defaultReminderTemplate.Name); err == nil {
		return template
	}
	return defaultReminderTemplate
}

func (s *MessageService) renderReminder(ctx context.Context, template MessageTemplate, duty Duty, memberID string) (Reminder, error) {
	member := Member{ID: memberID}
	if s.directory != nil {
		resolved, err := s.directory.GetMember(ctx, memberID)
		if err != nil {
			return Reminder{}, err
		}
		member = resolved
	}

	replacer := strings.NewReplacer(
		"{{first_name}}", member.FirstName,
		"{{last_name}}", member.LastName,
		"{{category}}", string(duty.Category),
		"{{date}}", duty.Date.Format("2006-01-02"),
		"{{time}}", duty.StartsAt.Format("15:04"),
	)

	return Reminder{
		DutyID:   duty.ID,
		Category: duty.Category,
		MemberID: memberID,
		StartsAt: *duty.StartsAt,
		Subject:  replacer.Replace(template.Subject),
		Body:     replacer.Replace(template.Body),
	}, nil
}
