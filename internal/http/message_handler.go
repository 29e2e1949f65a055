package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/community-roster/internal/application"
)

type messageService interface {
	SaveTemplate(ctx context.Context, principal application.Principal, input application.TemplateInput) (application.MessageTemplate, error)
	GetTemplate(ctx context.Context, principal application.Principal, name string) (application.MessageTemplate, error)
	ListTemplates(ctx context.Context, principal application.Principal) ([]application.MessageTemplate, error)
	DeleteTemplate(ctx context.Context, principal application.Principal, name string) error
	DueReminders(ctx context.Context) ([]application.Reminder, error)
}

type MessageHandler struct {
	service   messageService
	responder responder
}

func NewMessageHandler(service messageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

func (h *MessageHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	template, err := h.service.SaveTemplate(r.Context(), principal, application.TemplateInput{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTemplateResponse(template))
}

func (h *MessageHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTemplateName)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	template, err := h.service.GetTemplate(r.Context(), principal, name)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTemplateResponse(template))
}

func (h *MessageHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	templates, err := h.service.ListTemplates(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	responses := make([]templateResponse, len(templates))
	for i, template := range templates {
		responses[i] = toTemplateResponse(template)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateListResponse{Templates: responses})
}

func (h *MessageHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTemplateName)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteTemplate(r.Context(), principal, name); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// DueReminders returns rendered reminders for duties starting within the
// reminder lead window. Restricted to administrators.
func (h *MessageHandler) DueReminders(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if !principal.IsAdmin() {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	reminders, err := h.service.DueReminders(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	responses := make([]reminderResponse, len(reminders))
	for i, reminder := range reminders {
		responses[i] = reminderResponse{
			DutyID:   reminder.DutyID,
			Category: string(reminder.Category),
			MemberID: reminder.MemberID,
			StartsAt: reminder.StartsAt.UTC().Format(time.RFC3339Nano),
			Subject:  reminder.Subject,
			Body:     reminder.Body,
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reminderListResponse{Reminders: responses})
}

type templateRequest struct {
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

type templateResponse struct {
	Name      string `json:"name"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type templateListResponse struct {
	Templates []templateResponse `json:"templates"`
}

func toTemplateResponse(template application.MessageTemplate) templateResponse {
	return templateResponse{
		Name:      template.Name,
		Subject:   template.Subject,
		Body:      template.Body,
		CreatedAt: template.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: template.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type reminderResponse struct {
	DutyID   string `json:"duty_id"`
	Category string `json:"category"`
	MemberID string `json:"member_id"`
	StartsAt string `json:"starts_at"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

type reminderListResponse struct {
	Reminders []reminderResponse `json:"reminders"`
}
