package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/community-roster/internal/application"
	"github.com/example/community-roster/internal/roster"
)

type dutyService interface {
	CreateDuty(ctx context.Context, params application.CreateDutyParams) (application.Duty, error)
	UpdateDuty(ctx context.Context, params application.UpdateDutyParams) (application.Duty, error)
	DeleteDuty(ctx context.Context, principal application.Principal, dutyID string) error
	GetDuty(ctx context.Context, principal application.Principal, dutyID string) (application.Duty, error)
	ListDuties(ctx context.Context, params application.ListDutiesParams) ([]application.Duty, error)
}

type DutyHandler struct {
	service   dutyService
	responder responder
}

func NewDutyHandler(service dutyService, logger *slog.Logger) *DutyHandler {
	return &DutyHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

func (h *DutyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req dutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	duty, err := h.service.CreateDuty(r.Context(), application.CreateDutyParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toDutyResponse(duty))
}

func (h *DutyHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	dutyID, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(dutyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDutyID)
		return
	}

	var req dutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	duty, err := h.service.UpdateDuty(r.Context(), application.UpdateDutyParams{
		Principal: principal,
		DutyID:    dutyID,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDutyResponse(duty))
}

func (h *DutyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	dutyID, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(dutyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDutyID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteDuty(r.Context(), principal, dutyID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *DutyHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	dutyID, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(dutyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDutyID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	duty, err := h.service.GetDuty(r.Context(), principal, dutyID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDutyResponse(duty))
}

func (h *DutyHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params, err := buildListParams(r.URL.Query(), principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	duties, err := h.service.ListDuties(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	responses := make([]dutyResponse, len(duties))
	for i, duty := range duties {
		responses[i] = toDutyResponse(duty)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dutyListResponse{Duties: responses})
}

func buildListParams(query url.Values, principal application.Principal) (application.ListDutiesParams, error) {
	params := application.ListDutiesParams{
		Principal: principal,
		Category:  roster.Category(strings.TrimSpace(query.Get("category"))),
		MemberID:  strings.TrimSpace(query.Get("member_id")),
	}

	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{
		{"from", &params.From},
		{"to", &params.To},
		{"week", &params.Week},
	} {
		raw := strings.TrimSpace(query.Get(bound.key))
		if raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			if bound.key == "week" {
				return application.ListDutiesParams{}, errInvalidWeek
			}
			return application.ListDutiesParams{}, errInvalidDate
		}
		*bound.dest = &parsed
	}

	return params, nil
}

type dutyRequest struct {
	Category  string   `json:"category"`
	Date      string   `json:"date"`
	StartsAt  string   `json:"starts_at,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Assignees []string `json:"assignees"`
}

func (req dutyRequest) toInput() (application.DutyInput, error) {
	input := application.DutyInput{
		Category:  roster.Category(req.Category),
		Notes:     req.Notes,
		Assignees: req.Assignees,
	}
	if trimmed := strings.TrimSpace(req.Date); trimmed != "" {
		date, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			return application.DutyInput{}, errInvalidDate
		}
		input.Date = date
	}
	if trimmed := strings.TrimSpace(req.StartsAt); trimmed != "" {
		startsAt, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return application.DutyInput{}, errInvalidStartsAt
		}
		input.StartsAt = &startsAt
	}
	return input, nil
}

type dutyResponse struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	Date      string   `json:"date"`
	StartsAt  string   `json:"starts_at,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatorID string   `json:"creator_id"`
	Assignees []string `json:"assignees"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type dutyListResponse struct {
	Duties []dutyResponse `json:"duties"`
}

func toDutyResponse(duty application.Duty) dutyResponse {
	resp := dutyResponse{
		ID:        duty.ID,
		Category:  string(duty.Category),
		Date:      duty.Date.Format("2006-01-02"),
		Notes:     duty.Notes,
		CreatorID: duty.CreatorID,
		Assignees: duty.Assignees,
		CreatedAt: duty.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: duty.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if duty.StartsAt != nil {
		resp.StartsAt = duty.StartsAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
