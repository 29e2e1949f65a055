package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/community-roster/internal/application"
	"github.com/example/community-roster/internal/roster"
)

type memberService interface {
	CreateMember(ctx context.Context, params application.CreateMemberParams) (application.Member, error)
	UpdateMember(ctx context.Context, params application.UpdateMemberParams) (application.Member, error)
	DeleteMember(ctx context.Context, principal application.Principal, memberID string) error
	GetMember(ctx context.Context, principal application.Principal, memberID string) (application.Member, error)
	ListMembers(ctx context.Context, principal application.Principal) ([]application.Member, error)
}

type MemberHandler struct {
	service   memberService
	responder responder
}

func NewMemberHandler(service memberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req memberRequest
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
	member, err := h.service.CreateMember(r.Context(), application.CreateMemberParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMemberResponse(member))
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	memberID, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(memberID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	var req memberRequest
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
	member, err := h.service.UpdateMember(r.Context(), application.UpdateMemberParams{
		Principal: principal,
		MemberID:  memberID,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	memberID, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(memberID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteMember(r.Context(), principal, memberID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	memberID, ok := PathIDFromContext(r.Context())
	if !ok || strings.TrimSpace(memberID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	member, err := h.service.GetMember(r.Context(), principal, memberID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	members, err := h.service.ListMembers(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	responses := make([]memberResponse, len(members))
	for i, member := range members {
		responses[i] = toMemberResponse(member)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, memberListResponse{Members: responses})
}

type memberRequest struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Gender     string   `json:"gender"`
	University string   `json:"university"`
	Course     string   `json:"course"`
	BirthDate  string   `json:"birth_date,omitempty"`
	Roles      []string `json:"roles"`
	Password   string   `json:"password,omitempty"`
}

func (req memberRequest) toInput() (application.MemberInput, error) {
	input := application.MemberInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Gender:     req.Gender,
		University: req.University,
		Course:     req.Course,
		Password:   req.Password,
	}
	for _, role := range req.Roles {
		input.Roles = append(input.Roles, roster.Role(role))
	}
	if trimmed := strings.TrimSpace(req.BirthDate); trimmed != "" {
		birthDate, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			return application.MemberInput{}, errInvalidBirthDate
		}
		input.BirthDate = &birthDate
	}
	return input, nil
}

type memberResponse struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Gender     string   `json:"gender,omitempty"`
	University string   `json:"university,omitempty"`
	Course     string   `json:"course,omitempty"`
	BirthDate  string   `json:"birth_date,omitempty"`
	Roles      []string `json:"roles"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

type memberListResponse struct {
	Members []memberResponse `json:"members"`
}

func toMemberResponse(member application.Member) memberResponse {
	resp := memberResponse{
		ID:         member.ID,
		Email:      member.Email,
		FirstName:  member.FirstName,
		LastName:   member.LastName,
		Gender:     member.Gender,
		University: member.University,
		Course:     member.Course,
		Roles:      make([]string, len(member.Roles)),
		CreatedAt:  member.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  member.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for i, role := range member.Roles {
		resp.Roles[i] = string(role)
	}
	if member.BirthDate != nil {
		resp.BirthDate = member.BirthDate.Format("2006-01-02")
	}
	return resp
}
