package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/community-roster/internal/application"
	"github.com/example/community-roster/internal/export"
	"github.com/example/community-roster/internal/roster"
)

type exportDutyLister interface {
	ListDuties(ctx context.Context, params application.ListDutiesParams) ([]application.Duty, error)
}

type exportMemberLister interface {
	ListMembers(ctx context.Context, principal application.Principal) ([]application.Member, error)
}

// ExportHandler renders weekly roster tables as plain text for printing.
type ExportHandler struct {
	duties    exportDutyLister
	members   exportMemberLister
	location  *time.Location
	now       func() time.Time
	responder responder
}

func NewExportHandler(duties exportDutyLister, members exportMemberLister, location *time.Location, now func() time.Time, logger *slog.Logger) *ExportHandler {
	if location == nil {
		location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{
		duties:    duties,
		members:   members,
		location:  location,
		now:       now,
		responder: newResponder(defaultLogger(logger)),
	}
}

// Week writes the duty roster table for the week containing the optional
// week query parameter, defaulting to the current week.
func (h *ExportHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.duties == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reference := h.now().In(h.location)
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.location)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeek)
			return
		}
		reference = parsed
	}
	weekStart := roster.WeekOf(reference, h.location)

	principal, _ := PrincipalFromContext(r.Context())
	duties, err := h.duties.ListDuties(r.Context(), application.ListDutiesParams{
		Principal: principal,
		Week:      &weekStart,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	members := make(map[string]application.Member)
	if h.members != nil {
		if listed, err := h.members.ListMembers(r.Context(), principal); err == nil {
			for _, member := range listed {
				members[member.ID] = member
			}
		}
	}

	h.responder.writeText(r.Context(), w, http.StatusOK, export.WeekTable(weekStart, duties, members)+"\n")
}
