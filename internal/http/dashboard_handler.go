package http

import (
	"log/slog"
	"net/http"

	"github.com/example/community-roster/internal/roster"
)

type DashboardHandler struct {
	responder responder
}

func NewDashboardHandler(logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{responder: newResponder(defaultLogger(logger))}
}

// Resolve returns the landing route for the authenticated member based on
// their role priority. Members without a dashboard role are sent to login.
func (h *DashboardHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	route := roster.DashboardForUser(principal.Roster())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dashboardResponse{Route: string(route)})
}

type dashboardResponse struct {
	Route string `json:"route"`
}
