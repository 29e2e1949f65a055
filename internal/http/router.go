package http

import (
	"net/http"
	"strings"
)

// RouterConfig gathers the handlers and middleware mounted on the API router.
type RouterConfig struct {
	Auth       *AuthHandler
	Members    *MemberHandler
	Duties     *DutyHandler
	Messages   *MessageHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter mounts the API routes. Login is the only route reachable without
// a session; everything else expects RequireSession in the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Members != nil {
		mux.HandleFunc("/members", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Members.List(w, r)
			case http.MethodPost:
				cfg.Members.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/members/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/members/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithPathID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Members.Get(w, r)
			case http.MethodPut:
				cfg.Members.Update(w, r)
			case http.MethodDelete:
				cfg.Members.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Duties != nil {
		mux.HandleFunc("/duties", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Duties.List(w, r)
			case http.MethodPost:
				cfg.Duties.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/duties/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/duties/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithPathID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Duties.Get(w, r)
			case http.MethodPut:
				cfg.Duties.Update(w, r)
			case http.MethodDelete:
				cfg.Duties.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Messages != nil {
		mux.HandleFunc("/templates", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Messages.ListTemplates(w, r)
			case http.MethodPut:
				cfg.Messages.SaveTemplate(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
		mux.HandleFunc("/templates/", func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimPrefix(r.URL.Path, "/templates/")
			if name == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithPathID(r.Context(), name))
			switch r.Method {
			case http.MethodGet:
				cfg.Messages.GetTemplate(w, r)
			case http.MethodDelete:
				cfg.Messages.DeleteTemplate(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/reminders/due", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Messages.DueReminders(w, r)
		})
	}

	if cfg.Dashboard != nil {
		mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Dashboard.Resolve(w, r)
		})
	}

	if cfg.Export != nil {
		mux.HandleFunc("/export/week", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Export.Week(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
