package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/observability"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Module is a domain handler that registers its own routes.
type Module interface {
	MountRoutes(r chi.Router)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	Modules        []Module
	Filters        *listing.FilterHandler
	JobHandler     Module
}

// NewRouter constructs the chi.Router of the API.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mwConfig := MiddlewareConfig{
		Logger:         logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(mwConfig) {
		r.Use(mw)
	}
	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range SessionStack(mwConfig) {
			r.Use(mw)
		}

		ui := uiHandler{csrf: params.CSRFManager, secure: params.Config.IsProduction(), logger: logger}
		r.Get("/api/session", ui.session)
		r.Get("/api/ui/sidebar", ui.sidebar)
		r.Post("/api/ui/sidebar", ui.setSidebar)
		if params.Filters != nil {
			r.Method(http.MethodPost, "/api/filters", params.Filters)
		}
		for _, m := range params.Modules {
			if m != nil {
				m.MountRoutes(r)
			}
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}

type uiHandler struct {
	csrf   *shared.CSRFManager
	secure bool
	logger *slog.Logger
}

type sessionResponse struct {
	CSRFToken   string `json:"csrf_token"`
	UserID      int64  `json:"user_id,omitempty"`
	SidebarOpen bool   `json:"sidebar_open"`
}

func (h uiHandler) session(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	out := sessionResponse{SidebarOpen: shared.SidebarOpen(r)}
	if sess != nil {
		out.UserID = sess.UserID()
		if h.csrf != nil {
			token, err := h.csrf.EnsureToken(sess)
			if err != nil {
				httpx.Fail(w, h.logger, "issue csrf token", err)
				return
			}
			out.CSRFToken = token
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type sidebarState struct {
	Open bool `json:"open"`
}

func (h uiHandler) sidebar(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, sidebarState{Open: shared.SidebarOpen(r)})
}

func (h uiHandler) setSidebar(w http.ResponseWriter, r *http.Request) {
	var in sidebarState
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	shared.SetSidebarOpen(w, in.Open, h.secure)
	httpx.JSON(w, http.StatusOK, in)
}
