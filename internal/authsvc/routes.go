package authsvc

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
)

// NewRouter assembles the auth service router. The login and refresh
// endpoints are public; the account endpoints sit behind the trust
// resolver so both gateway-asserted and direct-bearer callers reach them.
func NewRouter(cfg *Config, h *Handler, resolver *auth.Resolver, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/login/", h.Login)
	r.Post("/refresh/", h.Refresh)

	r.Group(func(protected chi.Router) {
		protected.Use(resolver.Middleware())
		protected.Get("/users/", h.ListUsers)
		protected.Get("/users/me/", h.Me)
		protected.Get("/roles/", h.ListRoles)
	})

	return r
}
