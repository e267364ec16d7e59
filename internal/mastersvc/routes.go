package mastersvc

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ZigmaSoftware/erp-final-backend/internal/httpx"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
)

// NewRouter assembles the master service router. The docs listing is
// public (the gateway forwards it without a token); everything else runs
// behind the trust resolver.
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/api/docs/", docsHandler)

	r.Group(func(protected chi.Router) {
		protected.Use(resolver.Middleware())
		h.Mount(protected)
	})

	return r
}

// docsHandler lists the catalog resources and their endpoints.
func docsHandler(w http.ResponseWriter, _ *http.Request) {
	type endpoint struct {
		Resource string   `json:"resource"`
		Path     string   `json:"path"`
		Methods  []string `json:"methods"`
	}
	endpoints := make([]endpoint, 0, len(Resources))
	for _, res := range Resources {
		endpoints = append(endpoints, endpoint{
			Resource: res.Singular,
			Path:     "/" + res.Name + "/",
			Methods:  []string{"GET", "POST", "PUT", "DELETE"},
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"service":   "master-service",
		"resources": endpoints,
	})
}
