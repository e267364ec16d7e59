package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ZigmaSoftware/erp-final-backend/internal/httpx"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
)

// NewRouter assembles the gateway router: standard middleware, CORS, the
// trust middleware guarding everything under /api, and one reverse proxy
// per backend service.
func NewRouter(cfg *Config, verifier TokenVerifier, logger *slog.Logger) (chi.Router, error) {
	if logger == nil {
		logger = slog.Default()
	}

	authProxy, err := NewProxy("/api/auth", cfg.AuthServiceURL, logger)
	if err != nil {
		return nil, err
	}
	masterProxy, err := NewProxy("/api/master", cfg.MasterServiceURL, logger)
	if err != nil {
		return nil, err
	}

	trust := NewTrustMiddleware(verifier, cfg, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(trust.Handler)
		api.Get("/debug/echo/", echoHandler)
		api.Handle("/auth/*", authProxy)
		api.Handle("/master/*", masterProxy)
	})

	return r, nil
}

// echoHandler reflects the identity the trust middleware attached, for
// verifying header propagation during deployment troubleshooting.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"method":   r.Method,
		"path":     r.URL.Path,
		"user_id":  r.Header.Get(auth.HeaderUserID),
		"username": r.Header.Get(auth.HeaderUsername),
		"groups":   auth.SplitGroups(r.Header.Get(auth.HeaderGroups)),
	})
}
