package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	mw "stellar/internal/middleware"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Records     *RecordsHandler
	Planet      *PlanetHandler
	AuthMW      *mw.AuthMiddleware
	Logger      *zap.Logger
	CORSOrigins []string
}

// NewRouter mounts the API under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", cfg.Auth.Register)
			a.Post("/verify-email", cfg.Auth.VerifyEmail)
			a.Post("/login", cfg.Auth.Login)
			a.Post("/refresh", cfg.Auth.Refresh)
			a.Post("/resend-verification", cfg.Auth.ResendVerification)
			a.With(cfg.AuthMW.RequireAuth).Get("/me", cfg.Auth.Me)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(cfg.AuthMW.RequireAuth)
			pr.Use(mw.RequireVerified)

			pr.Route("/records", func(rr chi.Router) {
				rr.Post("/", cfg.Records.Create)
				rr.Get("/", cfg.Records.List)
				rr.Get("/history", cfg.Records.History)
				rr.Post("/transcribe", cfg.Records.Transcribe)
				rr.Get("/{id}", cfg.Records.Get)
				rr.Delete("/{id}", cfg.Records.Delete)
			})

			pr.Route("/planet", func(p chi.Router) {
				p.Get("/state", cfg.Planet.State)
				p.Get("/history", cfg.Planet.History)
				p.Get("/stats", cfg.Planet.Stats)
			})
		})
	})
	return r
}
