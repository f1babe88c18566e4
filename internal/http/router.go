package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	mw "github.com/MrJamesThe3rd/easysplit/internal/http/middleware"
	"github.com/MrJamesThe3rd/easysplit/internal/http/menu"
	"github.com/MrJamesThe3rd/easysplit/internal/http/respond"
	"github.com/MrJamesThe3rd/easysplit/internal/http/split"
	"github.com/MrJamesThe3rd/easysplit/internal/metrics"
)

type Options struct {
	AllowedOrigins []string
}

func New(
	opts Options,
	menusV1 *menu.Handler,
	splitsV1 *split.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/menus", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
			menusV1.Routes(r)
		})

		r.Route("/splits", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			splitsV1.Routes(r)
		})
	})

	return router
}

// LookupLimiter bounds how many code lookups one client address may make per window.
func LookupLimiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			respond.Error(w, http.StatusTooManyRequests, respond.CodeRateLimited, "too many requests, try again later")
		}),
	)
}
