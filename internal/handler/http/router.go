package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/handler/http/middleware"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/jwt"
)

type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	Registry       *prometheus.Registry

	// HealthCheck pings the backing store for /healthz.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(
	JWTService jwt.Service,
	cfg RouterConfig,
	authHandler AuthHandler,
	timeclockHandler TimeclockHandler,
	holidayHandler HolidayHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.HealthCheck(ctx); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok\n"))
	})

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
		})

		// Punch terminal surface: identity is the secret code, no token.
		r.Route("/punch", func(r chi.Router) {
			r.Post("/", timeclockHandler.SubmitAction)
			r.Route("/remediate", func(r chi.Router) {
				r.Post("/forgotten", timeclockHandler.RemediateForgotten)
				r.Post("/long-break", timeclockHandler.RemediateLongBreak)
				r.Post("/long-work", timeclockHandler.RemediateLongWork)
			})
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Post("/", holidayHandler.Submit)
			r.Get("/mine", holidayHandler.ListMine)
		})

		// Admin dashboard, requires a token
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.AdminOnly)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/reports/totals", timeclockHandler.RangeTotals)
				r.Get("/users/{userID}/state", timeclockHandler.UserState)

				r.Route("/holidays", func(r chi.Router) {
					r.Get("/", holidayHandler.List)
					r.Post("/{requestID}/approve", holidayHandler.Approve)
					r.Post("/{requestID}/reject", holidayHandler.Reject)
				})
			})
		})
	})
	return r
}
