package handler

import (
	"net/http"

	"github.com/hmoraes/bankist-api/internal/infra/observability"
	"github.com/hmoraes/bankist-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The four UI events of the original app map to login, transfer, loan and
// close; everything under the auth middleware requires a token from the
// live session.
func NewRouter(authSvc *service.AuthService, bankSvc *service.BankService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public: login-submit
		r.Post("/auth/login", loginHandler(authSvc, logger))

		// Metrics snapshot for dashboards
		r.Get("/metrics/bank", bankMetricsHandler(metrics))

		// Everything else requires the live session's token.
		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(authSvc, logger))

			r.Post("/auth/logout", logoutHandler(authSvc, logger))
			r.Get("/session", sessionStatusHandler(bankSvc, logger))

			// Ledger views
			r.Get("/dashboard", dashboardHandler(bankSvc, logger))
			r.Get("/movements", movementsHandler(bankSvc, logger))
			r.Get("/balance", balanceHandler(bankSvc, logger))
			r.Get("/summary", summaryHandler(bankSvc, logger))
			r.Post("/movements/sort", sortToggleHandler(bankSvc, logger))

			// Mutations
			r.Post("/transfers", transferHandler(bankSvc, logger))
			r.Post("/loans", loanHandler(bankSvc, logger))
			r.Delete("/account", closeAccountHandler(bankSvc, logger))
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func bankMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetBankSnapshot())
	}
}
