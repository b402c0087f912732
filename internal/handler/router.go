// Package handler exposes the account API over HTTP with chi.
package handler

import (
	"net/http"
	"time"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/infra/observability"
	"github.com/bank-microservices/account-service/internal/port"
	"github.com/bank-microservices/account-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.AccountService, directory port.CustomerDirectory, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc, directory, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/v1/metrics/service", serviceMetricsHandler(metrics))

	// --- Accounts API ---
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", createAccountHandler(svc, logger))
		r.Get("/", listAccountsHandler(svc, logger))

		// Privileged creation flows; static segments win over {accountId}.
		r.Post("/vip", createVIPAccountHandler(svc, logger))
		r.Post("/pyme", createPymeAccountHandler(svc, logger))

		r.Get("/{accountId}", getAccountHandler(svc, logger))
		r.Put("/{accountId}", updateAccountHandler(svc, logger))
		r.Delete("/{accountId}", deleteAccountHandler(svc, logger))
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(svc *service.AccountService, directory port.CustomerDirectory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		var storeHealth, customerHealth domain.ServiceHealth

		// Probe both dependencies in parallel; probes never fail the group.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			start := time.Now()
			_, err := svc.ListAccounts(gctx)
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			storeHealth = domain.ServiceHealth{
				Name: "account-store", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			}
			return nil
		})
		g.Go(func() error {
			start := time.Now()
			_, err := directory.Exists(gctx, "health-check")
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			customerHealth = domain.ServiceHealth{
				Name: "customer-service", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			}
			return nil
		})
		g.Wait()

		services := []domain.ServiceHealth{
			{Name: "account-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
			storeHealth,
			customerHealth,
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func serviceMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetServiceSnapshot())
	}
}
