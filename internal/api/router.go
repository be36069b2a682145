package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solar-relay/internal/api/handler"
	apimw "solar-relay/internal/api/middleware"
	"solar-relay/internal/domain/ports"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Relay   *handler.RelayHandler
	Webhook *handler.WebhookHandler
	View    *handler.ViewHandler
	Health  *handler.HealthHandler
}

// NewRouter wires the chi router, attaches middleware, and registers every route.
func NewRouter(h Handlers, reg prometheus.Gatherer, logger ports.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(1 << 20))
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	r.Get("/", h.View.Index)
	r.Get("/health", h.Health.Health)
	r.Get("/send-data", h.Relay.SendData)
	r.Post("/webhook", h.Webhook.Receive)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
