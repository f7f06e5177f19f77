package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type Router struct {
	Services       *ServiceHandler
	Advertisements *AdvertisingHandler
	Leads          *LeadHandler
	Contracts      *ContractHandler
	Customers      *CustomerHandler
	Statistics     *StatisticsHandler
	Health         *HealthHandler

	Permissions *middleware.Permissions
	CORSOrigins []string
	// TrustProxy rewrites RemoteAddr from forwarding headers.
	TrustProxy bool
}

// Handler mounts every route behind its permission. /health and /metrics
// are open.
func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if rt.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.RoleHeader},
	}))
	r.Use(middleware.Metrics)

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	need := rt.Permissions.Require

	r.Route("/services", func(r chi.Router) {
		h := rt.Services
		r.With(need(entity.PermViewService)).Get("/", h.List)
		r.With(need(entity.PermAddService)).Post("/", h.Create)
		r.With(need(entity.PermViewService)).Get("/{id}", h.Get)
		r.With(need(entity.PermChangeService)).Put("/{id}", h.Update)
		r.With(need(entity.PermDeleteService)).Delete("/{id}", h.Delete)
	})

	r.Route("/advertisements", func(r chi.Router) {
		h := rt.Advertisements
		r.With(need(entity.PermViewAdvertising)).Get("/", h.List)
		r.With(need(entity.PermAddAdvertising)).Post("/", h.Create)
		r.With(need(entity.PermViewAdvertising)).Get("/{id}", h.Get)
		r.With(need(entity.PermChangeAdvertising)).Put("/{id}", h.Update)
		r.With(need(entity.PermDeleteAdvertising)).Delete("/{id}", h.Delete)
		r.With(need(entity.PermViewAdvertising)).Get("/{id}/statistics", h.Statistics)
	})

	r.Route("/leads", func(r chi.Router) {
		h := rt.Leads
		r.With(need(entity.PermViewLead)).Get("/", h.List)
		r.With(need(entity.PermAddLead)).Post("/", h.Create)
		r.With(need(entity.PermViewLead)).Get("/{id}", h.Get)
		r.With(need(entity.PermChangeLead)).Put("/{id}", h.Update)
		r.With(need(entity.PermDeleteLead)).Delete("/{id}", h.Delete)
		r.With(need(entity.PermCreateCustomerFromLead)).Post("/{id}/convert", rt.Customers.Convert)
	})

	r.Route("/contracts", func(r chi.Router) {
		h := rt.Contracts
		r.With(need(entity.PermViewContract)).Get("/", h.List)
		r.With(need(entity.PermAddContract)).Post("/", h.Create)
		r.With(need(entity.PermViewContract)).Get("/{id}", h.Get)
		r.With(need(entity.PermChangeContract)).Put("/{id}", h.Update)
		r.With(need(entity.PermDeleteContract)).Delete("/{id}", h.Delete)
		r.With(need(entity.PermViewContract)).Get("/{id}/document", h.Document)
	})

	r.Route("/customers", func(r chi.Router) {
		h := rt.Customers
		r.With(need(entity.PermViewCustomer)).Get("/", h.List)
		r.With(need(entity.PermAddCustomer)).Post("/", h.Create)
		r.With(need(entity.PermViewCustomer)).Get("/{id}", h.Get)
		r.With(need(entity.PermChangeCustomer)).Put("/{id}", h.Update)
		r.With(need(entity.PermDeleteCustomer)).Delete("/{id}", h.Delete)
	})

	r.Route("/statistics", func(r chi.Router) {
		r.Use(need(entity.PermViewStatistics))
		r.Get("/ads", rt.Statistics.Ads)
		r.Get("/total", rt.Statistics.Total)
	})

	return r
}
