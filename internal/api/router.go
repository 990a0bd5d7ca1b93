package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmagtibay/paluwagan/internal/middleware"
	"github.com/rmagtibay/paluwagan/internal/service"
)

// Handler bundles the engine services behind the REST surface.
type Handler struct {
	clients       *service.ClientService
	groups        *service.GroupService
	roster        *service.RosterService
	cycles        *service.CycleService
	contributions *service.ContributionService
	payouts       *service.PayoutService
	dashboard     *service.DashboardService
}

// NewHandler creates a Handler over the given services.
func NewHandler(
	clients *service.ClientService,
	groups *service.GroupService,
	roster *service.RosterService,
	cycles *service.CycleService,
	contributions *service.ContributionService,
	payouts *service.PayoutService,
	dashboard *service.DashboardService,
) *Handler {
	return &Handler{
		clients:       clients,
		groups:        groups,
		roster:        roster,
		cycles:        cycles,
		contributions: contributions,
		payouts:       payouts,
		dashboard:     dashboard,
	}
}

// Router builds the chi router with the full middleware chain and every API
// route.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Post("/", h.createClient)
			r.Get("/{clientID}", h.getClient)
			r.Put("/{clientID}", h.updateClient)
			r.Delete("/{clientID}", h.deleteClient)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.listGroups)
			r.Post("/", h.createGroup)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", h.getGroup)
				r.Put("/", h.updateGroup)
				r.Delete("/", h.deleteGroup)
				r.Post("/activate", h.activateGroup)
				r.Post("/terminate", h.terminateGroup)
				r.Get("/terminations", h.listTerminations)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", h.listMembers)
					r.Post("/", h.addMember)
					r.Get("/{memberID}", h.getMember)
					r.Delete("/{memberID}", h.removeMember)
					r.Put("/{memberID}/position", h.changePosition)
				})

				r.Route("/cycles", func(r chi.Router) {
					r.Get("/", h.listCycles)
					r.Post("/", h.createCycle)

					r.Route("/{cycleID}", func(r chi.Router) {
						r.Get("/", h.getCycle)
						r.Put("/", h.updateCycle)
						r.Delete("/", h.deleteCycle)

						r.Route("/contributions", func(r chi.Router) {
							r.Get("/", h.listCycleContributions)
							r.Post("/", h.recordContribution)
							r.Get("/{contributionID}", h.getContribution)
							r.Put("/{contributionID}", h.updateContribution)
							r.Delete("/{contributionID}", h.deleteContribution)
						})

						r.Route("/payouts", func(r chi.Router) {
							r.Get("/", h.listCyclePayouts)
							r.Post("/", h.schedulePayout)
							r.Get("/{payoutID}", h.getPayout)
							r.Put("/{payoutID}", h.updatePayout)
							r.Delete("/{payoutID}", h.deletePayout)
						})
					})
				})
			})
		})

		r.Get("/contributions", h.listAllContributions)
		r.Get("/payouts", h.listAllPayouts)
		r.Get("/dashboard", h.getDashboard)
	})

	return r
}
