package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/auction"
	"github.com/DoyleJ11/cricket-auction-backend/internal/broadcast"
	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/records"
	"github.com/DoyleJ11/cricket-auction-backend/internal/ws"
)

type Deps struct {
	Auctions *auction.Service
	Records  *records.Service
	Poller   *broadcast.Poller
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil disables /metrics
	Log      *zap.Logger
	// Origins are the host patterns allowed to open cross-origin WebSockets.
	Origins []string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/api/auction/sse", AuctionSSE(d.Poller, d.Metrics, d.Log))
	r.Get("/ws/auction", ws.Handler(d.Poller, d.Metrics, d.Log, d.Origins))

	// Admin routes
	r.Route("/api/auctions", func(r chi.Router) {
		r.Post("/", CreateAuction(d.Auctions))
		r.Get("/", ListAuctions(d.Auctions))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetAuction(d.Auctions))
			r.Patch("/", UpdateAuction(d.Auctions))
			r.Delete("/", DeleteAuction(d.Auctions))
			r.Post("/status", SetAuctionStatus(d.Auctions))
			r.Post("/group", SelectGroup(d.Auctions))
			r.Post("/player", SelectPlayer(d.Auctions))
			r.Post("/clear-player", ClearPlayer(d.Auctions))
			r.Post("/clear-group", ClearGroup(d.Auctions))
		})
	})

	r.Route("/api/tournaments", func(r chi.Router) {
		r.Post("/", CreateTournament(d.Records))
		r.Get("/", ListTournaments(d.Records))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetTournament(d.Records))
			r.Put("/", UpdateTournament(d.Records))
			r.Delete("/", DeleteTournament(d.Records))
			r.Get("/teams", ListTeams(d.Records))
			r.Post("/teams", CreateTeam(d.Records))
			r.Get("/players", ListPlayers(d.Records))
			r.Post("/players", CreatePlayer(d.Records))
		})
	})

	r.Route("/api/teams/{id}", func(r chi.Router) {
		r.Get("/", GetTeam(d.Records))
		r.Put("/", UpdateTeam(d.Records))
		r.Delete("/", DeleteTeam(d.Records))
		r.Get("/players", ListTeamPlayers(d.Records))
	})

	r.Route("/api/players/{id}", func(r chi.Router) {
		r.Get("/", GetPlayer(d.Records))
		r.Put("/", UpdatePlayer(d.Records))
		r.Delete("/", DeletePlayer(d.Records))
	})
	return r
}
