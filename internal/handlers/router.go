package handlers

import (
	"net/http"

	"tokenmine/internal/config"
	"tokenmine/internal/db"
	"tokenmine/internal/economy"
	"tokenmine/internal/middleware"
	"tokenmine/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	users     UserStore
	habits    HabitStore
	catalog   CatalogStore
	activity  ActivityStore
	mineLogs  MineLogStore
	stats     StatsStore
	ledger    TokenLedger
	mining    MiningService
	market    MarketService
	inventory InventoryService
	engine    *economy.Engine
	clock     *economy.OffsetClock
	hub       *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, habits HabitStore, catalog CatalogStore, activity ActivityStore, mineLogs MineLogStore, stats StatsStore, ledger TokenLedger, mining MiningService, market MarketService, inventory InventoryService, engine *economy.Engine, clock *economy.OffsetClock, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		users:     users,
		habits:    habits,
		catalog:   catalog,
		activity:  activity,
		mineLogs:  mineLogs,
		stats:     stats,
		ledger:    ledger,
		mining:    mining,
		market:    market,
		inventory: inventory,
		engine:    engine,
		clock:     clock,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/habits", h.ListHabits)
		r.Post("/mine", h.Mine)
		r.Get("/mine/logs", h.ListMineEvents)
		r.Get("/market/items", h.ListCatalog)
		r.Post("/market/purchase", h.Purchase)
		r.Get("/inventory", h.ListInventory)
		r.Post("/inventory/{id}/activate", h.ActivateItem)
		r.Post("/inventory/{id}/pause", h.PauseItem)
		r.Post("/inventory/{id}/resume", h.ResumeItem)
		r.Post("/inventory/{id}/stop", h.StopItem)
		r.Post("/inventory/{id}/consume", h.ConsumeItem)
		r.Get("/portfolio", h.Portfolio)
		r.Get("/stats/daily", h.DailyStats)
		r.Get("/stats", h.Stats)
		r.Get("/logs/{kind}", h.ListActivity)
		r.Get("/purification", h.PurificationStatus)
	})
	if !h.cfg.IsProduction() {
		router.Route("/debug/purification", func(r chi.Router) {
			r.Use(middleware.Auth(h.cfg.JWTSecret))
			r.Post("/offset", h.SetPurificationOffset)
			r.Post("/trigger", h.TriggerPurification)
		})
	}
	router.Get("/ws/portfolio", h.WSPortfolio)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
