package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokenmine/internal/config"
	"tokenmine/internal/db"
	"tokenmine/internal/economy"
	"tokenmine/internal/handlers"
	"tokenmine/internal/ledger"
	"tokenmine/internal/services"
	"tokenmine/internal/store"
	"tokenmine/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	balances := store.NewBalanceStore(database)
	habits := store.NewHabitStore(database)
	catalog := store.NewCatalogStore(database)
	inventory := store.NewInventoryStore(database)
	mineLogs := store.NewMineLogStore(database)
	activity := store.NewActivityStore(database)
	stats := store.NewStatsStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	tokens := ledger.New(balances)
	clock := &economy.OffsetClock{}
	if cfg.PurifyDebugOffset != 0 && !cfg.IsProduction() {
		clock.SetOffset(cfg.PurifyDebugOffset)
	}
	engine := economy.NewEngine(clock, tokens, balances, activity, hub, cfg.PurifyPoll, cfg.PurifySettle)

	mining := services.NewMiningService(habits, mineLogs, tokens, stats, activity, hub, cfg.MineCommitDelay)
	market := services.NewMarketService(catalog, tokens, inventory, activity, stats, hub)
	items := services.NewInventoryService(inventory)

	handler := handlers.New(txRunner, cfg, users, habits, catalog, activity, mineLogs, stats, tokens, mining, market, items, engine, clock, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	engineCtx, stopEngine := context.WithCancel(context.Background())
	go engine.Run(engineCtx)

	go func() {
		log.Printf("tokenmine API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	stopEngine()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
