package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savegress/budgetwatch/internal/alerts"
	"github.com/savegress/budgetwatch/internal/api"
	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/internal/config"
	"github.com/savegress/budgetwatch/internal/ledger"
	"github.com/savegress/budgetwatch/internal/storage"
)

func main() {
	log.Println("Starting budgetwatch...")

	cfg := loadConfig()

	// In-memory ledger backs the CRUD surface; when a database is
	// configured, the evaluation pipeline reads from the web app's
	// relational store instead.
	eng := ledger.NewEngine()

	var (
		txSource     budget.TransactionSource = eng
		budgetSource alerts.BudgetSource      = eng
		prefSource   alerts.PreferenceSource  = eng
	)
	if cfg.Database.Enabled {
		db, err := storage.New(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		repo := storage.NewRepository(db)
		txSource = repo
		budgetSource = repo
		prefSource = repo
	}

	calc := budget.NewCalculator(txSource)

	store, closeStore, err := newAlertStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize alert store: %v", err)
	}
	defer closeStore()

	notifier := alerts.NewNotifier(alerts.NewEvaluator(budgetSource, prefSource, calc), store)

	server := api.NewServer(cfg, eng, calc, notifier)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("budgetwatch API listening on port %d", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down budgetwatch...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("budgetwatch stopped")
}

func newAlertStore(cfg *config.Config) (alerts.Store, func(), error) {
	if cfg.Alerts.Store == "redis" {
		rs, err := alerts.NewRedisStore(cfg.Redis.URL, cfg.Alerts.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	}
	return alerts.NewMemoryStore(), func() {}, nil
}

func loadConfig() *config.Config {
	configPath := os.Getenv("BUDGETWATCH_CONFIG")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Failed to load config from %s: %v, using defaults", configPath, err)
			return config.LoadFromEnv()
		}
		return cfg
	}
	return config.LoadFromEnv()
}
