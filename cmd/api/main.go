package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"toxeval/adapters/api"
	"toxeval/adapters/postgres"
	"toxeval/app"
	"toxeval/internal/config"
	"toxeval/internal/health"
	"toxeval/ports"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load(false)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sqlx.DB
	var runs ports.RunRepositoryPort
	if cfg.Database.URL != "" {
		db, err = sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		runs = postgres.NewRunRepository(db)
		if err := runs.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set; running without run persistence")
	}

	service := app.NewEvaluationService().WithConcurrency(cfg.Engine.Concurrency)
	server := api.NewServer(cfg.Server.GinMode, service, runs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg.Server.Port)
	})
	if cfg.Health.Enabled {
		sidecar := health.NewServer(db)
		g.Go(func() error {
			return sidecar.Run(gctx, cfg.Health.Port)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
