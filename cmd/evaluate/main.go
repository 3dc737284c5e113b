package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"toxeval/adapters/excel"
	"toxeval/adapters/postgres"
	"toxeval/app"
	"toxeval/internal/config"
	"toxeval/ports"
)

func main() {
	_ = godotenv.Load()

	var (
		filePath   = flag.String("file", "", "study measurement file (.xlsx or .csv)")
		asJSON     = flag.Bool("json", false, "print the full evaluation as JSON instead of the report")
		persist    = flag.Bool("persist", false, "save the run to the database (requires DATABASE_URL)")
		concurrent = flag.Int("concurrency", 0, "endpoints evaluated in parallel (default from EVAL_CONCURRENCY)")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*persist)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *concurrent > 0 {
		cfg.Engine.Concurrency = *concurrent
	}

	var reader ports.StudyReaderPort = excel.NewStudyReader(*filePath)
	raw, err := reader.ReadStudy()
	if err != nil {
		log.Fatalf("failed to read study: %v", err)
	}

	ctx := context.Background()
	service := app.NewEvaluationService().WithConcurrency(cfg.Engine.Concurrency)
	evaluation, err := service.EvaluateRaw(ctx, raw)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	if *persist {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		runs := postgres.NewRunRepository(db)
		if err := runs.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		if err := runs.SaveRun(ctx, evaluation); err != nil {
			log.Fatalf("failed to save run: %v", err)
		}
		log.Printf("saved run %s", evaluation.RunID)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(evaluation); err != nil {
			log.Fatalf("failed to encode evaluation: %v", err)
		}
		return
	}

	fmt.Print(app.BuildReport(evaluation))
}
