// Package main implements the exercise catalog seeder. It reads a JSON
// catalog file and inserts every exercise into the database, so a fresh
// deployment has something to serve.
//
// Usage:
//
//	seed -file catalog.json
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/praxislab/praxis-api/internal/config"
	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/platform/logger"
	"github.com/praxislab/praxis-api/internal/platform/postgres"
)

// catalogEntry is one exercise in the seed file.
type catalogEntry struct {
	Type          string          `json:"type"`
	Question      string          `json:"question"`
	Data          json.RawMessage `json:"data,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Category      string          `json:"category"`
	Difficulty    int             `json:"difficulty"`
}

func main() {
	file := flag.String("file", "catalog.json", "path to the JSON exercise catalog")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func run(file string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	entries, err := readCatalog(file)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	store := postgres.NewPostgresExerciseStore(db, appLogger)

	for i, entry := range entries {
		ex := &domain.Exercise{
			Type:          domain.ExerciseType(entry.Type),
			Question:      entry.Question,
			Data:          entry.Data,
			CorrectAnswer: entry.CorrectAnswer,
			Category:      entry.Category,
			Difficulty:    entry.Difficulty,
		}

		if err := store.Create(ctx, ex); err != nil {
			return fmt.Errorf("failed to create exercise %d (%q): %w", i, entry.Question, err)
		}

		appLogger.Info("exercise seeded",
			"id", ex.ID,
			"category", ex.Category,
			"type", string(ex.Type),
			"difficulty", ex.Difficulty)
	}

	appLogger.Info("catalog seeded", "exercises", len(entries))
	return nil
}

// readCatalog parses and sanity-checks the seed file.
func readCatalog(file string) ([]catalogEntry, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no exercises", file)
	}

	return entries, nil
}
