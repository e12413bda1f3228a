package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"autoshop/internal/database"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SeedFile maps a collection name to its documents, kept as loosely shaped
// as the dashboard receives them.
type SeedFile map[string][]map[string]any

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.example.yaml", "path to seed yaml")
		dbPath   = flag.String("db", "./data/autoshop.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var seed SeedFile
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}
	if len(seed) == 0 {
		return fmt.Errorf("no collections in seed")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collections := make([]string, 0, len(seed))
	for name := range seed {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	total := 0
	for _, collection := range collections {
		for i, doc := range seed[collection] {
			id, _ := doc["id"].(string)
			if _, err := db.UpsertDocument(ctx, collection, id, models.RawRecord(doc)); err != nil {
				return fmt.Errorf("%s[%d]: %w", collection, i, err)
			}
			total++
		}
		logger.Info().Str("collection", collection).Int("documents", len(seed[collection])).Msg("imported")
	}

	logger.Info().Int("total", total).Str("db", *dbPath).Msg("seed import finished")
	return nil
}
