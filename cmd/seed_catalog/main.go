package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"makan-match/internal/catalog"
	"makan-match/internal/config"
	"makan-match/internal/db"
	"makan-match/internal/repository"
)

// seed_catalog copia el catalogo embebido (o un YAML) a Postgres para CATALOG_SOURCE=postgres.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	path := flag.String("file", "", "catalog YAML to seed (default: embedded catalog)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	var cat *catalog.Catalog
	if *path != "" {
		cat, err = catalog.LoadFile(*path)
	} else {
		cat, err = catalog.LoadDefault()
	}
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		log.Fatalf("db ping: %v", err)
	}

	repo := repository.NewPgCatalogRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := repo.Seed(ctx, cat); err != nil {
		log.Fatalf("seed: %v", err)
	}

	// Relectura para confirmar que lo guardado pasa la validacion.
	loaded, err := repo.LoadCatalog(ctx)
	if err != nil {
		log.Fatalf("reload: %v", err)
	}
	log.Printf("seeded %d dishes, %d questions, %d classic pairings",
		len(loaded.Dishes()), len(loaded.Questions()), len(loaded.ClassicPairings()))
}
