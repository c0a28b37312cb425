package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kazwonder/tourbooking/config"
	"github.com/kazwonder/tourbooking/internal/catalog"
	"github.com/kazwonder/tourbooking/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	toursFile := flag.String("file", cfg.Catalog.ToursFile, "path to tours catalog JSON")
	flag.Parse()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	loader := catalog.NewLoader(repository.NewTourRepository(pool), repository.NewReviewRepository(pool))
	if err := loader.LoadFile(ctx, *toursFile); err != nil {
		log.Fatalf("import catalog: %v", err)
	}
	log.Println("catalog import finished")
}
