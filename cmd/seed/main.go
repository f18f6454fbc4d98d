package main

// Seed a database with demo data (wipes existing rows first):
//   go run ./cmd/seed -documents 100 -seed 7

import (
	"context"
	"flag"
	"log"
	"os"

	"aari-docs/internal/comments"
	"aari-docs/internal/documents"
	"aari-docs/internal/seed"
	"aari-docs/internal/shared/config"
	"aari-docs/internal/shared/storage/db"
	"aari-docs/internal/users"
)

func main() {
	defaults := seed.DefaultOptions()
	userCount := flag.Int("users", defaults.Users, "number of users")
	docCount := flag.Int("documents", defaults.Documents, "number of documents")
	rngSeed := flag.Uint64("seed", defaults.Seed, "random seed")
	keep := flag.Bool("keep", false, "do not wipe existing rows")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	if !*keep {
		if err := seed.Wipe(ctx, sqlDB); err != nil {
			log.Printf("failed to wipe data: %v", err)
			os.Exit(1)
		}
	}

	ds := seed.Generate(seed.Options{Users: *userCount, Documents: *docCount, Seed: *rngSeed})
	repos := seed.Repos{
		Users:     &users.PGRepo{DB: sqlDB},
		Documents: &documents.PGRepo{DB: sqlDB},
		Comments:  &comments.PGRepo{DB: sqlDB},
	}
	if err := seed.Load(ctx, repos, ds); err != nil {
		log.Printf("seed failed: %v", err)
		os.Exit(1)
	}
	log.Printf("seeded %d users, %d documents, %d comments, %d replies",
		len(ds.Users), len(ds.Documents), len(ds.Comments), len(ds.Replies))
}
