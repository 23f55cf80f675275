package main

import (
	"context"
	"flag"
	"log"

	"ielts-prep/database/migrations"
	"ielts-prep/internal/config"
	"ielts-prep/internal/database"
	"ielts-prep/internal/logger"

	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "revert the most recent migration instead of applying pending ones")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB, migrations.FS, ".")
	if err != nil {
		l.Fatal("Failed to load migrations", zap.Error(err))
	}
	defer migrator.Close()

	if *down {
		reverted, err := migrator.Down(ctx)
		if err != nil {
			l.Fatal("Failed to revert migration", zap.Error(err))
		}
		l.Info("Migration down finished", zap.Bool("reverted", reverted))
		return
	}

	applied, err := migrator.Up(ctx)
	if err != nil {
		l.Fatal("Failed to run migrations", zap.Int("applied", applied), zap.Error(err))
	}
	l.Info("Migrations up to date", zap.Int("applied", applied))
}
