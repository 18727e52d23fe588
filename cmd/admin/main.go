package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/repository"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/config"
	"github.com/noah-isme/tutor-desk-api/pkg/database"
	"github.com/noah-isme/tutor-desk-api/pkg/logger"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, logr)
	if err != nil {
		logr.Fatal("failed to init migrator", zap.Error(err))
	}

	sessions := repository.NewSessionRepository(db)
	cli := commandLine{
		migrator: migrator,
		users:    service.NewUserService(repository.NewUserRepository(db), sessions, validation.New(), logr),
		sessions: sessions,
		logger:   logr,
		now:      time.Now,
		out:      os.Stdout,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logr.Error("admin command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
