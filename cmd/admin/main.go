package main

import (
	"alcyxob/trainer-app/internal/config"
	"alcyxob/trainer-app/internal/database"
	"alcyxob/trainer-app/internal/logger"
	"alcyxob/trainer-app/internal/service"
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	zl, err := logger.New(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	zap.ReplaceGlobals(zl)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	backend, err := database.Open(ctx, cfg.Database, false)
	if err != nil {
		zl.Fatal("could not open database", zap.Error(err))
	}

	cli := commandLine{
		out:        os.Stdout,
		migrate:    backend.Migrate,
		authSvc:    service.NewAuthService(backend.Repos.Trainers, cfg.JWT.Secret, cfg.JWT.Expiration),
		trainerSvc: service.NewTrainerService(backend.Repos.Trainers, backend.Repos.Plans, nil, nil, 0),
	}
	err = cli.run(ctx, os.Args)
	if cerr := backend.Close(); cerr != nil {
		zl.Warn("failed to close database", zap.Error(cerr))
	}
	if err != nil {
		if !errors.Is(err, errHelp) {
			zl.Error("admin command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
