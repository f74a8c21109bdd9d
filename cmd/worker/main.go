package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shipquotes-service/internal/bootstrap"
	"shipquotes-service/internal/config"
	"shipquotes-service/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		log.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	ratePricer, err := bootstrap.BuildPricer(cfg, repos)
	if err != nil {
		log.Fatal("bootstrap pricer", zap.Error(err))
	}
	svc := bootstrap.BuildService(cfg, repos, ratePricer)
	w := bootstrap.BuildPurgeWorker(cfg, svc)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	w.Start(ctx)
}
