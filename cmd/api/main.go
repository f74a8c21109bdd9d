package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shipquotes-service/internal/bootstrap"
	"shipquotes-service/internal/config"
	infraconfig "shipquotes-service/internal/infrastructure/config"
	httpserver "shipquotes-service/internal/infrastructure/http"
	"shipquotes-service/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	services, closeRedis, err := bootstrap.BuildRedis(cfg)
	if err != nil {
		logger.Fatal("bootstrap redis", zap.Error(err))
	}
	defer closeRedis()

	ratePricer, err := bootstrap.BuildPricer(cfg, repos)
	if err != nil {
		logger.Fatal("bootstrap pricer", zap.Error(err))
	}

	svc := bootstrap.BuildService(cfg, repos, ratePricer)
	srv := httpserver.NewServer(svc, repos.Rates, services.Idem)
	srv.SetReadyCheck(repos.DB.Ping)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
