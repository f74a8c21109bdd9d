package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/config"
	"shipquotes-service/internal/infrastructure/httpx"
	"shipquotes-service/internal/infrastructure/logx"
	"shipquotes-service/internal/infrastructure/pg"
	"shipquotes-service/internal/infrastructure/pricer"
	redisstore "shipquotes-service/internal/infrastructure/redis"
	"shipquotes-service/internal/infrastructure/worker"
)

type Repos struct {
	DB     *pg.DB
	Quotes application.QuoteStore
	Rates  *pg.RateRepo
}

type Services struct {
	Idem application.IdempotencyStore
}

// BuildRepos builds repositories based on STORAGE config ("pg" expected).
func BuildRepos(ctx context.Context, cfg config.Config) (Repos, func(), error) {
	log := logx.L()

	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Repos{}, func() {}, fmt.Errorf("DATABASE_URL is required for STORAGE=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Repos{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Repos{}, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Repos{
			DB:     db,
			Quotes: pg.NewQuoteStore(db),
			Rates:  pg.NewRateRepo(db),
		}, cleanup, nil
	default:
		return Repos{}, func() {}, fmt.Errorf("unsupported STORAGE=%q; set STORAGE=pg", cfg.Storage)
	}
}

// BuildRedis builds the idempotency store if enabled (falls back to Noop).
func BuildRedis(cfg config.Config) (Services, func(), error) {
	if cfg.RedisAddr == "" {
		return Services{Idem: application.NoopIdempotency{}}, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := redisstore.New(rdb, cfg.RedisTTL)
	cleanup := func() { _ = rdb.Close() }
	return Services{Idem: store}, cleanup, nil
}

// BuildPricer selects the pricing backend from config.
func BuildPricer(cfg config.Config, repos Repos) (application.RatePricer, error) {
	configs := pricer.StaticConfigs{Currency: cfg.Currency}
	switch cfg.Pricer {
	case "remote":
		if cfg.RateAPIBase == "" {
			return nil, fmt.Errorf("RATE_API_BASE is required for PRICER=remote")
		}
		return &pricer.Remote{
			BaseURL: cfg.RateAPIBase,
			APIKey:  cfg.RateAPIKey,
			Client:  &httpx.Client{Token: cfg.RateAPIKey},
			Configs: configs,
		}, nil
	case "table", "":
		return &pricer.Table{Rates: repos.Rates, Configs: configs}, nil
	default:
		return nil, fmt.Errorf("unsupported PRICER=%q", cfg.Pricer)
	}
}

// BuildService assembles the quote service with the configured expiry window.
func BuildService(cfg config.Config, repos Repos, rp application.RatePricer) *application.QuoteService {
	ttl := time.Duration(cfg.QuoteTTLDays) * 24 * time.Hour
	return application.NewQuoteService(repos.Quotes, repos.Rates, rp, application.WithQuoteTTL(ttl))
}

// BuildPurgeWorker constructs the expiry sweeper.
func BuildPurgeWorker(cfg config.Config, svc *application.QuoteService) application.Worker {
	return &worker.PurgeWorker{
		Quotes:    svc,
		PollEvery: cfg.PurgePoll,
		Log:       logx.L(),
	}
}
