package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/relinkd/relink/config"
	appmodel "github.com/relinkd/relink/internal/app/model"
	apprepository "github.com/relinkd/relink/internal/app/repository"
	"github.com/relinkd/relink/internal/app/resolver"
	appserver "github.com/relinkd/relink/internal/app/server"
	appservice "github.com/relinkd/relink/internal/app/service"
	httpUtil "github.com/relinkd/relink/internal/http/util"
	"github.com/relinkd/relink/internal/infra/logger"
	infraNATS "github.com/relinkd/relink/internal/infra/nats"
	infraPostgres "github.com/relinkd/relink/internal/infra/postgres"
	infraPrometheus "github.com/relinkd/relink/internal/infra/prometheus"
	infraRedis "github.com/relinkd/relink/internal/infra/redis"
	"go.uber.org/zap"
)

const (
	defaultUnlockTTL     = time.Hour
	defaultFilterRefresh = 30 * time.Second
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	linkRepo := apprepository.NewLinkRepository(gormDB)
	loader := appservice.NewLinkLoader(linkRepo, redisClient, appservice.LinkLoaderConfig{
		LocalCacheSize: cfg.Resolver.LocalCacheSize,
		RecordTTL:      parseDuration(cfg.Resolver.RecordCacheTTL, 0),
	}, log)

	refresher := appservice.NewFilterRefresher(log, loader,
		parseDuration(cfg.Resolver.FilterRefresh, defaultFilterRefresh))
	refresher.Start(ctx)
	defer refresher.Stop()

	visits := appservice.NewVisitPublisher(js)
	if err := visits.EnsureStream(); err != nil {
		log.Fatal("Failed to ensure visit stream", zap.Error(err))
	}

	unlockSecret := []byte(cfg.Resolver.UnlockSecret)
	if len(unlockSecret) == 0 {
		log.Warn("UNLOCK_SECRET is not set; unlock cookies are disabled")
	}
	unlock := httpUtil.NewUnlockSigner(unlockSecret,
		parseDuration(cfg.Resolver.UnlockTTL, defaultUnlockTTL))

	engine := resolver.New(resolver.Deps{
		Loader:    loader,
		Passwords: resolver.BcryptVerifier{},
		Tokens:    unlock,
		Metrics:   infraPrometheus.ResolverMetrics{},
		Logger:    log,
	})

	server := appserver.New(appserver.Dependencies{
		Logger:             log,
		Postgres:           pool,
		Redis:              redisClient,
		Engine:             engine,
		Unlock:             unlock,
		Visits:             visits,
		UnlockRateLimit:    cfg.Resolver.UnlockRateLimit,
		UnlockRateWindow:   parseDuration(cfg.Resolver.UnlockRateWindow, 0),
		PermanentRedirects: cfg.Resolver.RedirectPermanent,
	})

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	log.Info("Starting resolver server", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
