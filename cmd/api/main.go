package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"makan-match/internal/catalog"
	"makan-match/internal/config"
	"makan-match/internal/db"
	apihttp "makan-match/internal/http"
	"makan-match/internal/repository"
	"makan-match/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		logger.Fatal("catalog load", zap.String("source", cfg.CatalogSource), zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("source", cfg.CatalogSource),
		zap.Int("dishes", len(cat.Dishes())),
		zap.Int("questions", len(cat.Questions())),
	)

	resolver, err := service.NewResolver(cfg.ResultStrategy)
	if err != nil {
		logger.Fatal("result strategy", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	quizSvc := service.NewQuizService(cat, resolver, service.NewQuizMetrics(registry), logger)

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	limits := service.RateLimits{
		Window: time.Duration(cfg.SubmitRateWindowSeconds) * time.Second,
		Max: map[service.RateAction]int{
			service.RateActionSubmit:  cfg.SubmitRateMax,
			service.RateActionSession: cfg.SessionRateMax,
		},
	}
	var (
		store       service.ResponseStore
		limiter     service.QuizRateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			store = service.NewRedisResponseStore(redisClient, sessionTTL)
			if limits.Enabled() {
				limiter = service.NewRedisQuizRateLimiter(redisClient, limits)
			}
		}
		cancel()
	}
	if store == nil {
		store = service.NewMemoryResponseStore(sessionTTL)
	}
	if limiter == nil && limits.Enabled() {
		limiter = service.NewMemoryQuizRateLimiter(limits)
	}

	quizHandler := apihttp.NewQuizHandler(logger, quizSvc, limiter)
	sessionHandler := apihttp.NewSessionHandler(logger, quizSvc, store, limiter)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	router := apihttp.NewRouter(logger, quizHandler, sessionHandler, metricsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("strategy", quizSvc.Strategy()),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch cfg.CatalogSource {
	case config.CatalogSourceFile:
		return catalog.LoadFile(cfg.CatalogPath)
	case config.CatalogSourcePostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		// El catalogo se lee una sola vez; el pool no se reutiliza.
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		return repository.NewPgCatalogRepository(pool).LoadCatalog(ctx)
	default:
		return catalog.LoadDefault()
	}
}
