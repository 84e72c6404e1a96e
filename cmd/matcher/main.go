// Package main - точка входа движка подбора напарников PeerStudy.
//
// Философия: "Учиться вместе легче" - движок превращает базу одиночных
// участников в сеть учебных пар, подбирая каждому совместимых напарников
// по предметам, уровню, расписанию и стилю обучения.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: скоринг, ранжирование, рекомендации, расписание - без внешних зависимостей
// - Application: оркестрация запросов и команд (Queries/Commands)
// - Infrastructure: PostgreSQL, Redis, адаптеры внешних сервисов
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/peerstudy-hub/peerstudy-matching/config"
	"github.com/peerstudy-hub/peerstudy-matching/internal/application/command"
	"github.com/peerstudy-hub/peerstudy-matching/internal/application/query"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/matching"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/progress"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/scheduling"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/memory"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/postgres"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/redis"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/service"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/circuitbreaker"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// engine объединяет собранные обработчики движка.
type engine struct {
	FindMatches       *query.FindMatchesHandler
	FindSlots         *query.FindSlotsHandler
	RecommendPartners *query.RecommendPartnersHandler
	ProjectProgress   *query.ProjectProgressHandler
	RecordPartnership *command.RecordPartnershipHandler
	LogStudyHours     *command.LogStudyHoursHandler
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env загружается до чтения окружения; отсутствие файла не ошибка.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting PeerStudy matching engine",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL, опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		participantRepo participant.Repository
		partnershipRepo command.PartnershipWriter
		studyLogRepo    progress.Repository
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		log.Info("database connection established")

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		pgParticipants := postgres.NewParticipantRepository(dbConn)
		participantRepo = pgParticipants
		partnershipRepo = pgParticipants
		studyLogRepo = postgres.NewStudyLogRepository(dbConn)
	} else {
		// Без базы движок работает на репозиториях в памяти.
		log.Warn("DATABASE_URL is empty, using in-memory repositories")
		memParticipants := memory.NewParticipantRepo()
		participantRepo = memParticipants
		partnershipRepo = memParticipants
		studyLogRepo = memory.NewStudyLogRepo()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var sharedMatchCache *redis.MatchCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, shared cache disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureMatchSharedCache, "") {
				sharedMatchCache = redis.NewMatchCache(redisCache, cfg.Engine.SharedCacheTTL)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. АДАПТЕРЫ ВНЕШНИХ СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	var reputationProvider service.ReputationProvider
	if cfg.Reputation.BaseURL != "" {
		reputationProvider = service.NewHTTPReputationProvider(cfg.Reputation.BaseURL, cfg.Reputation.RequestTimeout)
	}

	breaker := circuitbreaker.New(
		"reputation-service",
		circuitbreaker.WithFailureThreshold(cfg.Reputation.BreakerThreshold),
		circuitbreaker.WithTimeout(cfg.Reputation.BreakerTimeout),
		circuitbreaker.WithMaxHalfOpenRequests(cfg.Reputation.BreakerHalfOpenMax),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
	)
	reputationOpts := []service.ReputationAdapterOption{
		service.WithReputationBreaker(breaker),
	}
	if redisCache != nil {
		reputationOpts = append(reputationOpts,
			service.WithReputationSnapshots(redisCache, cfg.Reputation.SnapshotTTL))
	}
	reputationSource := service.NewReputationAdapter(reputationProvider, reputationOpts...)

	var distanceProvider service.DistanceProvider
	if cfg.Geo.BaseURL != "" {
		distanceProvider = service.NewHTTPDistanceProvider(cfg.Geo.BaseURL, cfg.Geo.RequestTimeout)
	}
	distanceResolver := service.NewGeoDistanceAdapter(distanceProvider)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. СБОРКА ДВИЖКА (Domain + Application)
	// ─────────────────────────────────────────────────────────────────────────
	scorerOpts := []matching.ScorerOption{
		matching.WithDistanceResolver(distanceResolver),
	}
	if cfg.Features.IsEnabled(config.FeatureMatchReputation, "") {
		scorerOpts = append(scorerOpts, matching.WithReputationSource(reputationSource))
	}
	scorer, err := matching.NewScorer(scorerOpts...)
	if err != nil {
		return fmt.Errorf("failed to build scorer: %w", err)
	}

	matchCache := memory.NewEvictionCache[string, matching.MatchResultList](
		cfg.Engine.CacheCapacity, cfg.Engine.CacheTTL)
	m := metrics.New()

	var sharedCache query.SharedMatchCache
	var invalidator command.MatchCacheInvalidator
	if sharedMatchCache != nil {
		sharedCache = sharedMatchCache
		invalidator = sharedMatchCache
	}

	eng := &engine{
		FindMatches:       query.NewFindMatchesHandler(participantRepo, scorer, matchCache, sharedCache, m, log),
		FindSlots:         query.NewFindSlotsHandler(participantRepo, scheduling.NewScheduler(), m, log),
		RecommendPartners: query.NewRecommendPartnersHandler(participantRepo, m, log),
		ProjectProgress:   query.NewProjectProgressHandler(studyLogRepo, log),
		RecordPartnership: command.NewRecordPartnershipHandler(participantRepo, partnershipRepo, invalidator, log),
		LogStudyHours:     command.NewLogStudyHoursHandler(studyLogRepo, log),
	}
	_ = eng // обработчики живут, пока процесс обслуживает кеш и метрики

	log.Info("matching engine assembled",
		logger.Int("cache_capacity", cfg.Engine.CacheCapacity),
		logger.Duration("cache_ttl", cfg.Engine.CacheTTL),
		logger.Bool("shared_cache", sharedMatchCache != nil),
		logger.Bool("reputation_provider", reputationProvider != nil),
		logger.Bool("geo_provider", distanceProvider != nil),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ФОНОВАЯ ОЧИСТКА КЕША
	// ─────────────────────────────────────────────────────────────────────────
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runCacheSweeper(sweepCtx, matchCache, m, cfg.Engine.CacheSweepInterval, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. METRICS SERVER (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	var metricsServer *http.Server

	if cfg.Observability.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Observability.MetricsPort),
			Handler: mux,
		}
		go func() {
			log.Info("starting metrics server", logger.String("address", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("PeerStudy matching engine is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	stopSweep()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to stop metrics server gracefully", logger.Err(err))
		}
	}

	// Redis и база данных закроются через defer.
	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts).With(
		logger.Component("matcher"),
	)
}

// runCacheSweeper периодически удаляет просроченные записи из кеша подбора.
func runCacheSweeper(
	ctx context.Context,
	cache *query.MatchCache,
	m *metrics.Metrics,
	interval time.Duration,
	log *logger.Logger,
) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := cache.Sweep(); removed > 0 {
				m.CacheEvictions.Add(float64(removed))
				log.Debug("swept expired match cache entries", logger.Int("removed", removed))
			}
		}
	}
}
