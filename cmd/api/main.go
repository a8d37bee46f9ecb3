package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trafficmanagerhub/hub/internal/auth"
	"github.com/trafficmanagerhub/hub/internal/calculation"
	"github.com/trafficmanagerhub/hub/internal/client"
	"github.com/trafficmanagerhub/hub/internal/config"
	"github.com/trafficmanagerhub/hub/internal/dashboard"
	"github.com/trafficmanagerhub/hub/internal/db"
	"github.com/trafficmanagerhub/hub/internal/diagnosis"
	internalhttp "github.com/trafficmanagerhub/hub/internal/http"
	"github.com/trafficmanagerhub/hub/internal/metrics"
	"github.com/trafficmanagerhub/hub/internal/plan"
	"github.com/trafficmanagerhub/hub/internal/repo"
	"github.com/trafficmanagerhub/hub/internal/service"
	"github.com/trafficmanagerhub/hub/internal/task"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if cfg.DBMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	m := metrics.New()

	repository := repo.New(pool)
	clientRepo := client.NewRepository(pool)
	taskRepo := task.NewRepository(pool)
	calcRepo := calculation.NewRepository(pool)
	diagRepo := diagnosis.NewRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(repository, redisClient, jwtManager, cfg.JWTRefreshTTL)

	usage := service.NewUsageService(repository, db.NewAtomic(pool), map[plan.Resource]service.Counter{
		plan.ResourceClients:      clientRepo,
		plan.ResourceCalculations: calcRepo,
		plan.ResourceDiagnoses:    diagRepo,
	}, func(resource plan.Resource) {
		m.PlanLimitHit(string(resource))
	})

	clients := client.NewService(clientRepo, usage)
	tasks := task.NewService(taskRepo, clients)
	calculations := calculation.NewService(calcRepo, usage, clients, m.CalculationRecorded)

	provider, err := diagnosis.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("ai provider: %w", err)
	}
	prompts, err := diagnosis.LoadPrompts()
	if err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	diagnoses := diagnosis.NewService(diagRepo, usage, clients, provider, prompts, diagnosis.Options{
		Cache:     diagnosis.NewRedisCache(redisClient),
		CacheTTL:  cfg.AI.CacheTTL,
		Site:      diagnosis.NewSiteFetcher(10 * time.Second),
		Timeout:   cfg.AI.Timeout,
		Generated: m.DiagnosisGenerated,
	})

	board := dashboard.NewService(dashboard.Sources{
		ClientsByStatus:  clients.CountByStatus,
		OpenTasks:        tasks.CountOpen,
		UpcomingMeetings: tasks.CountUpcomingMeetings,
		Calculations:     calculations.Count,
		Diagnoses:        diagnoses.Count,
		Usage:            usage.Summary,
	})

	handler, err := internalhttp.NewRouter(cfg, internalhttp.Dependencies{
		Auth:         authService,
		Usage:        usage,
		Clients:      clients,
		Tasks:        tasks,
		Calculations: calculations,
		Diagnoses:    diagnoses,
		Dashboard:    board,
		Metrics:      m,
		Checks: map[string]internalhttp.Check{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("ai_provider", cfg.AI.Provider).Str("ai_model", provider.Model()).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
