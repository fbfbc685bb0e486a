package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
	pgstore "livequiz-service/internal/infra/postgres"
	redisstore "livequiz-service/internal/infra/redis"
	transport "livequiz-service/internal/transport/http"
)

// NewServerCmd builds the CLI subcommand to start the server.
func NewServerCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var games app.GameStore = memory.NewGameStore(sampleGames())
	if pool != nil {
		games = pgstore.NewGameStore(pool)
	}
	cacheTTL := config.TTLDuration(cfg.Games.CacheTTL, 30*time.Second)
	games = memory.NewCachedGameStore(games, cacheTTL)

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	service := app.NewService(games, sessions)

	idleTTL := config.TTLDuration(cfg.Session.IdleTTL, time.Hour)
	sweepInterval := config.TTLDuration(cfg.Session.SweepInterval, time.Minute)
	sweeper := app.NewSweeper(service, logger, idleTTL, sweepInterval)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	verifier := transport.StaticTokenVerifier(cfg.Auth.Tokens)
	handler := transport.NewHandler(service, verifier, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz session server", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleGames seeds the in-memory store when no document store is configured;
// handy for local play against the bundled admin token.
func sampleGames() []domain.Game {
	return []domain.Game{
		{
			ID:    1,
			Name:  "General knowledge warmup",
			Owner: "admin@example.com",
			Questions: []domain.Question{
				{
					ID:       1,
					Text:     "What is 2 + 2?",
					Type:     domain.Single,
					Duration: 30,
					Points:   100,
					Options: []domain.Option{
						{Text: "3"},
						{Text: "4", Correct: true},
						{Text: "5"},
					},
				},
				{
					ID:       2,
					Text:     "The sun is a star.",
					Type:     domain.Judgement,
					Duration: 15,
					Points:   50,
					Options: []domain.Option{
						{Text: "true", Correct: true},
						{Text: "false"},
					},
				},
			},
		},
	}
}
