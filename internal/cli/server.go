package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/memory"
	infraredis "timed-quiz-service/internal/infra/redis"
	"timed-quiz-service/internal/logging"
	"timed-quiz-service/internal/metrics"
	transport "timed-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	logger := logging.New(cfg.App.Name, cfg.App.Env)
	ctx = logging.IntoContext(ctx, logger)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	loader, closeLoader, err := quizLoader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLoader()

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	handoffTTL := config.TTLDuration(cfg.Handoff.TTL, time.Hour)

	var (
		quizRepo app.QuizRepository
		store    app.SessionRepository
		handoff  app.HandoffStore
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		quizRepo = infraredis.NewQuizRepository(client, loader, quizTTL, logger)
		store = infraredis.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		handoff = infraredis.NewHandoffStore(client, handoffTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis stores")
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		store = memory.NewSessionStore()
		handoff = memory.NewHandoffStore(handoffTTL)
		logger.Info().Msg("using in-memory stores")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := app.NewQuizService(store, quizRepo, handoff,
		app.WithLogger(logger),
		app.WithRecorder(metrics.NewRecorder(reg)),
	)

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Service:       service,
			DefaultQuizID: cfg.Quiz.DefaultID,
			Logger:        logger,
			Gatherer:      reg,
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
