package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-simulator/internal/app"
	"exam-simulator/internal/bank"
	"exam-simulator/internal/config"
	"exam-simulator/internal/domain"
	"exam-simulator/internal/infra/memory"
	pgloader "exam-simulator/internal/infra/postgres"
	infraredis "exam-simulator/internal/infra/redis"
	"exam-simulator/internal/scheduler"
	transport "exam-simulator/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.TestLoader
	if pool != nil {
		loader = pgloader.NewTestLoader(pool)
	} else {
		tests, err := loadBank(cfg.Bank.File)
		if err != nil {
			return err
		}
		loader = memory.NewStaticLoader(tests)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var questions app.QuestionBank
	var sessions app.SessionRepository
	var results app.ResultStore
	if redisClient != nil {
		questions = infraredis.NewQuestionBank(redisClient, loader, bankTTL)
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
		results = infraredis.NewResultStore(redisClient, redisTTL)
	} else {
		questions = memory.NewQuestionBank(loader, bankTTL)
		sessions = memory.NewSessionStore()
		results = memory.NewResultStore()
	}

	service := app.NewExamService(questions, sessions, results, examConfig(cfg))

	sweeper := scheduler.NewSweeper(service,
		config.TTLDuration(cfg.Exam.SweepInterval, scheduler.DefaultInterval),
		idleTimeout(cfg))
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer sweeper.Stop()

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting exam simulator on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	if n := service.AbandonAll(); n > 0 {
		log.Printf("abandoned %d sessions in progress", n)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadBank reads a YAML bank file, or the embedded bank when path is empty.
func loadBank(path string) (map[domain.TestID]domain.Test, error) {
	if path == "" {
		return bank.Default()
	}
	return bank.LoadFile(path)
}

func examConfig(cfg config.Config) app.ExamConfig {
	return app.ExamConfig{
		Duration:      config.TTLDuration(cfg.Exam.Duration, app.DefaultDuration),
		PassThreshold: cfg.Exam.PassThreshold,
		DailyTests:    cfg.Exam.DailyTests,
	}
}

// idleTimeout is the sweeper's idle window, never shorter than the countdown.
func idleTimeout(cfg config.Config) time.Duration {
	idle := config.TTLDuration(cfg.Exam.IdleTimeout, 2*time.Hour)
	if duration := examConfig(cfg).Duration; idle < duration {
		return duration
	}
	return idle
}
