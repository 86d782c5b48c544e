package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/trungvm/goalflow-backend/internal/adapter/httpapi"
	"github.com/trungvm/goalflow-backend/internal/adapter/repository/postgres"
	"github.com/trungvm/goalflow-backend/internal/scheduler"
	"github.com/trungvm/goalflow-backend/internal/usecase/goals"
	"github.com/trungvm/goalflow-backend/internal/usecase/progress"
	"github.com/trungvm/goalflow-backend/internal/usecase/series"
)

const (
	defaultAPIToken = "dev-token"
	defaultPort     = 8080

	// Daily status evaluation after markets close and the valuation
	// pipeline has run
	goalStatusSchedule = "0 6 * * *"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := setupLogger()

	// 1. Setup Database
	db, err := postgres.NewDB(databaseConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	goalRepo := postgres.NewGoalRepository(db)
	allocationRepo := postgres.NewAllocationRepository(db)
	valuationRepo := postgres.NewValuationRepository(db)

	// 3. Initialize Services (Use Cases)
	goalService := goals.NewService(goalRepo, allocationRepo, valuationRepo)
	progressService := progress.NewService(goalRepo, allocationRepo, valuationRepo, log)
	seriesService := series.NewService(goalRepo, allocationRepo, valuationRepo, log)

	// 4. Start the daily goal status job
	sched := scheduler.New(log)
	if err := sched.AddJob(goalStatusSchedule, scheduler.NewGoalStatusJob(progressService, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register goal status job")
	}
	sched.Start()
	defer sched.Stop()

	// 5. Start HTTP Server
	server := httpapi.New(httpapi.Config{
		Port:            envInt("PORT", defaultPort),
		APIToken:        envString("API_TOKEN", defaultAPIToken),
		Log:             log,
		GoalService:     goalService,
		ProgressService: progressService,
		SeriesService:   seriesService,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	waitForShutdown(server, log)
}

// setupLogger configures zerolog from the LOG_LEVEL environment variable
func setupLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// databaseConnString builds the connection string from DB_CONN_STR or from
// individual DB_* vars (Docker friendly)
func databaseConnString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envString("DB_HOST", "localhost"),
		envString("DB_PORT", "5432"),
		envString("DB_USER", "postgres"),
		envString("DB_PASSWORD", "postgres"),
		envString("DB_NAME", "goalflow"),
	)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
