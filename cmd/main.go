package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/infrastructure/http/server"
	"github.com/ga-dutra/batepapo-uol-api/internal"
	"github.com/ga-dutra/batepapo-uol-api/moderation"
	"github.com/ga-dutra/batepapo-uol-api/repositories"
	"github.com/ga-dutra/batepapo-uol-api/runtime"
	"github.com/ga-dutra/batepapo-uol-api/runtime/workers"
	"github.com/ga-dutra/batepapo-uol-api/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle and
// centralizes error reporting, so deferred cleanup always executes
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core state
	broadcast := domain.NewBroadcast(splitList(config.BroadcastNames)...)
	participantRepository := repositories.NewParticipantRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	registry := runtime.NewRegistry(participantRepository)
	messageLog := runtime.NewMessageLog(messageRepository, broadcast)

	replacement, err := characterRune(config.ModerationChar)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(splitList(config.CensoredWords), replacement)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 4. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewPresenceSweeper(log, registry, messageLog, broadcast,
			config.SweepInterval, config.ParticipantTimeout),
		workers.NewTelemetryWorker(log, config.TelemetryInterval),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	if config.InspectorPort > 0 {
		internal.StartInspector(db, config.InspectorPort)
		log.Info("Store inspector enabled", "port", config.InspectorPort)
	}

	// 6. HTTP server
	service := services.NewSessionService(log, registry, messageLog,
		participantRepository, moderator, broadcast)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:    address,
		Handler: server.NewRouter(log, service),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
