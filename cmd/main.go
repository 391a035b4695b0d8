package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shelter-chat/auth"
	"shelter-chat/broadcast"
	"shelter-chat/hub"
	"shelter-chat/internal"
	"shelter-chat/repositories"
	"shelter-chat/server"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so that every defer (database close,
// sequence release) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core components: store, room registry, broadcaster, auth gate
	messageRepository := repositories.NewMessageRepository(db, log)
	defer func() {
		_ = messageRepository.Close()
	}()
	registry := hub.NewRegistry(log)
	broadcaster := broadcast.New(log, messageRepository, registry)
	verifier := auth.NewVerifier([]byte(config.JWTSecret))

	// 4. HTTP surface
	chatHandler := server.NewChatHandler(log, verifier, registry, broadcaster,
		config.MaxFrameSize)
	historyHandler := server.NewHistoryHandler(log, verifier, messageRepository,
		config.HistoryLimit)
	router := server.NewRouter(chatHandler, historyHandler)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Serve
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := server.New(log, address, router)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
