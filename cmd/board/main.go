package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	grpcserver "message-board/infrastructure/grpc/server"
	"message-board/infrastructure/api"
	"message-board/infrastructure/storage"
	"message-board/internal"
	"message-board/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Board terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and keeps deferred cleanups ahead of os.Exit.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	strategy, err := services.ParseReactionStrategy(config.ReactionStrategy)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Message store, opened once for the process lifetime
	store, err := openStore(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = store.Close()
	}()

	// 3. Services & transports
	board := services.NewBoardService(store, logger, strategy)
	handler := api.NewMessageHandler(board, logger, int64(config.MaxBodyBytes))
	router := api.NewRouter(logger, handler, store)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	healthServer := grpcserver.NewHealthServer(logger)
	grpcServer := grpcserver.NewGRPCServer(logger, healthServer)
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting gRPC health server", "address", grpcAddress)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("Starting HTTP server",
			"address", httpServer.Addr,
			"backend", config.StoreBackend,
			"reaction_strategy", strategy,
			"at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	healthServer.Serving()

	// 4. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		healthServer.NotServing()
		grpcServer.Stop()
		return exitRuntime, err
	}

	// 5. Graceful shutdown: health checks see NOT_SERVING before the listener closes
	logger.Info("Shutting down gracefully...")
	healthServer.NotServing()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		grpcServer.Stop()
		return exitRuntime, fmt.Errorf("HTTP server forced to shutdown: %w", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func openStore(ctx context.Context, config internal.Config, logger *slog.Logger) (storage.IMessageStore, error) {
	switch config.StoreBackend {
	case storage.BackendRedis:
		store, err := storage.NewRedisStore(ctx, config.RedisURL, logger, config.StoreConflictRetries)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("Connected to Redis")
		return store, nil
	default:
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			endpoint := "/inspect"
			url := fmt.Sprintf("http://localhost:%d%s?prefix=msg:", config.DebugPort, endpoint)
			logger.Info("Debug Badger inspector available", "url", url)
			database.StartDebugServer(db, config.DebugPort, endpoint, MessageMapper)
		}
		return storage.NewBadgerStore(db, logger, config.StoreConflictRetries), nil
	}
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// MessageMapper renders one stored message for the debug inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	row.Type = "MESSAGE"

	item, err := storage.DecodeItem(val)
	if err != nil {
		row.Detail = "Error: decode failed"
		return row
	}
	message := storage.Normalize(item).(map[string]any)

	// Board keys carry no namespace, so DefaultMapper leaves these columns empty.
	if id, ok := message[storage.AttrMessageID].(string); ok {
		row.EntityID = id[:min(len(id), 8)]
	}
	if ts, ok := message[storage.AttrTimestamp].(int64); ok {
		row.Timestamp = time.UnixMilli(ts).Format("15:04:05")
	}
	if content, ok := message["content"].(string); ok {
		row.Detail = content
	}
	if reactions, ok := message[storage.AttrReactions].(map[string]any); ok {
		scores := make([]string, 0, len(reactions))
		for name, count := range reactions {
			scores = append(scores, fmt.Sprintf("%s:%v", name, count))
		}
		row.Scores = strings.Join(scores, " ")
	}
	return row
}
