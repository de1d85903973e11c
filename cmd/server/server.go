package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-charforge/internal/clients/portrait"
	"github.com/KirkDiggler/rpg-charforge/internal/config"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
	characterorch "github.com/KirkDiggler/rpg-charforge/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-charforge/internal/platform/telemetry"
	redisclient "github.com/KirkDiggler/rpg-charforge/internal/redis"
	characterrepo "github.com/KirkDiggler/rpg-charforge/internal/repositories/character"
	"github.com/KirkDiggler/rpg-charforge/internal/services/character"
	"github.com/KirkDiggler/rpg-charforge/internal/sqlite"
)

const redisPingTimeout = 5 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the charforge gRPC server on the configured character store.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().Int("port", 50051, "gRPC server port")
	serverCmd.Flags().String("store", config.BackendMemory, "Character store: memory, redis or sqlite")
	serverCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	serverCmd.Flags().String("sqlite-path", "charforge.db", "Database file for the sqlite store")
	serverCmd.Flags().String("portrait-endpoint", "", "Text-to-image endpoint base URL")
	serverCmd.Flags().String("otel-endpoint", "", "OTLP/HTTP trace collector URL")
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, &telemetry.Config{
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		Insecure:    cfg.OTel.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err.Error())
		}
	}()

	srv, healthServer, closeStore, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gRPC server starting",
			"port", cfg.Server.Port,
			"store", cfg.Store.Backend)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gRPC server")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			slog.Info("server stopped gracefully")
		}
		return nil
	case err := <-errChan:
		return err
	}
}

// newServer wires the store, portrait client, orchestrator and handler into
// a gRPC server. The returned func releases the store connection.
func newServer(ctx context.Context, cfg *config.Config) (*grpc.Server, *health.Server, func(), error) {
	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	bus := events.NewBus()
	subscribeAudit(bus)

	orchestrator, err := characterorch.New(&characterorch.Config{
		CharacterRepo: repo,
		PortraitClient: portrait.New(&portrait.Config{
			Endpoint: cfg.Portrait.Endpoint,
			Token:    cfg.Portrait.Token,
			Model:    cfg.Portrait.Model,
			Timeout:  cfg.Portrait.Timeout,
		}),
		EventBus: bus,
	})
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		CharacterService: orchestrator,
	})
	if err != nil {
		closeStore()
		return nil, nil, nil, fmt.Errorf("failed to create character handler: %w", err)
	}

	logger := interceptorLogger(slog.Default())
	recovery := grpc_recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		slog.ErrorContext(ctx, "panic in handler", "panic", fmt.Sprint(p))
		return errors.ToGRPCError(errors.Internal("internal error"))
	})

	srv := grpc.NewServer(
		telemetry.ServerOption(),
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(logger, grpc_logging.WithLogOnEvents(grpc_logging.FinishCall)),
			grpc_recovery.UnaryServerInterceptor(recovery),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(logger, grpc_logging.WithLogOnEvents(grpc_logging.FinishCall)),
			grpc_recovery.StreamServerInterceptor(recovery),
		),
	)

	v1alpha1.RegisterCharacterServiceServer(srv, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	return srv, healthServer, closeStore, nil
}

// openRepository opens the configured character store
func openRepository(ctx context.Context, cfg *config.Config) (characterrepo.Repository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redisclient.NewClient(cfg.Redis.Addr, &redisclient.Options{
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := redisclient.Ping(ctx, client, redisPingTimeout); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		repo, err := characterrepo.New(&characterrepo.Config{
			Backend: characterrepo.BackendRedis,
			Client:  client,
		})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		slog.InfoContext(ctx, "using redis character store", "addr", cfg.Redis.Addr)
		return repo, func() { _ = client.Close() }, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := characterrepo.New(&characterrepo.Config{
			Backend: characterrepo.BackendSQLite,
			DB:      db,
		})
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.InfoContext(ctx, "using sqlite character store", "path", cfg.SQLite.Path)
		return repo, func() { _ = db.Close() }, nil

	case config.BackendMemory:
		repo, err := characterrepo.New(&characterrepo.Config{Backend: characterrepo.BackendMemory})
		if err != nil {
			return nil, nil, err
		}
		slog.InfoContext(ctx, "using in-memory character store")
		return repo, func() {}, nil

	default:
		return nil, nil, errors.InvalidArgumentf("unknown store backend %q", cfg.Store.Backend)
	}
}

var auditedEvents = []string{
	character.EventCharacterCreated,
	character.EventCharacterUpdated,
	character.EventCharacterDeleted,
	character.EventPortraitGenerated,
}

// subscribeAudit logs every character event
func subscribeAudit(bus events.EventBus) {
	for _, eventType := range auditedEvents {
		bus.SubscribeFunc(eventType, 0, func(ctx context.Context, e events.Event) error {
			attrs := []any{"event_type", e.Type()}
			if id, ok := e.Context().Get(character.EventContextCharacterID); ok {
				attrs = append(attrs, "character_id", id)
			}
			if size, ok := e.Context().Get(character.EventContextPortraitSize); ok {
				attrs = append(attrs, "portrait_bytes", size)
			}
			slog.InfoContext(ctx, "character event", attrs...)
			return nil
		})
	}
}
