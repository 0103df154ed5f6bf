package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/bestiary/internal/config"
	v1alpha1 "github.com/KirkDiggler/bestiary/internal/handlers/bestiary/v1alpha1"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
	"github.com/KirkDiggler/bestiary/internal/redis"
	navsession "github.com/KirkDiggler/bestiary/internal/repositories/nav_session"
	"github.com/KirkDiggler/bestiary/internal/telemetry"
)

// catalogHealthService is the health check name tracking catalog readiness
const catalogHealthService = "bestiary.v1alpha1.Catalog"

const shutdownTimeout = 30 * time.Second

var (
	grpcPort   int
	httpAddr   string
	redisAddr  string
	sessionTTL time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API and gRPC health server",
	Long: `Start the bestiary JSON API. The monster catalog loads in the background;
gRPC health reports NOT_SERVING until the first load succeeds.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC health/reflection port (env BESTIARY_GRPC_PORT)")
	serverCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP API listen address (env BESTIARY_HTTP_ADDR)")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for navigation sessions, in-memory when empty (env BESTIARY_REDIS_ADDR)")
	serverCmd.Flags().DurationVar(&sessionTTL, "session-ttl", 30*time.Minute, "idle navigation session lifetime (env BESTIARY_SESSION_TTL)")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup(ctx, tracingConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("Failed to flush traces: %v", err)
		}
	}()

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(catalogHealthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	tracker := &healthTracker{}
	catalogService, client, err := newCatalog(cfg, func(status catalog.Status) {
		healthServer.SetServingStatus(catalogHealthService, tracker.observe(status))
	})
	if err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}

	sessions, closeSessions, err := newSessionRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		CatalogService:    catalogService,
		SessionRepository: sessions,
		Images:            client,
		SessionTTL:        cfg.SessionTTL,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		log.Printf("gRPC server starting on port %d...", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()
	go func() {
		log.Printf("HTTP API starting on %s...", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	// Load in the background; a failure leaves the API up so clients can retry via catalog:refresh
	go func() {
		log.Println("Loading monster catalog...")
		out, err := catalogService.Refresh(ctx)
		if err != nil {
			log.Printf("Failed to load monster catalog: %v", err)
			return
		}
		log.Printf("Monster catalog loaded: %d monsters, %d stat blocks", len(out.Snapshot.Refs), len(out.Snapshot.Records))
	}()

	select {
	case <-ctx.Done():
		log.Println("Received shutdown signal, gracefully stopping...")
	case err := <-errChan:
		grpcServer.Stop()
		_ = httpServer.Close()
		return err
	}

	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		log.Println("Graceful shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	case <-stopped:
		log.Println("Server stopped gracefully")
	}

	return nil
}

func tracingConfig(cfg *config.Config) *telemetry.Config {
	if !cfg.TracingEnabled() {
		return nil
	}
	return &telemetry.Config{Endpoint: cfg.OTelEndpoint}
}

// healthTracker maps catalog state onto gRPC health. Once a snapshot has been
// published the API keeps answering from it, so later refreshes never flip
// the service back to NOT_SERVING.
type healthTracker struct {
	loaded atomic.Bool
}

func (t *healthTracker) observe(status catalog.Status) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if status == catalog.StatusReady {
		t.loaded.Store(true)
	}
	if t.loaded.Load() {
		return grpc_health_v1.HealthCheckResponse_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_NOT_SERVING
}

func newSessionRepository(ctx context.Context, cfg *config.Config) (navsession.Repository, func(), error) {
	if cfg.RedisAddr == "" {
		log.Println("Navigation sessions stored in memory")
		return navsession.NewInMemory(nil), func() {}, nil
	}

	client, err := redis.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redis.Ping(pingCtx, client); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	repo, err := navsession.NewRedis(&navsession.RedisConfig{Client: client})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.Printf("Navigation sessions stored in Redis at %s", cfg.RedisAddr)
	return repo, func() { _ = client.Close() }, nil
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	log.Printf("[%v] %s %v", level, msg, fields)
}
