package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/idgen"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/state"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "storefront"

func main() {
	configPath := flag.String("config", getEnv("STOREFRONT_CONFIG", ""), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if err := run(cfg, l); err != nil {
		l.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, l *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Setup(ctx, cfg.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			l.Error("failed to flush traces", zap.Error(err))
		}
	}()
	l.Info("tracing ready", zap.String("exporter", cfg.Tracing.Exporter), zap.Float64("sample_ratio", cfg.Tracing.SampleRatio))

	store, err := storage.Open(ctx, cfg.Storage, l.Named("storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	l.Info("storage ready", zap.String("driver", cfg.Storage.Driver), zap.Bool("cache", cfg.Storage.Cache.Enabled))

	manager := state.New(state.Deps{
		Store:      store,
		Source:     catalog.NewClient(cfg.Catalog),
		Publisher:  events.NewPublisher(cfg.Kafka),
		IDs:        idgen.UUID(),
		Logger:     l,
		LoginDelay: cfg.Session.LoginDelay,
		PerPage:    cfg.Listing.PerPage,
		Debounce:   cfg.Listing.Debounce,
	})
	defer func() {
		if err := manager.Close(); err != nil {
			l.Error("failed to close state", zap.Error(err))
		}
	}()

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start state: %w", err)
	}

	grpcServer, healthSrv, err := serveGRPC(cfg.GRPC.Addr, l)
	if err != nil {
		return err
	}
	defer grpcServer.GracefulStop()

	// Report NOT_SERVING until the first catalog load settles.
	go func() {
		manager.Wait()
		healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	}()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      h.NewRouter(manager, *cfg, l.Named("http")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		l.Info("HTTP server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	l.Info("shutting down")
	healthSrv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info("server exited")
	return nil
}

// serveGRPC exposes the standard health service and reflection for grpcurl.
func serveGRPC(addr string, l *zap.Logger) (*grpc.Server, *health.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("grpc listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	go func() {
		l.Info("gRPC health server listening", zap.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			l.Error("gRPC server stopped", zap.Error(err))
		}
	}()
	return grpcServer, healthSrv, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
