package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv/badgerkv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv/kvrpc"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/metrics"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	DataDir     string `long:"data-dir" env:"KVSERVER_DATA_DIR" description:"badger data directory" required:"true"`
	ListenAddr  string `long:"listen-addr" env:"KVSERVER_LISTEN_ADDR" description:"gRPC listen address" default:":6100"`
	MetricsAddr string `long:"metrics-addr" env:"KVSERVER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogJSON     bool   `long:"log-json" env:"KVSERVER_LOG_JSON" description:"production JSON logging"`
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("kv server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)
	grpcZap.ReplaceGrpcLoggerV2(logger.Named("grpc"))

	store, err := badgerkv.Open(cfg.DataDir, logger, metrics.NewKVStore())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	srv := kvrpc.NewServer(store, logger.Named("kvrpc"))

	go func() {
		<-ctx.Done()
		logger.Info("stopping kv server")
		srv.GracefulStop()
	}()

	logger.Info("kv server listening", zap.String("addr", cfg.ListenAddr), zap.String("data_dir", cfg.DataDir))
	return srv.Serve(lis)
}

func newLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
