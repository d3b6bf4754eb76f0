package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blob"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/blockcache"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/exitcode"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv/kvrpc"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/metrics"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/window"
	"github.com/Phala-Network/runtime-bridge-sub000/pkg/safe"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	KVAddr       string        `long:"kv-addr" env:"RANGEWRITER_KV_ADDR" description:"KV service address" default:"127.0.0.1:6100"`
	ParaID       int64         `long:"para-id" env:"RANGEWRITER_PARA_ID" description:"parachain id" required:"true"`
	PollInterval time.Duration `long:"poll-interval" env:"RANGEWRITER_POLL_INTERVAL" description:"interval for polling blocks not yet fetched" default:"20ms"`
	MetricsAddr  string        `long:"metrics-addr" env:"RANGEWRITER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogJSON      bool          `long:"log-json" env:"RANGEWRITER_LOG_JSON" description:"production JSON logging"`
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.Failure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}

	err = run(ctx, cfg, logger)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	code := exitcode.Of(err)
	if err != nil {
		logger.Error("range writer failed", zap.Error(err), zap.Int("exit_code", code))
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	paraID, err := safe.Uint32(cfg.ParaID)
	if err != nil {
		return fmt.Errorf("para id: %w", err)
	}
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	store, err := kvrpc.Dial(cfg.KVAddr)
	if err != nil {
		return fmt.Errorf("dial kv service: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	cacheConfig := blockcache.DefaultConfig()
	cacheConfig.PollInterval = cfg.PollInterval
	blocks := blockcache.New(store, logger, cacheConfig)
	assembler := blob.NewAssembler(store, logger)

	manager := window.NewManager(store, blocks, assembler, metrics.NewWindowManager(), logger, paraID)
	return manager.Run(ctx)
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
