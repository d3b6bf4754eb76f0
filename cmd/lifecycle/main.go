package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blob"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/blockcache"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/enclave"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/exitcode"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/ipc"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv/kvrpc"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/lifecycle"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/metrics"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/repository/clickhouse"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/syncclient"
	"github.com/Phala-Network/runtime-bridge-sub000/pkg/batcher"
	"github.com/Phala-Network/runtime-bridge-sub000/pkg/safe"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	RunnerID       string        `long:"runner-id" env:"LIFECYCLE_RUNNER_ID" description:"runner id the workers are assigned to" required:"true"`
	ParaID         int64         `long:"para-id" env:"LIFECYCLE_PARA_ID" description:"parachain id" required:"true"`
	KVAddr         string        `long:"kv-addr" env:"LIFECYCLE_KV_ADDR" description:"KV service address" default:"127.0.0.1:6100"`
	ClickhouseDSN  string        `long:"clickhouse-dsn" env:"LIFECYCLE_CLICKHOUSE_DSN" description:"ClickHouse DSN" required:"true"`
	RedisAddr      string        `long:"redis-addr" env:"LIFECYCLE_REDIS_ADDR" description:"redis address of the message bus" default:"127.0.0.1:6379"`
	RedisPassword  string        `long:"redis-password" env:"LIFECYCLE_REDIS_PASSWORD" description:"redis password"`
	RedisDB        int           `long:"redis-db" env:"LIFECYCLE_REDIS_DB" description:"redis database" default:"0"`
	CommandChannel string        `long:"command-channel" env:"LIFECYCLE_COMMAND_CHANNEL" description:"bus channel for worker commands" default:"lifecycle.commands"`
	TxChannel      string        `long:"tx-channel" env:"LIFECYCLE_TX_CHANNEL" description:"bus channel of the transaction service" default:"txservice"`
	Concurrency    int           `long:"concurrency" env:"LIFECYCLE_CONCURRENCY" description:"workers started in parallel" default:"10"`
	FenceInterval  time.Duration `long:"fence-interval" env:"LIFECYCLE_FENCE_INTERVAL" description:"how often the runner claim is checked" default:"5s"`
	EnclaveTimeout time.Duration `long:"enclave-timeout" env:"LIFECYCLE_ENCLAVE_TIMEOUT" description:"timeout of enclave requests" default:"60s"`
	SyncInterval   time.Duration `long:"sync-interval" env:"LIFECYCLE_SYNC_INTERVAL" description:"wait between sync attempts when no blob is ready" default:"3s"`
	EventBatch     int           `long:"event-batch" env:"LIFECYCLE_EVENT_BATCH" description:"worker events per insert" default:"500"`
	EventFlush     time.Duration `long:"event-flush" env:"LIFECYCLE_EVENT_FLUSH" description:"maximum delay of worker event inserts" default:"5s"`
	MetricsAddr    string        `long:"metrics-addr" env:"LIFECYCLE_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogJSON        bool          `long:"log-json" env:"LIFECYCLE_LOG_JSON" description:"production JSON logging"`
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
	code := exitcode.Of(err, exitcode.Rule{Err: lifecycle.ErrRunnerIDMismatch, Code: exitcode.RunnerIDMismatch})
	if err != nil {
		logger.Error("lifecycle manager failed", zap.Error(err), zap.Int("exit_code", code))
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	paraID, err := safe.Uint32(cfg.ParaID)
	if err != nil {
		return fmt.Errorf("para id: %w", err)
	}
	logger = logger.With(zap.String("runner_id", cfg.RunnerID))
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	store, err := kvrpc.Dial(cfg.KVAddr)
	if err != nil {
		return fmt.Errorf("dial kv service: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		_ = repo.Close()
	}()

	bus, err := ipc.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = bus.Close()
	}()

	events := batcher.New[model.WorkerEvent](logger.Named("worker_events"), repo.InsertWorkerEvents, batcher.Config{
		Size:     cfg.EventBatch,
		Interval: cfg.EventFlush,
	})
	events.Start(ctx)
	defer events.Stop()

	blobs := blob.NewCache(store, blob.DefaultCacheConfig(), metrics.NewBlobCache(), logger)
	enclaves := newEnclaves(cfg.EnclaveTimeout, logger)
	syncConfig := syncclient.DefaultConfig()
	syncConfig.PollInterval = cfg.SyncInterval

	deps := lifecycle.Deps{
		Chain:   ipc.NewTxService(ipc.NewClient(bus, cfg.TxChannel)),
		Genesis: blockcache.New(store, logger, blockcache.DefaultConfig()),
		Events:  events,
		Metrics: metrics.NewLifecycle(lifecycle.StateNames()...),
		NewSyncer: func(w *lifecycle.Worker) lifecycle.Syncer {
			return syncclient.New(
				enclaves.get(w.Config.ID),
				blobs,
				metrics.NewSyncClient(w.Config.ID),
				logger.With(zap.String("worker", w.Config.ID)),
				syncConfig,
			)
		},
		ParaID:    paraID,
		Intervals: lifecycle.DefaultIntervals(),
	}

	runner := lifecycle.NewRunner(store, repo, bus, enclaves.open, deps, lifecycle.RunnerConfig{
		RunnerID:       cfg.RunnerID,
		Concurrency:    cfg.Concurrency,
		FenceInterval:  cfg.FenceInterval,
		CommandChannel: cfg.CommandChannel,
	}, logger)
	return runner.Run(ctx)
}

// enclaves keeps the client of every worker, so that the state machine and
// the sync client of a worker share one connection.
type enclaves struct {
	timeout time.Duration
	metrics *metrics.EnclaveClient
	logger  *zap.Logger

	mu   sync.Mutex
	byID map[string]*enclave.Client
}

func newEnclaves(timeout time.Duration, logger *zap.Logger) *enclaves {
	return &enclaves{
		timeout: timeout,
		metrics: metrics.NewEnclaveClient(),
		logger:  logger,
		byID:    make(map[string]*enclave.Client),
	}
}

func (e *enclaves) open(config model.WorkerConfig) lifecycle.Enclave {
	e.mu.Lock()
	defer e.mu.Unlock()
	client := enclave.New(config.Endpoint, e.timeout, e.metrics, e.logger.With(zap.String("worker", config.ID)))
	e.byID[config.ID] = client
	return client
}

func (e *enclaves) get(id string) *enclave.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.byID[id]
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
