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

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blockcache"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/chain"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/clock"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/exitcode"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv/kvrpc"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/metrics"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/retry"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/walker"
	"github.com/Phala-Network/runtime-bridge-sub000/pkg/safe"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type config struct {
	Chain         model.Chain   `long:"chain" env:"FETCHER_CHAIN" description:"chain to follow (parent or para)" required:"true"`
	RPCURL        string        `long:"rpc-url" env:"FETCHER_RPC_URL" description:"JSON-RPC endpoint of the followed chain" required:"true"`
	ParaRPCURL    string        `long:"para-rpc-url" env:"FETCHER_PARA_RPC_URL" description:"parachain JSON-RPC endpoint, used by the parent fetcher to capture genesis"`
	KVAddr        string        `long:"kv-addr" env:"FETCHER_KV_ADDR" description:"KV service address" default:"127.0.0.1:6100"`
	ParaID        int64         `long:"para-id" env:"FETCHER_PARA_ID" description:"parachain id" required:"true"`
	GenesisNumber uint64        `long:"genesis-number" env:"FETCHER_GENESIS_NUMBER" description:"parent block the enclaves bootstrap from"`
	RPS           int           `long:"rps" env:"FETCHER_RPS" description:"maximum RPC requests per second, 0 for unlimited" default:"50"`
	HTTPTimeout   time.Duration `long:"http-timeout" env:"FETCHER_HTTP_TIMEOUT" description:"timeout of RPC requests" default:"30s"`
	PollInterval  time.Duration `long:"poll-interval" env:"FETCHER_POLL_INTERVAL" description:"finalized head poll interval" default:"6s"`
	MetricsAddr   string        `long:"metrics-addr" env:"FETCHER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogJSON       bool          `long:"log-json" env:"FETCHER_LOG_JSON" description:"production JSON logging"`
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
	code := exitcode.Of(err,
		exitcode.Rule{Err: walker.ErrCorruptedData, Code: exitcode.CorruptedData},
		exitcode.Rule{Err: walker.ErrRetryExhausted, Code: exitcode.RetryExhausted},
	)
	if err != nil {
		logger.Error("fetcher failed", zap.Error(err), zap.Int("exit_code", code))
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	paraID, err := safe.Uint32(cfg.ParaID)
	if err != nil {
		return fmt.Errorf("para id: %w", err)
	}
	logger = logger.With(zap.String("chain", string(cfg.Chain)))
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	store, err := kvrpc.Dial(cfg.KVAddr)
	if err != nil {
		return fmt.Errorf("dial kv service: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	client := newClient(cfg.RPCURL, cfg, cfg.Chain, logger)
	cache := blockcache.New(store, logger, blockcache.DefaultConfig())

	var start uint64
	switch cfg.Chain {
	case model.Parent:
		if cfg.ParaRPCURL == "" {
			return errors.New("--para-rpc-url is required for the parent chain")
		}
		genesis, err := ensureGenesis(ctx, cache, client, newClient(cfg.ParaRPCURL, cfg, model.Para, logger), cfg.GenesisNumber, paraID, logger)
		if err != nil {
			return err
		}
		start = genesis.ParentNumber + 1
	case model.Para:
		genesis, err := waitGenesis(ctx, cache, paraID, cfg.PollInterval, logger)
		if err != nil {
			return err
		}
		start = genesis.ParaNumber + 1
	}

	reader := chain.NewReader(client, cfg.Chain, paraID)
	walkerMetrics := metrics.NewWalker(string(cfg.Chain))
	tracker := walker.NewTargetTracker(cfg.Chain, reader, store, walkerMetrics, logger, cfg.PollInterval)
	w := walker.New(cfg.Chain, reader, cache, tracker, walkerMetrics, logger, walker.Config{
		Start: start,
		Retry: retry.Default,
	})

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return tracker.Run(ctx) })
	group.Go(func() error { return w.Run(ctx) })
	return group.Wait()
}

func newClient(url string, cfg config, c model.Chain, logger *zap.Logger) *chain.ObservedClient {
	rpc := chain.NewRPC(url, cfg.HTTPTimeout, logger.Named(string(c)))
	return chain.NewObservedClient(rpc, cfg.RPS, metrics.NewRPCClient(string(c)))
}

// ensureGenesis captures the bootstrap material once; later runs reuse the stored copy.
func ensureGenesis(
	ctx context.Context,
	cache *blockcache.Cache,
	parent, para chain.Client,
	number uint64,
	paraID uint32,
	logger *zap.Logger,
) (model.Genesis, error) {
	genesis, err := cache.Genesis(ctx, paraID)
	if err == nil {
		return genesis, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return model.Genesis{}, err
	}

	genesis, err = chain.CaptureGenesis(ctx, parent, para, number, paraID)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("capture genesis: %w", err)
	}
	if _, err := cache.PutGenesis(ctx, genesis); err != nil {
		return model.Genesis{}, err
	}
	logger.Info("genesis captured",
		zap.Uint64("parent_number", genesis.ParentNumber),
		zap.Uint64("para_number", genesis.ParaNumber),
		zap.Uint64("set_id", genesis.ParentSetID),
	)
	return genesis, nil
}

// waitGenesis blocks until the parent fetcher stored the genesis of paraID.
func waitGenesis(ctx context.Context, cache *blockcache.Cache, paraID uint32, interval time.Duration, logger *zap.Logger) (model.Genesis, error) {
	var genesis model.Genesis
	err := clock.PollUntil(ctx, interval, func(ctx context.Context) (bool, error) {
		var err error
		genesis, err = cache.Genesis(ctx, paraID)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, kv.ErrNotFound):
			logger.Info("waiting for genesis", zap.Uint32("para_id", paraID))
			return false, nil
		default:
			return false, err
		}
	})
	return genesis, err
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
