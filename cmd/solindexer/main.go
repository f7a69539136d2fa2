package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/redis/go-redis/v9"
	"github.com/solidx/indexer/internal/config"
	"github.com/solidx/indexer/internal/ingest"
	"github.com/solidx/indexer/internal/logging"
	"github.com/solidx/indexer/internal/notify"
	"github.com/solidx/indexer/internal/store"
	"github.com/solidx/indexer/internal/streammirror"
	"github.com/solidx/indexer/internal/writer"
)

const programName = "solindexer"

var cmdlineFlags struct {
	configFile string
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.Parse()

	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	logging.Configure()
	logger := logging.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var mirror *streammirror.Mirror
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		mirror = streammirror.New(redis.NewClient(opts), cfg.Redis.KeyPrefix, cfg.Redis.MaxStreamLen)
	}

	bus := notify.NewBus(0)
	bridge := notify.NewBridge(cfg.Database.URL, bus)
	go bridge.Run(ctx)

	mintWhitelist := make([]string, len(cfg.Firehose.MintWhitelist))
	copy(mintWhitelist, cfg.Firehose.MintWhitelist)
	w := writer.New(st, mintWhitelist, mirror)

	if cfg.Firehose.Endpoint == "" {
		logger.Error("firehose.endpoint is required")
		os.Exit(1)
	}
	blockStream := ingest.NewRetryingBlockStream(cfg.Firehose.Endpoint)
	controller := ingest.New(
		blockStream,
		cursorAdapter{st},
		cfg.Firehose.FromSlot,
		cfg.Firehose.InitialBackoffMs,
		cfg.Firehose.MaxBackoffMs,
	)
	defer controller.Stop()

	go w.Run(ctx, controller.Queue())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
		notify.UpgradeAndServe(bus, rw, r)
	})
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.ListenAddress, cfg.API.ListenPort)
		logger.Info("starting API listener", "address", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("API listener failed", "error", err)
		}
	}()

	if cfg.Debug.ListenPort > 0 {
		debugAddr := fmt.Sprintf("%s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort)
		logger.Info("starting debug listener", "address", debugAddr)
		go func() {
			if err := http.ListenAndServe(debugAddr, nil); err != nil {
				logger.Error("failed to start debug listener", "error", err)
			}
		}()
	}

	// §5: the process terminates if the ingestion controller stops — it
	// is one of the two tasks "supposed to run forever".
	if err := controller.Run(ctx); err != nil {
		logger.Error("ingestion controller terminated", "error", err)
		os.Exit(1)
	}
}

// cursorAdapter satisfies ingest.CursorReader against the shared store
// without widening store's API surface.
type cursorAdapter struct{ st *store.Store }

func (c cursorAdapter) GetCursor(ctx context.Context) (uint64, bool, error) {
	return store.GetCursor(ctx, c.st.Pool)
}
