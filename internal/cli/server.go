package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeJamon/goswapd/internal/config"
	"github.com/LeJamon/goswapd/internal/core/ledger/genesis"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/server"
	"github.com/LeJamon/goswapd/internal/storage/keyValueDb"
	"github.com/LeJamon/goswapd/internal/storage/keyValueDb/bbolt"
	"github.com/LeJamon/goswapd/internal/storage/keyValueDb/leveldb"
	"github.com/LeJamon/goswapd/internal/storage/keyValueDb/pebble"
	"github.com/LeJamon/goswapd/internal/storage/ledgerstore"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

var (
	// Server flags
	httpAddr string
	grpcAddr string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the swapd node",
	Long: `Run the swapd node: open the ledger archive, resume or bootstrap the
chain, and serve JSON-RPC, websocket streams, grpc and metrics until
interrupted. This is the default command when no subcommand is given.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = runServer

	serverCmd.Flags().StringVar(&httpAddr, "http", "", "override [server].http_addr")
	serverCmd.Flags().StringVar(&grpcAddr, "grpc", "", "override [server].grpc_addr")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if grpcAddr != "" {
		cfg.Server.GRPCAddr = grpcAddr
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runNode(ctx, cfg, log)
}

func runNode(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	manager, err := openBackend(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			log.Warnw("backend_close_failed", "err", err)
		}
	}()

	db, err := manager.OpenDB("ledgers")
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	store, err := ledgerstore.New(ctx, db, ledgerstore.Options{
		CacheSize:   cfg.Database.CacheLedgers,
		Compression: cfg.Database.Compression,
	})
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}

	var journal relationaldb.Journal
	if cfg.Journal.Enabled {
		journal, err = relationaldb.OpenJournal(ctx, cfg.Journal.Relational(cfg.Database.Path))
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if err := journal.Close(context.Background()); err != nil {
				log.Warnw("journal_close_failed", "err", err)
			}
		}()
	}

	gen := genesis.DefaultConfig()
	gen.Fees = cfg.Fees.Schedule()

	node := service.New(service.Config{
		Standalone:       cfg.Node.Standalone,
		Genesis:          gen,
		NetworkID:        cfg.Node.NetworkID,
		VerifySignatures: cfg.Node.VerifySignatures,
		Store:            store,
		Journal:          journal,
		Logger:           log,
	})
	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("start node: %w", err)
	}

	info, err := node.Info()
	if err != nil {
		return err
	}
	log.Infow("node_started",
		"network_id", info.NetworkID,
		"validated_seq", info.ValidatedSequence,
		"complete_ledgers", info.CompleteLedgers,
		"backend", cfg.Database.Backend,
		"journal", cfg.Journal.Enabled,
	)

	srv, err := server.New(cfg.Server, node, rootCmd.Version, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// openBackend constructs the configured key-value store manager.
func openBackend(cfg config.DatabaseConfig) (keyValueDb.Manager, error) {
	switch cfg.Backend {
	case config.BackendPebble:
		return pebble.NewManager(cfg.Path), nil
	case config.BackendBBolt:
		return bbolt.NewBBoltManager(cfg.Path), nil
	case config.BackendLevelDB:
		return leveldb.NewManager(cfg.Path), nil
	case config.BackendMemory:
		return keyValueDb.NewMemoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
}
