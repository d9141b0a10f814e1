package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddge/learnengine/internal/catalog"
	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/llm"
	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/store"
)

// deps is everything a command needs, built from flags and EDDGE_*
// variables.
type deps struct {
	log      *logger.Logger
	store    *store.Store // nil with --memory
	events   store.EventRepo
	progress *progress.Service
	closers  []func()
}

// openDeps wires the store, cache, catalog and progress service.
// defaultLog is the log mode used when neither --log nor EDDGE_LOG is set.
func openDeps(cmd *cobra.Command, defaultLog string) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mode, _ := cmd.Flags().GetString("log")
	if mode == "" {
		mode = os.Getenv("EDDGE_LOG")
	}
	if mode == "" {
		mode = defaultLog
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, err
	}
	d := &deps{log: log}
	d.closers = append(d.closers, log.Sync)

	cat, err := catalog.FromEnv()
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cfg, err := progress.ConfigFromEnv()
	if err != nil {
		d.Close()
		return nil, err
	}

	var paths store.PathRepo
	if memory, _ := cmd.Flags().GetBool("memory"); memory {
		paths = store.NewMemoryPathRepo()
		d.events = store.NewMemoryEventRepo()
	} else {
		st, err := openStore(cmd)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.store = st
		d.closers = append(d.closers, func() { st.Close() })
		paths = st.PathRepo()
		d.events = st.EventRepo()

		if url := os.Getenv("EDDGE_REDIS_URL"); url != "" {
			rdb, err := store.DialRedis(ctx, url)
			if err != nil {
				log.Warn("path cache disabled", "error", err)
			} else {
				d.closers = append(d.closers, func() { rdb.Close() })
				paths = store.NewCachedPathRepo(paths, rdb, store.DefaultCacheTTL, log)
			}
		}
	}

	d.progress = progress.NewService(cat, paths, d.events, log, cfg)
	return d, nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	var (
		cfg store.Config
		err error
	)
	if flagDB, _ := cmd.Flags().GetString("db"); flagDB != "" {
		cfg = store.Config{Driver: os.Getenv("EDDGE_DB_DRIVER"), DSN: flagDB}
		if cfg.Driver == "" || cfg.Driver == store.DriverSQLite {
			cfg.Driver = store.DriverSQLite
			err = store.EnsureDir(flagDB)
		}
	} else {
		cfg, err = store.ConfigFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// doubts builds the doubt solver, or returns nil with a warning when no
// LLM provider is configured.
func (d *deps) doubts(ctx context.Context) *doubts.Service {
	cfg, ok := llm.Resolve()
	if !ok {
		d.log.Warn("no LLM provider configured, doubts are disabled")
		return nil
	}
	provider, err := llm.NewProvider(ctx, cfg, d.events, d.log)
	if err != nil {
		d.log.Warn("LLM provider unavailable, doubts are disabled", "provider", cfg.Provider, "error", err)
		return nil
	}
	return doubts.NewService(provider, doubts.DefaultConfig())
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}
