package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weighttracker/internal/adapter/csvfile"
	"weighttracker/internal/adapter/memory"
	"weighttracker/internal/adapter/postgres"
	"weighttracker/internal/adapter/sqlite"
	"weighttracker/internal/app"
	"weighttracker/internal/config"
	"weighttracker/internal/domain"
	"weighttracker/internal/logging"
)

// options holds the persistent flag values. Empty values defer to the
// config file and environment.
type options struct {
	configPath string
	driver     string
	path       string
	dsn        string
	logLevel   string
	unit       string
}

// apply overrides cfg with the flags the user actually set.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Driver = o.driver
	}
	if flags.Changed("file") {
		cfg.Store.Path = o.path
	}
	if flags.Changed("dsn") {
		cfg.Store.DSN = o.dsn
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("unit") {
		cfg.Unit = o.unit
	}
}

// session is everything a command needs to work with the record store.
type session struct {
	cfg    config.Config
	log    *zap.Logger
	store  *app.RecordStore
	closer func() error
}

func (s *session) close() {
	if s.closer != nil {
		if err := s.closer(); err != nil {
			s.log.Warn("close store", zap.Error(err))
		}
	}
	_ = s.log.Sync()
}

func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	opts.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("store", cfg.Store.Driver))

	repo, closer, err := openRepository(cmd, cfg.Store)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open %s: %w", describe(cfg.Store), err)
	}

	store, err := app.LoadRecordStore(cmd.Context(), repo, log)
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		_ = log.Sync()
		if errors.Is(err, domain.ErrCorruptData) {
			return nil, fmt.Errorf("cannot read weight records from %s, refusing to start with an empty store: %w", describe(cfg.Store), err)
		}
		return nil, fmt.Errorf("cannot read weight records from %s: %w", describe(cfg.Store), err)
	}
	log.Debug("session opened", zap.Int("records", len(store.List())))
	return &session{cfg: cfg, log: log, store: store, closer: closer}, nil
}

func openRepository(cmd *cobra.Command, sc config.StoreConfig) (domain.WeightRepository, func() error, error) {
	switch sc.Driver {
	case config.DriverCSV:
		return csvfile.New(sc.Path), nil, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cmd.Context(), sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cmd.Context(), sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.DriverMemory:
		return memory.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", sc.Driver)
}

// describe names the backing medium without leaking credentials.
func describe(sc config.StoreConfig) string {
	switch sc.Driver {
	case config.DriverCSV, config.DriverSQLite:
		return fmt.Sprintf("%s file %s", sc.Driver, sc.Path)
	default:
		return sc.Driver + " store"
	}
}
