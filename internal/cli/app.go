package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/proofescrow/internal/config"
	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/rpggio/proofescrow/internal/ledger"
	"github.com/rpggio/proofescrow/internal/sqlite"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sqlite.DB
	host    *ledger.Host
	closers []io.Closer
}

// openApp loads configuration and opens the ledger database.
// logWriter receives logs unless ESCROW_LOG_PATH names a file.
func openApp(opts *RootOptions, logWriter io.Writer) (*app, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv("ESCROW_CONFIG_PATH")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "config error", err)
	}

	a := &app{cfg: cfg}

	if logPath := os.Getenv("ESCROW_LOG_PATH"); logPath != "" {
		fileWriter, err := newLogFileWriter(logPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "log file error", err)
		}
		a.closers = append(a.closers, fileWriter)
		logWriter = fileWriter
	}
	level := parseLogLevel(cfg.Log.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "failed to prepare database path", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	a.closers = append([]io.Closer{db}, a.closers...)
	a.db = db

	if err := db.RunMigrations(); err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "failed to run migrations", err)
	}

	a.host = ledger.NewHost(db, ledger.SystemClock{}, ledger.Options{
		Payout: ledger.NewLogPayout(a.logger),
		Admin:  project.Address(cfg.Registry.Admin),
		Logger: a.logger,
	})
	return a, nil
}

// caller resolves the identity direct commands run as.
func (a *app) caller(opts *RootOptions) project.Address {
	if opts.As != "" {
		return project.Address(opts.As)
	}
	return project.Address(a.cfg.Auth.LocalIdentity)
}

func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
