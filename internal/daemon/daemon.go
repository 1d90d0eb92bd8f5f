package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"tagsmith/internal/config"
	"tagsmith/internal/history"
	"tagsmith/internal/inference"
	"tagsmith/internal/logging"
	"tagsmith/internal/tagstore"
)

// Daemon owns the settings store, the audit history, and the HTTP API,
// and enforces single-instance execution via a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *tagstore.Store
	hist   *history.Store
	infer  *inference.Client

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	SettingsPath string
	LockFilePath string
	TagCount     int
	EnabledCount int
}

// New constructs a daemon with initialized dependencies. hist and infer
// may be nil when those subsystems are disabled.
func New(cfg *config.Config, store *tagstore.Store, hist *history.Store, infer *inference.Client, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "tagsmithd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		hist:     hist,
		infer:    infer,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tagsmith daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("tagsmith daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("tagsmith daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.hist != nil {
		return d.hist.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or empty before Start.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	total, enabled := d.store.Count()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		SettingsPath: d.store.Path(),
		LockFilePath: d.lockPath,
		TagCount:     total,
		EnabledCount: enabled,
	}
}
