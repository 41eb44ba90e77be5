// Package server initializes and runs the passkeeper server process.
// It opens the database, applies migrations, handles graceful shutdown,
// and serves Prometheus metrics and a health probe over HTTP.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/metrics"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// openDB is a seam for tests.
var openDB = func(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return dbx.OpenPostgres(ctx, cfg.DatabaseDSN, cfg.MaxOpenConns, cfg.ConnMaxLifetime)
}

var (
	signalNotify = signal.Notify
	signalStop   = signal.Stop
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager *repomanager.PostgresRepositoryManager
	accounts    *services.AccountService
	registry    *prometheus.Registry
}

// NewApp opens the database and, when configured, migrates it to the latest
// schema version. Log output goes to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, c.LogLevel, c.LogFormat)

	db, err := openDB(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(repomanager.WithMetrics())

	if c.AutoMigrate {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		accounts:    services.NewAccountService(db, rm, logger),
		registry:    prometheus.NewRegistry(),
	}
	app.registry.MustRegister(metrics.NewStoredAccountsCollector(app.accounts.Total, logger))

	return app, nil
}

// initSignalHandler cancels on the first termination signal. The returned
// func blocks until the handler has unsubscribed, which happens once a
// signal arrives or ctx is done.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) (wait func()) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signalNotify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer signalStop(sigs)

		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()

	return func() { <-done }
}

// routes builds the HTTP handler: /metrics merges the default registry
// (query and event counters) with the app's own collectors.
func (app *App) routes() http.Handler {
	mux := http.NewServeMux()
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, app.registry}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", app.healthz)
	return mux
}

func (app *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Warn(ctx, "health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "metrics server listening", "addr", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "metrics server failed", "error", err)
		}
		cancelFunc()
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
			_ = srv.Close()
		}
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// shuts the HTTP server down and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	waitSignals := app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()
	cancelFunc()
	waitSignals()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "app stopped")
}
