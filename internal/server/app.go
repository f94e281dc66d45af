// Package server initializes and runs the catalog server.
// It opens the database, applies migrations, wires services, and runs the
// gRPC endpoint, the metrics endpoint and the recycle-bin purge loop until
// a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/config"
	"github.com/dmitrijs2005/assetcatalog/internal/server/metrics"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetcatalog/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/assetcatalog/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	assetService *services.AssetService
	tagService   *services.TagService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logging.NewWriter(logging.Options{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
	}), c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	store := services.NewObjectStore(c)
	as := services.NewAssetService(db, rm, c, store, logger, m)
	ts := services.NewTagService(db, rm, logger)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		registry:     registry,
		metrics:      m,
		assetService: as,
		tagService:   ts,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.assetService, app.tagService,
		app.config.SecretKey, app.metrics.UnaryServerInterceptor())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context) {
	metrics.NewServer(app.config.EndpointAddrMetrics, app.registry, app.logger).Run(ctx)
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// runPurgeLoop purges expired recycle-bin assets on every tick until ctx is
// done. Failures are logged and retried on the next tick.
func runPurgeLoop(ctx context.Context, p expiredPurger, tick <-chan time.Time, m *metrics.Metrics, logger logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick:
			n, err := p.PurgeExpired(ctx, now)
			if err != nil {
				logger.Error(ctx, "recycle bin purge failed", "error", err)
				continue
			}
			m.AssetsPurged(n)
		}
	}
}

func (app *App) startPurgeLoop(ctx context.Context) {
	if app.config.PurgeInterval <= 0 {
		app.logger.Info(ctx, "recycle bin purge disabled")
		return
	}
	ticker := time.NewTicker(app.config.PurgeInterval)
	defer ticker.Stop()

	runPurgeLoop(ctx, app.assetService, ticker.C, app.metrics, app.logger.With("module", "purge"))
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startPurgeLoop(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "failed to close database", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
