// Package server wires the backend together: it opens and migrates the
// database, builds the services and runs the gRPC and metrics servers until
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

	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/server/chain"
	"github.com/dmitrijs2005/permavault/internal/server/config"
	"github.com/dmitrijs2005/permavault/internal/server/metrics"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/permavault/internal/server/services"

	gs "github.com/dmitrijs2005/permavault/internal/server/grpc"
)

// initDatabase is a seam for tests.
var initDatabase = repomanager.InitDatabase

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	metrics *metrics.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.NewProductionLogger(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	return newApp(ctx, c, logger, repomanager.NewPostgresRepositoryManager())
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	db, err := initDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	oracle := chain.NewExplorer(chain.ExplorerConfig{
		BaseURL:       c.ExplorerURL,
		APIKey:        c.ExplorerAPIKey,
		TokenContract: c.TokenContract,
		TokenDecimals: c.TokenDecimals,
	})

	svc := gs.Services{
		Users:    services.NewUserService(db, rm, c, logger),
		Payments: services.NewPaymentService(db, rm, oracle, c, logger),
		Uploads:  services.NewUploadService(db, rm, logger),
		Access:   services.NewAccessService(db, rm, c, logger),
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, c.SecretKey),
		metrics: metrics.NewServer(c.MetricsAddr, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server", "err", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.metrics.Run(ctx); err != nil {
			app.logger.Error(ctx, "metrics server", "err", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "err", err)
	}
	app.logger.Info(ctx, "Stopped")
}
