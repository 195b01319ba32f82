// Package server wires the milestone server together: database, object
// storage, Redis, the event broker, the workflows and the gRPC and HTTP
// endpoints, and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
	"github.com/dmitrijs2005/milestonegate/internal/server/config"
	"github.com/dmitrijs2005/milestonegate/internal/server/events"
	"github.com/dmitrijs2005/milestonegate/internal/server/httpapi"
	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/server/ratelimit"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
	"github.com/dmitrijs2005/milestonegate/internal/server/seed"
	"github.com/dmitrijs2005/milestonegate/internal/server/services"
	"github.com/dmitrijs2005/milestonegate/internal/server/storage"
	"github.com/dmitrijs2005/milestonegate/internal/server/sweeper"
	"github.com/dmitrijs2005/milestonegate/internal/server/watermark"

	gs "github.com/dmitrijs2005/milestonegate/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	closers []io.Closer

	grpcServer *gs.GRPCServer
	httpServer *httpapi.Server
	sweeper    *sweeper.Sweeper
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}
	if err := app.init(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config
	logger := app.logger

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	app.closers = append(app.closers, db)

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return fmt.Errorf("repository manager error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if c.SeedFile != "" {
		fixture, err := seed.Load(c.SeedFile)
		if err != nil {
			return fmt.Errorf("seed load error: %w", err)
		}
		n, err := seed.Apply(ctx, db, fixture)
		if err != nil {
			return fmt.Errorf("seed apply error: %w", err)
		}
		logger.Info(ctx, "seed applied", "file", c.SeedFile, "milestones_inserted", n)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return fmt.Errorf("object storage init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	var cache watermark.Cache = watermark.NoCache{}
	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		app.closers = append(app.closers, rdb)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// limiter fails open and the cache misses until Redis is back
			logger.Warn(ctx, "redis unreachable at startup", "addr", c.RedisAddr, "error", err)
		}
		if c.UploadsPerMinute > 0 {
			limiter = ratelimit.NewRedisLimiter(rdb, int64(c.UploadsPerMinute), time.Minute, logger)
		}
		cache = watermark.NewRedisCache(rdb)
	}

	var publisher events.Publisher = events.Nop{}
	if c.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(c.AMQPURL, events.DefaultExchange)
		if err != nil {
			logger.Warn(ctx, "event publishing disabled", "error", err)
		} else {
			app.closers = append(app.closers, p)
			publisher = p
		}
	}

	deps := services.Deps{
		DB:    db,
		Repos: rm,
		Store: store,
		Buckets: services.Buckets{
			Proofs:       c.ProofsBucket,
			Deliverables: c.DeliverablesBucket,
		},
		Limiter: limiter,
		Monitor: security.NewLogMonitor(logger, m.SecurityEvents),
		Events:  events.NewBestEffort(publisher, logger, m.EventsPublished),
		Metrics: m,
		Logger:  logger,
	}

	renderer := watermark.NewRenderer(store, watermark.Options{
		Bucket:  c.DeliverablesBucket,
		TTL:     c.PreviewTTL,
		Cache:   cache,
		Logger:  logger,
		Counter: m.PreviewRenders,
	})

	payments := services.NewPaymentService(deps)
	deliverables := services.NewDeliverableService(deps)
	access := services.NewAccessService(deps, renderer)

	app.grpcServer, err = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, m, payments, deliverables, access, c.SecretKey)
	if err != nil {
		return fmt.Errorf("grpc server init error: %w", err)
	}
	app.httpServer = httpapi.NewServer(c.EndpointAddrHTTP, logger, m, registry, access, c.SecretKey)

	app.sweeper = sweeper.New(store, rm.Milestones(db), sweeper.Options{
		ProofsBucket:       c.ProofsBucket,
		DeliverablesBucket: c.DeliverablesBucket,
		Grace:              c.OrphanGrace,
		PreviewTTL:         c.PreviewTTL,
		Interval:           c.SweepInterval,
		Logger:             logger.With("module", "sweeper"),
		Counter:            m.OrphansDeleted,
	})
	return nil
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
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

// runServer runs a blocking server and cancels the whole app when it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
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
		app.runServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.httpServer.Run)
	}()
	go func() {
		defer wg.Done()
		if app.config.SweepInterval > 0 {
			app.sweeper.Start(ctx)
		}
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
