package main

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/yeremiapane/honda-dealer/cache"
	"github.com/yeremiapane/honda-dealer/config"
	"github.com/yeremiapane/honda-dealer/database"
	"github.com/yeremiapane/honda-dealer/events"
	"github.com/yeremiapane/honda-dealer/hub"
	"github.com/yeremiapane/honda-dealer/repository"
	"github.com/yeremiapane/honda-dealer/router"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/storage"
	"github.com/yeremiapane/honda-dealer/utils"
)

// application holds every wired component of one process.
type application struct {
	cfg      *config.Config
	db       *gorm.DB
	registry *prometheus.Registry
	hub      *hub.Hub
	files    *storage.LocalStore

	motorcycles *repository.MotorcycleRepository
	users       *services.UserService
	catalog     *services.CatalogService
	orders      *services.OrderService
	payments    *services.PaymentService

	closers []io.Closer
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, db: db, registry: prometheus.NewRegistry(), hub: hub.New()}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if app.files, err = storage.NewLocalStore(cfg.UploadDir); err != nil {
		return nil, err
	}

	emitter := services.Emitter{
		Publisher: services.NoopPublisher{},
		Notifier:  app.hub,
		Monitor:   services.NewPaymentMonitor(app.registry),
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.Dial(ctx, cfg.KafkaBrokers, "honda-dealer", 5)
		if err != nil {
			utils.ErrorLogger.Errorf("Kafka unavailable, events are not published: %v", err)
		} else {
			publisher := events.NewKafkaPublisher(producer, cfg.KafkaTopicPrefix)
			emitter.Publisher = publisher
			app.closers = append(app.closers, publisher)
		}
	}

	var catalogCache services.Cache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			utils.ErrorLogger.Errorf("Redis unavailable, catalog is not cached: %v", err)
		} else {
			catalogCache = cache.NewRedisCache(rdb, "honda-dealer:")
			app.closers = append(app.closers, rdb)
		}
	}

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	app.motorcycles = repository.NewMotorcycleRepository(db)

	cached := services.NewCachedCatalog(app.motorcycles, catalogCache, cfg.CatalogTTL)
	app.users = services.NewUserService(repository.NewUserRepository(db))
	app.catalog = services.NewCatalogService(cached, app.motorcycles, app.files, emitter)
	app.orders = services.NewOrderService(orderRepo, app.motorcycles, emitter)
	app.payments = services.NewPaymentService(orderRepo, paymentRepo, app.files, cfg.PaymentSettings, emitter)
	return app, nil
}

func (app *application) router() router.Dependencies {
	return router.Dependencies{
		Users:          app.users,
		Catalog:        app.catalog,
		Orders:         app.orders,
		Payments:       app.payments,
		Files:          app.files,
		Hub:            app.hub,
		Metrics:        app.registry,
		UploadDir:      app.cfg.UploadDir,
		AllowedOrigins: app.cfg.AllowedOrigins,
		RateLimit:      app.cfg.RateLimit,
		RateBurst:      app.cfg.RateBurst,
	}
}

func (app *application) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			utils.ErrorLogger.Errorf("close failed: %v", err)
		}
	}
	if sqlDB, err := app.db.DB(); err == nil {
		sqlDB.Close()
	}
}
