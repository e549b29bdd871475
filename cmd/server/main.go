package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/messaging"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

var build = "develop"

func main() {
	cfg, help, err := config.Parse(build)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	log.WithField("build", build).Info("starting storefront")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := cfg.PricingPolicy()
	if err != nil {
		log.WithError(err).Fatal("pricing policy")
	}

	// Initialize MySQL
	var db *sql.DB
	if cfg.NeedsMySQL() {
		if cfg.MySQL.Migrate {
			if err := storage.MigrateMySQL(cfg.MySQL.DSN); err != nil {
				log.WithError(err).Fatal("failed to migrate mysql")
			}
		}

		db, err = sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			log.WithError(err).Fatal("failed to connect mysql")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.WithError(err).Fatal("failed to ping mysql")
		}
		log.Info("connected to mysql")
	}

	// Load catalog
	var source port.CatalogSource
	switch cfg.Catalog.Source {
	case config.CatalogMySQL:
		source = storage.NewMySQLAdapter(db)
	case config.CatalogFile:
		source = storage.NewJSONCatalog(cfg.Catalog.Path)
	default:
		source = storage.NewJSONCatalog("")
	}

	products, err := source.LoadProducts(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to load catalog")
	}
	catalog, err := service.NewCatalog(products)
	if err != nil {
		log.WithError(err).Fatal("invalid catalog")
	}
	log.WithFields(logrus.Fields{"source": cfg.Catalog.Source, "products": catalog.Len()}).Info("catalog loaded")

	// Initialize cart storage
	var rdb *redis.Client
	var slot port.SnapshotSlot
	switch cfg.Cart.Storage {
	case config.StorageRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis not reachable, starting with an empty cart")
		} else {
			log.Info("connected to redis")
		}
		slot = storage.NewRedisSlot(rdb, cfg.Redis.TTL)
	default:
		slot = storage.NewFileSlot(cfg.Cart.Dir)
	}
	slot = storage.NewBreakerSlot(cfg.Cart.Storage, slot, cfg.Cart.BreakerFailures, cfg.Cart.BreakerOpen, log)

	store := storage.NewCartStore(slot, cfg.Cart.Key, log)
	ledger := service.NewLedger(ctx, store, cfg.Cart.SaveTimeout, log)
	unsubscribe := ledger.Subscribe(func(s domain.Snapshot) {
		log.WithFields(logrus.Fields{"lines": len(s), "items": s.ItemCount()}).Debug("cart changed")
	})

	// Initialize order sink
	var sink port.OrderSink
	var orders port.OrderReader
	var kafkaPub *messaging.KafkaPublisher
	switch cfg.Orders.Sink {
	case config.SinkMySQL:
		mysqlOrders := storage.NewMySQLAdapter(db)
		sink = mysqlOrders
		orders = mysqlOrders
	case config.SinkKafka:
		kafkaPub = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		sink = kafkaPub
	default:
		sink = messaging.NewLogPublisher(log)
	}

	checkout := service.NewCheckoutService(ledger, policy, cfg.Orders.QueueSize, log)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.Orders.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, checkout.GetOrderQueue(), sink, log)
		}(i)
	}
	log.WithFields(logrus.Fields{"workers": cfg.Orders.Workers, "sink": cfg.Orders.Sink}).Info("started workers")

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(catalog, ledger, checkout, orders, policy, log)
	limiter := handler.NewRateLimiter(cfg.Web.CheckoutRPS, cfg.Web.CheckoutBurst, 10*time.Minute)

	httpServer := &http.Server{
		Addr:         cfg.Web.Address,
		Handler:      handler.NewRouter(httpHandler, limiter, cfg.Web.TrustProxy, log),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Web.Address).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.WithError(err).Error("HTTP server error")
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown")
		httpServer.Close()
	}
	log.Info("HTTP server stopped")

	// Close order queue and wait for workers
	checkout.Close()
	wg.Wait()
	log.Info("workers stopped")

	unsubscribe()
	if err := ledger.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("cart not fully saved")
	}
	log.Info("cart saved")

	// Close connections
	if kafkaPub != nil {
		kafkaPub.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	log.Info("connections closed")
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.Log.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func workerLoop(id int, queue <-chan domain.Order, sink port.OrderSink, log logrus.FieldLogger) {
	log = log.WithField("worker", id)
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := sink.RecordOrder(ctx, order); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Error("failed to record order")
		} else {
			log.WithField("order_id", order.ID).Debug("recorded order")
		}

		cancel()
	}
}
