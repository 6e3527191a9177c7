package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/cache"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/memory"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/postgres"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/ws"
	"github.com/YelzhanWeb/food-delivery/internal/app/catalog"
	"github.com/YelzhanWeb/food-delivery/internal/app/notification"
	"github.com/YelzhanWeb/food-delivery/internal/app/order"
	"github.com/YelzhanWeb/food-delivery/internal/app/progression"
	"github.com/YelzhanWeb/food-delivery/internal/app/tracking"
	"github.com/YelzhanWeb/food-delivery/internal/config"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	amqpAdapter "github.com/YelzhanWeb/food-delivery/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/food-delivery/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "api", "Service mode: api, notification-subscriber, seed")
	configPath := flag.String("config", "config.yaml", "Path to the yaml config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	lgr := logger.NewWithWriter(*mode, os.Stdout, logger.ParseLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	case "seed":
		err = runSeed(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil {
		lgr.Error("service_failed", "Service stopped with error", "shutdown", nil, err)
		os.Exit(1)
	}
}

type stores struct {
	orders interfaces.OrderRepository
	menu   interfaces.MenuRepository
	close  func()
}

func openStores(ctx context.Context, cfg *config.Config, lgr logger.Logger) (*stores, error) {
	s := &stores{close: func() {}}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		s.orders = memory.NewOrderRepository()
		s.menu = memory.NewMenuRepository()
		lgr.Warn("storage_memory", "Using in-memory storage, data is lost on restart", "startup", nil)

	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})
		s.orders = postgres.NewOrderRepository(db)
		s.menu = postgres.NewMenuRepository(db)
		s.close = db.Close
	}

	if cfg.Redis.Enabled {
		c := cache.NewRedisCache(cfg.Redis.Addr, "food-delivery")
		if err := cache.Ping(ctx, c); err != nil {
			lgr.Error("redis_unavailable", "Redis unavailable, menu cache disabled", "startup", map[string]interface{}{
				"addr": cfg.Redis.Addr,
			}, err)
		} else {
			s.menu = cache.NewCachedMenuRepository(s.menu, c, cfg.Redis.TTL, lgr)
			lgr.Info("redis_connected", "Menu cache enabled", "startup", map[string]interface{}{"addr": cfg.Redis.Addr})
		}
	}

	return s, nil
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	st, err := openStores(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer st.close()

	hub := notification.NewHub(lgr, cfg.Hub.BufferSize)
	publishers := []interfaces.StatusPublisher{hub}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			// Ретранслятор необязателен, API работает без него
			lgr.Error("rabbitmq_unavailable", "RabbitMQ unavailable, status relay disabled", "startup", nil, err)
		} else {
			defer mqConn.Close()
			publishers = append(publishers, rabbitmq.NewPublisher(mqConn))
			lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
				"host": cfg.RabbitMQ.Host,
			})
		}
	}

	scheduler, err := progression.NewScheduler(st.orders, lgr, progression.RealClock(), progression.FromConfig(cfg.Progression), publishers...)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	catalogService := catalog.NewService(st.menu, lgr)
	if err := seedOnStart(ctx, cfg, catalogService, lgr); err != nil {
		return err
	}
	orderService := order.NewService(st.orders, st.menu, scheduler, lgr)
	trackingService := tracking.NewService(st.orders, lgr)

	var limiter *rate.Limiter
	if cfg.Server.CreateRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.CreateRate), cfg.Server.CreateBurst)
	}

	handler := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Orders:        orderService,
		Tracking:      trackingService,
		Catalog:       catalogService,
		Logger:        lgr,
		WebSocket:     ws.NewHandler(hub, lgr, cfg.Server.AllowedOrigin),
		Environment:   cfg.Server.Environment,
		Pending:       scheduler.Pending,
		CreateLimiter: limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lgr.Info("service_started", fmt.Sprintf("API started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
			"storage":     cfg.Storage.Driver,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Сначала новые запросы, затем таймеры и подписчики
		err := server.Shutdown(shutdownCtx)
		scheduler.Stop()
		hub.Close()
		if err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// seedOnStart fills an empty menu before serving. The memory store starts
// empty on every run, so it is always seeded.
func seedOnStart(ctx context.Context, cfg *config.Config, svc interfaces.CatalogService, lgr logger.Logger) error {
	if cfg.Storage.Driver != config.StorageMemory && !cfg.Storage.SeedOnStart {
		return nil
	}

	n, err := svc.Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}
	if n > 0 {
		lgr.Info("seed_completed", fmt.Sprintf("Menu seeded with %d items", n), "startup", nil)
	}
	return nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	handler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	err = consumer.ConsumeNotifications(ctx, handler.HandleNotification)
	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runSeed(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	if cfg.Storage.Driver == config.StorageMemory {
		return errors.New("seed needs a persistent storage driver, the memory store is seeded by the api mode")
	}

	st, err := openStores(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer st.close()

	n, err := catalog.NewService(st.menu, lgr).Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}

	lgr.Info("seed_completed", fmt.Sprintf("Database seeded with %d menu items", n), "startup", nil)
	return nil
}
