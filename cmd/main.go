package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/adapter/postgres"
	"github.com/YelzhanWeb/storefront/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/storefront/internal/app/journal"
	"github.com/YelzhanWeb/storefront/internal/app/menu"
	"github.com/YelzhanWeb/storefront/internal/app/storefront"
	"github.com/YelzhanWeb/storefront/internal/config"
	"github.com/YelzhanWeb/storefront/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/storefront/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/storefront/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "storefront", "Service mode: storefront, notification-subscriber, migrate")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	lgr := logger.New(*mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "storefront":
		runStorefront(ctx, cfg, lgr)

	case "notification-subscriber":
		runNotificationSubscriber(ctx, cfg, lgr)

	case "migrate":
		runMigrate(ctx, cfg, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runStorefront(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	client := &http.Client{Timeout: cfg.Storefront.RequestTimeout}

	menuService := menu.NewService(httpAdapter.NewMenuClient(cfg.Storefront.MenuEndpoint, client, lgr), lgr)
	defer menuService.Close()
	submitter := httpAdapter.NewOrderSubmitter(cfg.Storefront.OrderEndpoint, client, lgr)

	mux := http.NewServeMux()

	// Both side channels are optional; leave the interfaces nil when off.
	var dispatches interfaces.DispatchRepository
	if cfg.Database.Enabled() {
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})

		dispatches = postgres.NewDispatchRepository(db)
		httpAdapter.NewJournalHandler(journal.NewService(dispatches, lgr), lgr).Routes(mux)
	}

	var publisher interfaces.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mqConn.Close()

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})

		publisher = rabbitmq.NewPublisher(mqConn, cfg.RabbitMQ.ConfirmTimeout)
	}

	sessions := storefront.NewRegistry(submitter, dispatches, publisher, lgr, cfg.Server.SessionIdleTimeout)
	defer sessions.Close()
	go sessions.Run(ctx, sweepInterval(cfg.Server.SessionIdleTimeout))

	httpAdapter.NewStorefrontHandler(menuService, sessions, lgr).Routes(mux)

	go func() {
		if _, err := menuService.Load(ctx); err != nil {
			lgr.Error("menu_initial_load_failed", "Initial menu load failed", "startup", nil, err)
		}
	}()

	handler := httpAdapter.RecoveryMiddleware(lgr)(mux)
	handler = httpAdapter.LoggingMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Storefront.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Storefront started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":      cfg.Server.Port,
		"journal":   cfg.Database.Enabled(),
		"messaging": cfg.RabbitMQ.Enabled(),
	})

	go func() {
		<-ctx.Done()

		lgr.Info("shutdown_initiated", "Shutting down Storefront", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	if !cfg.RabbitMQ.Enabled() {
		log.Fatal("rabbitmq.host is required for notification-subscriber mode")
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	if err := consumer.ConsumeNotifications(ctx, notificationHandler.HandleNotification); err != nil && ctx.Err() == nil {
		lgr.Error("consumer_error", "Error consuming notifications", "runtime", nil, err)
	}

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
}

func runMigrate(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	if !cfg.Database.Enabled() {
		log.Fatal("database.host is required for migrate mode")
	}

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	lgr.Info("schema_applied", "Dispatch journal schema is up to date", "startup", map[string]interface{}{
		"db": cfg.Database.Database,
	})
}

func sweepInterval(idle time.Duration) time.Duration {
	if interval := idle / 2; interval > time.Minute {
		return interval
	}
	return time.Minute
}
