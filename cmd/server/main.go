package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"mesaOps/internal/config"
	cartuc "mesaOps/internal/modules/cart/application/usecase"
	carthttp "mesaOps/internal/modules/cart/interface"
	customeruc "mesaOps/internal/modules/customers/application/usecase"
	customerhttp "mesaOps/internal/modules/customers/interface"
	inventoryuc "mesaOps/internal/modules/inventory/application/usecase"
	inventoryhttp "mesaOps/internal/modules/inventory/interface"
	menuuc "mesaOps/internal/modules/menu/application/usecase"
	menuhttp "mesaOps/internal/modules/menu/interface"
	orderuc "mesaOps/internal/modules/orders/application/usecase"
	orderhttp "mesaOps/internal/modules/orders/interface"
	handler "mesaOps/internal/modules/realtime/application/handler"
	usecase "mesaOps/internal/modules/realtime/application/usecase"
	realtimedomain "mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/modules/realtime/infrastructure"
	transport "mesaOps/internal/modules/realtime/interface"
	reportuc "mesaOps/internal/modules/reports/application/usecase"
	reporthttp "mesaOps/internal/modules/reports/interface"
	reservationuc "mesaOps/internal/modules/reservations/application/usecase"
	reservationhttp "mesaOps/internal/modules/reservations/interface"
	restaurantuc "mesaOps/internal/modules/restaurants/application/usecase"
	restauranthttp "mesaOps/internal/modules/restaurants/interface"
	staffuc "mesaOps/internal/modules/staff/application/usecase"
	staffhttp "mesaOps/internal/modules/staff/interface"
	tableuc "mesaOps/internal/modules/tables/application/usecase"
	tablehttp "mesaOps/internal/modules/tables/interface"
	"mesaOps/internal/platform/broker"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/platform/docstore/mongostore"
	"mesaOps/internal/shared/auth"
	"mesaOps/internal/shared/events"
	"mesaOps/internal/shared/logging"
	"mesaOps/internal/shared/normalization"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("document store unavailable", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := infrastructure.NewHub()
	registry := infrastructure.NewHandlerRegistry()
	broadcastUC := usecase.NewBroadcastUseCase(hub)
	for _, entity := range normalization.GetAllValidEntities() {
		registry.Register(handler.NewEntityStreamHandler(entity, cfg.Websocket.AllowedActions, broadcastUC))
	}

	// Without brokers, domain events go straight to the registry.
	var publisher events.Publisher = registry
	waitConsumers := func() {}
	var kafkaPublisher *broker.KafkaPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		publisher = kafkaPublisher
		waitConsumers = broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topics)
		slog.Info("kafka enabled", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("eventsTopic", cfg.Kafka.EventsTopic), slog.Any("topics", cfg.Kafka.Topics))
	} else {
		slog.Info("kafka disabled, events dispatched in-process")
	}

	lifecycle := orderuc.NewLifecycle(store, publisher)
	coordinator := tableuc.NewCoordinator(store, publisher)
	workflow := reservationuc.NewWorkflow(store, publisher)
	ledger := inventoryuc.NewLedger(store, publisher, cfg.Inventory.LowStockThreshold)
	aggregator := reportuc.NewAggregator(store, publisher)
	catalog := menuuc.NewCatalog(store, publisher)
	roster := staffuc.NewRoster(store)
	directory := restaurantuc.NewDirectory(store)
	customers := customeruc.NewRegistry(store)
	checkout := cartuc.NewCheckout(store, lifecycle)

	propagation := usecase.NewPropagation(store)
	streams := usecase.NewSnapshotStreams(propagation, usecase.NewFeed[*realtimedomain.Message](), hub)
	validator := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		if pinger, ok := store.(docstore.Pinger); ok {
			if err := pinger.Ping(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "degraded", "error": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "clients": hub.Clients()})
	})
	e.GET("/ws/notifications", transport.NewNotificationsWebsocketHandler(hub, validator, cfg.Websocket.SendBuffer))
	e.GET("/ws/order-tracking/:restaurant/:order", transport.NewOrderTrackingHandler(hub, propagation, validator, cfg.Websocket.SendBuffer))
	e.GET("/ws/:entity/:restaurant", transport.NewWebsocketHandler(hub, streams, validator, transport.WebsocketOptions{
		AllowedActions: cfg.Websocket.AllowedActions,
		SendBuffer:     cfg.Websocket.SendBuffer,
	}))

	api := e.Group("/api/v1", auth.Middleware(validator))
	scoped := api.Group("/restaurants/:restaurant", auth.RequireRestaurant("restaurant"))
	api.POST("/broadcast", transport.NewBroadcastHTTPHandler(broadcastUC), auth.RequireRoles(auth.RoleManager))

	restauranthttp.NewHandler(directory).Register(api, scoped)
	orderhttp.NewHandler(lifecycle, roster, customers).Register(scoped)
	tablehttp.NewHandler(coordinator).Register(scoped)
	reservationhttp.NewHandler(workflow, cfg.Server.Location).Register(scoped)
	inventoryhttp.NewHandler(ledger).Register(scoped)
	reporthttp.NewHandler(aggregator, cfg.Server.Location).Register(scoped)
	menuhttp.NewHandler(catalog).Register(scoped)
	staffhttp.NewHandler(roster).Register(scoped)
	customerhttp.NewHandler(customers).Register(api)
	carthttp.NewHandler(checkout, catalog.Items()).Register(api)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
	cancel()
	waitConsumers()
	streams.Close()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			slog.Warn("kafka publisher close", slog.Any("error", err))
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		slog.Warn("document store close", slog.Any("error", err))
	}
}

func openStore(cfg *config.Config) (docstore.Store, error) {
	var store docstore.Store
	switch cfg.Store.Driver {
	case config.StoreMongo:
		mongo, err := mongostore.Connect(mongostore.Config{URI: cfg.Store.MongoURI, Database: cfg.Store.Database, Timeout: cfg.Store.Timeout})
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
		defer cancel()
		if err := mongo.CreateIndexes(ctx); err != nil {
			slog.Warn("mongo index creation failed", slog.Any("error", err))
		}
		store = mongo
		slog.Info("mongo store connected", slog.String("database", cfg.Store.Database))
	default:
		store = docstore.NewMemory()
		slog.Warn("using in-memory document store, data is lost on restart")
	}
	if cfg.Tracing {
		store = docstore.NewTraced(store)
	}
	return store, nil
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	file, err := logging.OpenDailyFile(cfg.Directory, time.Now())
	if err != nil {
		return nil, nil, err
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
