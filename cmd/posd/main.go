package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/config"
	"github.com/Skotchmaster/bigbrew_pos/internal/events"
	"github.com/Skotchmaster/bigbrew_pos/internal/httpserver"
	"github.com/Skotchmaster/bigbrew_pos/internal/models"
	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/Skotchmaster/bigbrew_pos/internal/search"
	"github.com/Skotchmaster/bigbrew_pos/internal/service"
	"github.com/Skotchmaster/bigbrew_pos/pkg/db"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	loggingmw "github.com/Skotchmaster/bigbrew_pos/pkg/middleware/logging"
)

func main() {
	envErr := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	if envErr != nil {
		logger.Info("env_file_skipped", "error", envErr)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if cfg.AutoMigrate {
		if err := gdb.AutoMigrate(models.All()...); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		logger.Info("schema_migrated")
	}

	overrides, err := schema.LoadOverrides(cfg.SchemaOverrides)
	if err != nil {
		log.Fatalf("schema overrides: %v", err)
	}
	resolver := schema.NewResolver(schema.GormColumns{DB: gdb}, overrides, logger)

	capsCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	caps, err := schema.LoadCapabilities(capsCtx, resolver, cfg.SchemaStrict)
	cancel()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}
	logger.Info("schema_resolved", "generation", caps.Generation,
		"missing_catalog", caps.Catalog.Missing, "missing_sales", caps.Sales.Missing)

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.SalesTopic)
		publisher = producer
		logger.Info("events_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.SalesTopic)
	}

	var indexer search.Indexer = search.Nop{}
	var searcher httpserver.SaleSearcher
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, logger)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		idx := search.NewSalesIndex(esClient, cfg.ESIndex)
		indexer, searcher = idx, idx
	}

	store := cart.Open(cfg.CartFile, logger)
	rp := repo.New(gdb, caps, repo.ActorPolicy(cfg.ActorPolicy), logger)

	orders := &service.OrderService{Repo: rp}
	sales := &service.SalesService{Repo: rp, Events: publisher, Index: indexer, Loc: cfg.Location}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.Secure(), middleware.BodyLimit("1M"))
	e.Use(loggingmw.RequestLogger(logger))

	checkout := &service.CheckoutService{Cart: store, Orders: orders, Sales: sales, Events: publisher}
	httpserver.Register(e, &httpserver.Deps{
		DB:               gdb,
		CartHandler:      &httpserver.CartHTTP{Store: store},
		CheckoutHandler:  &httpserver.CheckoutHTTP{Svc: checkout},
		SalesHandler:     &httpserver.SalesHTTP{Svc: sales, Search: searcher},
		InventoryHandler: &httpserver.InventoryHTTP{Svc: &service.InventoryService{Repo: rp}},
		SchemaHandler:    &httpserver.SchemaHTTP{Caps: caps},
		JWTSecret:        cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_starting", "port", cfg.Port, "driver", cfg.DBDriver, "cart_file", cfg.CartFile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	logger.Info("shutdown_complete")
}
