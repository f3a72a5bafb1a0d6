package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/glintmarket/storefront/internal/config"
	"github.com/glintmarket/storefront/internal/es"
	"github.com/glintmarket/storefront/internal/events"
	"github.com/glintmarket/storefront/internal/handlers"
	"github.com/glintmarket/storefront/internal/logging"
	authmw "github.com/glintmarket/storefront/internal/middleware/auth"
	"github.com/glintmarket/storefront/internal/service/token"
	httpserver "github.com/glintmarket/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","))
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
	}

	tokens := &token.Service{Secret: []byte(configuration.JWT_SECRET)}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth:                &authmw.Middleware{DB: db, Tokens: tokens},
		AuthHandler:         &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		CatalogHandler:      &handlers.CatalogHandler{DB: db},
		ProductHandler:      &handlers.ProductHandler{DB: db, ES: esClient, Producer: producer},
		ReviewHandler:       &handlers.ReviewHandler{DB: db},
		AddressHandler:      &handlers.AddressHandler{DB: db},
		UserHandler:         &handlers.UserHandler{DB: db},
		OrderHandler:        &handlers.OrderHandler{DB: db, Producer: producer},
		NotificationHandler: &handlers.NotificationHandler{DB: db},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: es.ProductIndex},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
