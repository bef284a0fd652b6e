package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	auditadapters "bookstore/internal/audit/adapters"
	auditapp "bookstore/internal/audit/application"
	auditinfra "bookstore/internal/audit/infrastructure"
	cartadapters "bookstore/internal/cart/adapters"
	cartapp "bookstore/internal/cart/application"
	cartinfra "bookstore/internal/cart/infrastructure"
	catalogadapters "bookstore/internal/catalog/adapters"
	catalogapp "bookstore/internal/catalog/application"
	cataloginfra "bookstore/internal/catalog/infrastructure"
	catalogports "bookstore/internal/catalog/ports"
	ordersadapters "bookstore/internal/orders/adapters"
	ordersapp "bookstore/internal/orders/application"
	ordersinfra "bookstore/internal/orders/infrastructure"
	ordersports "bookstore/internal/orders/ports"
	wishlistadapters "bookstore/internal/wishlist/adapters"
	wishlistapp "bookstore/internal/wishlist/application"
	wishlistinfra "bookstore/internal/wishlist/infrastructure"
	"bookstore/pkg/config"
	"bookstore/pkg/db"
	"bookstore/pkg/events"
	"bookstore/pkg/logger"
	"bookstore/pkg/middleware"
	"bookstore/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	log := logger.NewWithFormat(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting bookstore")

	dbConn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database")

	// Repositories and migrations
	bookRepo := catalogadapters.NewPostgresBookRepository(dbConn)
	cartRepo := cartadapters.NewPostgresCartRepository(dbConn)
	orderRepo := ordersadapters.NewPostgresOrderRepository(dbConn)
	wishlistRepo := wishlistadapters.NewPostgresWishlistRepository(dbConn)
	auditRepo := auditadapters.NewPostgresAuditRepository(dbConn)
	for _, migrate := range []func() error{
		bookRepo.Migrate, cartRepo.Migrate, orderRepo.Migrate, wishlistRepo.Migrate, auditRepo.Migrate,
	} {
		if err := migrate(); err != nil {
			log.Fatal("failed to migrate database: " + err.Error())
		}
	}

	// RabbitMQ publishers. Events are fire-and-forget; without a broker
	// the store still takes orders. The vars stay nil interfaces when the
	// connection fails so the use cases skip publishing.
	var alertPublisher catalogports.AlertPublisher
	var orderPublisher ordersports.EventPublisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
	} else {
		defer rabbitConn.Close()

		catalogPub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeCatalog, log)
		if err != nil {
			log.Warn("failed to create catalog publisher: " + err.Error())
		} else {
			alertPublisher = catalogadapters.NewRabbitMQAlertPublisher(catalogPub, log)
		}

		ordersPub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create orders publisher: " + err.Error())
		} else {
			orderPublisher = ordersadapters.NewRabbitMQPublisher(ordersPub, log)
		}
	}

	// Use cases. The catalog doubles as the stock ledger for orders and
	// the book source for cart and wishlist. The audit use case records
	// admin actions from catalog and orders.
	auditUseCase := auditapp.NewAuditUseCase(auditRepo, log)
	bookUseCase := catalogapp.NewBookUseCase(bookRepo, alertPublisher, auditUseCase, log)
	cartUseCase := cartapp.NewCartUseCase(cartRepo, bookUseCase, log)
	orderUseCase := ordersapp.NewOrderUseCase(orderRepo, bookUseCase, orderPublisher, auditUseCase, log)
	wishlistUseCase := wishlistapp.NewWishlistUseCase(wishlistRepo, bookUseCase, log)

	// HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	user := api.Group("")
	user.Use(middleware.UserIdentity())
	admin := api.Group("/admin")
	admin.Use(middleware.UserIdentity())

	cataloginfra.NewHTTPHandler(bookUseCase, cfg.LowStockThreshold).RegisterRoutes(api, admin)
	cartinfra.NewHTTPHandler(cartUseCase).RegisterRoutes(user)
	ordersinfra.NewHTTPHandler(orderUseCase, cartUseCase).RegisterRoutes(user, admin)
	wishlistinfra.NewHTTPHandler(wishlistUseCase).RegisterRoutes(user)
	auditinfra.NewHTTPHandler(auditUseCase).RegisterRoutes(admin)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error: " + err.Error())
	}

	log.Info("server stopped")
}
