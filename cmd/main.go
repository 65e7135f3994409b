package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"pink-basket/internal/handler"
	mid "pink-basket/internal/middleware"
	"pink-basket/internal/notification"
	"pink-basket/internal/repository"
	"pink-basket/internal/service"
	"pink-basket/pkg/cache"
	"pink-basket/pkg/config"
	"pink-basket/pkg/database"
	"pink-basket/pkg/jwtutil"
	"pink-basket/pkg/logger"
	"pink-basket/pkg/mailer"
	"pink-basket/pkg/media"
	"pink-basket/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (.env is read first when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting pink-basket", appConfig.LogFields()...)

	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	db, err := database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()
	log.Info("Database connection established")

	store, err := cache.New(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()

	uploader, err := media.New(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize image host", zap.Error(err))
	}

	mail, err := mailer.New(appConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Repositories
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	ledger := repository.NewInventoryLedger(db)
	orders := repository.NewOrderRepository(db)

	dispatcher := notification.NewDispatcher(orders, mail, notification.Options{
		StoreName:      appConfig.Store.Name,
		Currency:       appConfig.Store.Currency,
		ShopURL:        appConfig.Store.ShopURL,
		SupportAddress: appConfig.Mail.SupportAddress,
		SendTimeout:    appConfig.Mail.SendTimeout,
	}, log.Named("notification"))

	// Services
	catalog := service.NewCatalogService(categories, products, ledger, uploader, store, appConfig.Cache.ListingTTL, log.Named("catalog"))
	orderService := service.NewOrderService(db, products, ledger, orders, dispatcher, store, log.Named("orders"))
	reports := service.NewReportService(orders, products)

	sessions := jwtutil.NewSessionUtil(jwtutil.SessionConfig{
		SigningKey: appConfig.Admin.SessionSecret,
		TTL:        appConfig.Admin.SessionTTL,
	})
	adminHandler, err := handler.NewAdminHandler(appConfig.Admin.Password, sessions, handler.CookieConfig{
		Name:   appConfig.Admin.CookieName,
		Secure: appConfig.Admin.CookieSecure,
	}, reports)
	if err != nil {
		log.Fatal("Failed to hash admin password", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(logger.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	handler.RegisterRoutes(e, handler.Handlers{
		Categories: handler.NewCategoryHandler(catalog),
		Products:   handler.NewProductHandler(catalog, reports),
		Orders:     handler.NewOrderHandler(orderService),
		Admin:      adminHandler,
	}, mid.AdminAuth(sessions, appConfig.Admin.CookieName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	// wait for confirmation emails of orders placed before shutdown
	dispatcher.Close()
	log.Info("Server stopped")
}
