package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toltimed/config"
	"toltimed/cron"
	"toltimed/database"
	bookingRepo "toltimed/database/repository/booking"
	catalogRepo "toltimed/database/repository/catalog"
	"toltimed/handlers"
	"toltimed/middleware"
	"toltimed/routes"
	"toltimed/services/booking"
	"toltimed/services/metrics"
	"toltimed/services/notification"
	"toltimed/services/payment"
	"toltimed/services/storage"
	"toltimed/services/tasks"
	"toltimed/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	database.InitDB()
	utils.InitRedis()

	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("main: failed to register validators", zap.Error(err))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// repositories.
	catalogStore, err := catalogRepo.NewMongoCatalogRepo(database.Database())
	if err != nil {
		logger.Fatal("main: failed to initialize catalog repository", zap.Error(err))
	}
	if path := config.AppConfig.CatalogSeedFile; path != "" {
		seed, err := catalogRepo.SeedFromFile(rootCtx, catalogStore, path)
		if err != nil {
			logger.Fatal("main: failed to seed catalog", zap.String("file", path), zap.Error(err))
		}
		logger.Info("catalog seeded",
			zap.Int("services", len(seed.Services)), zap.Int("practitioners", len(seed.Practitioners)))
	}
	catalogSource := catalogRepo.NewCachedCatalog(catalogStore, utils.GetCacheClient(), 0, logger)
	if err := catalogSource.Invalidate(rootCtx); err != nil {
		logger.Warn("main: failed to clear catalog cache", zap.Error(err))
	}
	bookings, err := bookingRepo.NewMongoBookingRepo(database.Database())
	if err != nil {
		logger.Fatal("main: failed to initialize booking repository", zap.Error(err))
	}

	// notifications.
	notifiers := notification.MultiNotifier{&notification.LogNotifier{Logger: logger}}
	if path := config.AppConfig.FirebaseCredentialsFile; path != "" {
		fcm, err := utils.NewFCMClient(rootCtx, path)
		if err != nil {
			logger.Error("main: push notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, notification.NewFCMNotifier(fcm, logger))
		}
	}

	// reminders.
	reminderClient := asynq.NewClient(cron.ReminderRedisOpt())
	defer reminderClient.Close()
	reminderWorker := cron.InitReminderWorker(notifiers, logger)

	receipts := &booking.RedisReceiptNavigator{
		Client: utils.GetBookingCacheClient(),
		TTL:    config.AppConfig.ReceiptTTL,
	}

	bookingService := &booking.DefaultBookingSessionService{
		Catalog:       catalogSource,
		Practitioners: catalogSource,
		Store:         booking.NewRedisSessionStore(utils.GetBookingCacheClient(), config.AppConfig.BookingSessionTTL, config.AppConfig.SubmitTimeout+30*time.Second),
		Submitter:     bookings,
		Notifier:      notifiers,
		Navigator:     receipts,
		Reminders:     &tasks.AsynqScheduler{Client: reminderClient},
		Metrics:       bookingMetrics,
		Logger:        logger,
		SubmitTimeout: config.AppConfig.SubmitTimeout,
		ReminderLead:  config.AppConfig.ReminderLead,
		Currency:      config.AppConfig.Currency,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, receipts, bookings, logger)

	if cld, err := utils.NewCloudinary(); err != nil {
		logger.Warn("main: test-result uploads disabled", zap.Error(err))
	} else {
		bookingHandler.Storage = storage.NewCloudinaryStore(cld, config.AppConfig.AttachmentKey, logger)
	}

	if config.AppConfig.StripeKey != "" {
		stripe.Key = config.AppConfig.StripeKey
		bookingHandler.Payments = payment.NewStripeIntents(logger)
	} else {
		logger.Warn("main: payment intents disabled, STRIPE_KEY not set")
	}

	utils.StartHealthMonitor(rootCtx, 30*time.Second, utils.RedisClients(), database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestMetrics(bookingMetrics))

	handlerBundle := handlers.NewHandlerBundle(bookingHandler, utils.GetAuthCacheClient(), config.AppConfig.MaxRequestsPerMin)
	handlerBundle.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	routes.RegisterRoutes(router, handlerBundle, config.AppConfig.CORSOrigins)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	reminderWorker.Shutdown()
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("main: failed to disconnect MongoDB", zap.Error(err))
	}
	for _, client := range utils.RedisClients() {
		_ = client.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
