// File: winqroo/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"winqroo/config"
	"winqroo/cron"
	"winqroo/database"
	appointmentRepoPkg "winqroo/database/repository/appointment"
	queueRepoPkg "winqroo/database/repository/queue"
	serviceRepoPkg "winqroo/database/repository/service"
	shopRepoPkg "winqroo/database/repository/shop"
	userRepoPkg "winqroo/database/repository/user"
	"winqroo/handlers"
	"winqroo/middleware"
	"winqroo/routes"
	"winqroo/services/appointment"
	"winqroo/services/queue"
	"winqroo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type indexEnsurer interface {
	EnsureIndexes() error
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	qRepo := queueRepoPkg.NewMongoQueueRepo()
	shpRepo := shopRepoPkg.NewMongoShopRepo()
	svcRepo := serviceRepoPkg.NewMongoServiceRepo()
	apptRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	usrRepo := userRepoPkg.NewMongoUserRepo()

	for _, repo := range []any{qRepo, shpRepo, svcRepo, apptRepo, usrRepo} {
		if ie, ok := repo.(indexEnsurer); ok {
			if err := ie.EnsureIndexes(); err != nil {
				logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
			}
		}
	}

	// services.
	queueService := &queue.DefaultQueueService{
		Repo:     qRepo,
		Services: svcRepo,
	}
	appointmentService := &appointment.DefaultAppointmentService{
		Repo:      apptRepo,
		Services:  svcRepo,
		Reminders: cron.NewReminderScheduler(),
	}

	queueHandler := handlers.NewQueueHandler(queueService, shpRepo, usrRepo, utils.GetCacheClient(), logger)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, shpRepo, usrRepo, logger)
	catalogHandler := handlers.NewCatalogHandler(shpRepo, svcRepo, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ShopRepo: shpRepo,
		UserRepo: usrRepo,

		// Queue endpoints.
		JoinQueueHandler:         queueHandler.JoinQueueHandler,
		GetShopQueuesHandler:     queueHandler.GetShopQueuesHandler,
		GetActiveQueueHandler:    queueHandler.GetActiveQueueHandler,
		GetMyQueuesHandler:       queueHandler.GetMyQueuesHandler,
		UpdateQueueStatusHandler: queueHandler.UpdateQueueStatusHandler,
		SwapPositionsHandler:     queueHandler.SwapPositionsHandler,
		LeaveQueueHandler:        queueHandler.LeaveQueueHandler,

		// Appointment endpoints.
		BookAppointmentHandler:         appointmentHandler.BookAppointmentHandler,
		GetMyAppointmentsHandler:       appointmentHandler.GetMyAppointmentsHandler,
		GetShopAppointmentsHandler:     appointmentHandler.GetShopAppointmentsHandler,
		UpdateAppointmentStatusHandler: appointmentHandler.UpdateAppointmentStatusHandler,
		CancelAppointmentHandler:       appointmentHandler.CancelAppointmentHandler,

		// Shop directory and service catalog endpoints.
		ListShopsHandler:        catalogHandler.ListShopsHandler,
		GetShopHandler:          catalogHandler.GetShopHandler,
		CreateShopHandler:       catalogHandler.CreateShopHandler,
		ListShopServicesHandler: catalogHandler.ListShopServicesHandler,
		CreateServiceHandler:    catalogHandler.CreateServiceHandler,
		UpdateServiceHandler:    catalogHandler.UpdateServiceHandler,
		DeleteServiceHandler:    catalogHandler.DeleteServiceHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the reminder worker and health monitor in the background.
	cron.InitReminderWorker(apptRepo)
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "5000"
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
