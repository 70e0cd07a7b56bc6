package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/slotwise/scheduling-core/internal/apikey"
	"github.com/slotwise/scheduling-core/internal/availability"
	"github.com/slotwise/scheduling-core/internal/booking"
	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/config"
	"github.com/slotwise/scheduling-core/internal/database"
	"github.com/slotwise/scheduling-core/internal/handlers"
	"github.com/slotwise/scheduling-core/internal/jobs"
	"github.com/slotwise/scheduling-core/internal/jobs/dispatcher"
	"github.com/slotwise/scheduling-core/internal/locking"
	"github.com/slotwise/scheduling-core/internal/middleware"
	"github.com/slotwise/scheduling-core/internal/realtime"
	"github.com/slotwise/scheduling-core/internal/storage"
	"github.com/slotwise/scheduling-core/internal/subscribers"
	"github.com/slotwise/scheduling-core/pkg/events"
	"github.com/slotwise/scheduling-core/pkg/logger"
	"github.com/slotwise/scheduling-core/pkg/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run database migrations", "error", err)
	}
	store := storage.New(db)

	var redisClient *redis.Client
	redisClient, err = database.ConnectRedis(cfg.Redis)
	if err != nil {
		if cfg.Environment == "development" {
			log.Warn("failed to connect to redis, continuing without it", "error", err)
			redisClient = nil
		} else {
			log.Fatal("failed to connect to redis", "error", err)
		}
	}

	natsConn, err := events.Connect(cfg.NATS)
	if err != nil {
		if cfg.Environment == "development" {
			log.Warn("failed to connect to nats, continuing without it", "error", err)
			natsConn = nil
		} else {
			log.Fatal("failed to connect to nats", "error", err)
		}
	} else {
		defer natsConn.Close()
	}

	realClock := clock.RealClock{}
	zones := clock.NewZoneLoader()

	locker := locking.New(redisClient, log, cfg.Locking.TTL)

	ctx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	notificationQueue := jobs.NewRedisQueue(ctx, redisClient, natsConn,
		cfg.Jobs.NotificationsReadySubject, cfg.Jobs.NotificationsDelayedKey, realClock, log)
	webhookQueue := jobs.NewRedisQueue(ctx, redisClient, natsConn,
		cfg.Jobs.WebhooksReadySubject, cfg.Jobs.WebhooksDelayedKey, realClock, log)
	reminderQueue := jobs.NewRedisQueue(ctx, redisClient, natsConn,
		cfg.Jobs.RemindersReadySubject, cfg.Jobs.RemindersDelayedKey, realClock, log)

	jobDispatcher := dispatcher.New(redisClient, natsConn, realClock, log,
		dispatcher.Source{Name: "notifications", DelayedKey: cfg.Jobs.NotificationsDelayedKey, JobsKey: cfg.Jobs.NotificationsDelayedKey + ":jobs", ReadySubject: cfg.Jobs.NotificationsReadySubject},
		dispatcher.Source{Name: "webhooks", DelayedKey: cfg.Jobs.WebhooksDelayedKey, JobsKey: cfg.Jobs.WebhooksDelayedKey + ":jobs", ReadySubject: cfg.Jobs.WebhooksReadySubject},
		dispatcher.Source{Name: "reminders", DelayedKey: cfg.Jobs.RemindersDelayedKey, JobsKey: cfg.Jobs.RemindersDelayedKey + ":jobs", ReadySubject: cfg.Jobs.RemindersReadySubject},
	)
	if err := jobDispatcher.Start(ctx); err != nil {
		log.Fatal("failed to start job dispatcher", "error", err)
	}
	defer jobDispatcher.Stop()

	availabilityEngine := availability.New(store, realClock, zones, log)
	bookingEngine := booking.New(store, locker, notificationQueue, webhookQueue, reminderQueue, realClock, log)
	apiKeyManager := apikey.New(store, realClock)

	sweepScheduler := scheduler.New(bookingEngine, log)
	sweepScheduler.Start()
	defer sweepScheduler.Stop()

	var subscriptionManager *realtime.SubscriptionManager
	if natsConn != nil {
		subscriber := events.NewSubscriber(natsConn, log)
		subscriptionManager = realtime.NewSubscriptionManager(log, subscriber)
		go subscriptionManager.Run()
		subscriptionManager.StartEventSubscriptions(cfg.Jobs.WebhooksReadySubject)

		syncHandlers := subscribers.New(db, log)
		if err := subscriber.Subscribe(cfg.Sync.EventTypeSubject, syncHandlers.HandleEventTypeUpserted); err != nil {
			log.Warn("failed to subscribe to event type sync subject", "error", err)
		}
		if err := subscriber.Subscribe(cfg.Sync.ScheduleSubject, syncHandlers.HandleScheduleUpdated); err != nil {
			log.Warn("failed to subscribe to schedule sync subject", "error", err)
		}
	} else {
		log.Warn("skipping realtime subscription manager and event-sync subscribers (no NATS connection)")
	}

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityEngine, log)
	bookingHandler := handlers.NewBookingHandler(bookingEngine, log)
	healthHandler := handlers.NewHealthHandler(db, redisClient, natsConn, log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestContext())
	router.Use(middleware.APIKeyContext(apiKeyManager, log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS())

	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	if subscriptionManager != nil {
		webSocketHandler := handlers.NewWebSocketHandler(subscriptionManager, log)
		router.GET("/ws", webSocketHandler.HandleConnections)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/availability", availabilityHandler.GetAvailability)
		v1.GET("/event-types/:eventTypeId/calendar", availabilityHandler.GetCalendar)

		bookings := v1.Group("/bookings")
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.POST("/:bookingId/confirm", bookingHandler.ConfirmBooking)
			bookings.POST("/:bookingId/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:bookingId/reschedule", bookingHandler.RescheduleBooking)
		}

		public := v1.Group("/public")
		{
			public.GET("/event-types/:organizationId/:slug", availabilityHandler.GetEventTypeBySlug)
			public.POST("/bookings/:uid/cancel", bookingHandler.CancelBookingByUID)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting scheduling core", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduling core")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("scheduling core stopped")
}
