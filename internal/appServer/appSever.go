package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ds124wfegd/learnlink/config"
	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	cache "github.com/ds124wfegd/learnlink/internal/database/redis"
	"github.com/ds124wfegd/learnlink/internal/service"
	"github.com/ds124wfegd/learnlink/internal/transport"
	"github.com/ds124wfegd/learnlink/internal/worker"

	"github.com/ds124wfegd/learnlink/pkg/auth"
	"github.com/ds124wfegd/learnlink/pkg/events"
	"github.com/ds124wfegd/learnlink/pkg/postgres"
	"github.com/ds124wfegd/learnlink/pkg/queue"
	"github.com/ds124wfegd/learnlink/pkg/redis"
	"github.com/ds124wfegd/learnlink/pkg/scheduler"
	"github.com/ds124wfegd/learnlink/pkg/storage"
	"github.com/ds124wfegd/learnlink/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func setupLogging(cfg *config.LoggingConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func NewServer(cfg *config.Config) {
	setupLogging(&cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db, cfg.Database.DBName); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	// Initialize Telegram bot
	botToken := ""
	if cfg.Telegram.Enabled {
		botToken = cfg.Telegram.BotToken
	}
	telegramBot, err := telegram.NewBot(botToken)
	if err != nil {
		logrus.Errorf("Telegram bot unavailable: %v. Continuing without notifications...", err)
		telegramBot, _ = telegram.NewBot("")
	}

	// Broker publisher
	brokerPublisher, err := events.New(&cfg.Events)
	if err != nil {
		logrus.Fatalf("Failed to initialize events publisher: %v", err)
	}

	var (
		purchaseCache service.PurchaseCache
		redisQueue    *queue.RedisQueue
		queueAdapter  *service.QueueAdapter
	)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.Errorf("Redis unavailable: %v. Continuing without cache and queue...", err)
		} else {
			defer redisClient.Close()
			purchaseCache = cache.NewPurchaseCache(redisClient, cfg.Redis.PurchaseCacheTTL)

			queueCfg := queue.DefaultRedisQueueConfig(cfg.Redis.QueuePrefix)
			queueCfg.MaxRetries = cfg.Notifications.MaxRetries
			queueCfg.BaseDelay = cfg.Notifications.RetryBaseDelay

			retryManager := queue.NewRetryManager(queueCfg.MaxRetries, queueCfg.BaseDelay)
			dlqHandler := queue.NewDefaultDLQHandler(redisClient, queue.DLQKey(queueCfg.Prefix))

			redisQueue, err = queue.NewRedisQueue(redisClient, queueCfg, retryManager, dlqHandler)
			if err != nil {
				logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
				redisQueue = nil
			} else {
				// Создаем адаптер для очереди
				queueAdapter = service.NewQueueAdapter(redisQueue, cfg.Notifications.ReminderBefore, cfg.Notifications.MaxRetries)
			}
		}
	}

	publisher := events.NewMulti(brokerPublisher)
	if queueAdapter != nil {
		publisher = events.NewMulti(brokerPublisher, queueAdapter)
	}
	defer publisher.Close()

	paymentProvider, err := service.NewPaymentProvider(cfg.Payment.Provider)
	if err != nil {
		logrus.Fatalf("Failed to initialize payment provider: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer)
	covers := storage.NewCoverStorage(storage.NewFileStorage(cfg.Storage.Path), cfg.Storage.PublicURL, cfg.Storage.MaxUpload)

	// Initialize services
	accessResolver := service.NewAccessResolver(paymentRepo, reviewRepo, purchaseCache)
	authService := service.NewAuthService(userRepo, jwtManager, cfg.Payment.DefaultCurrency)
	availabilityService := service.NewAvailabilityService(slotRepo)
	bookingService := service.NewBookingService(bookingRepo, slotRepo, courseRepo, publisher)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, courseRepo, userRepo, paymentProvider, accessResolver, publisher, cfg.Payment.DefaultCurrency)
	courseService := service.NewCourseService(courseRepo, lessonRepo, accessResolver, covers, cfg.Payment.DefaultCurrency)
	reviewService := service.NewReviewService(reviewRepo, courseRepo, bookingRepo, userRepo, accessResolver)
	messageService := service.NewMessageService(conversationRepo, userRepo)

	var background sync.WaitGroup

	// Start queue consumer
	if redisQueue != nil {
		taskHandler := queue.NewTaskHandler(userRepo, bookingRepo, telegramBot)
		if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
			logrus.Errorf("Queue subscriber error: %v", err)
		} else {
			logrus.Info("Queue subscriber started")
		}
	}

	// Initialize and start scheduler
	expirationScheduler := scheduler.NewScheduler(bookingService, cfg.Scheduler.Interval)
	background.Add(1)
	go func() {
		defer background.Done()
		expirationScheduler.Start(ctx)
	}()
	logrus.Info("Expiration scheduler started")

	// Initialize cleanup worker
	cleanupWorker := worker.NewSlotCleanupWorker(availabilityService, cfg.Worker.CleanupInterval, cfg.Worker.SlotRetention, cfg.Worker.BatchSize)
	background.Add(1)
	go func() {
		defer background.Done()
		cleanupWorker.Start(ctx)
	}()

	// Initialize handlers
	var queueStats transport.QueueStatser
	if redisQueue != nil {
		queueStats = redisQueue
	}
	handlers := &transport.Handlers{
		Users:        transport.NewUserHandler(authService),
		Availability: transport.NewAvailabilityHandler(availabilityService),
		Bookings:     transport.NewBookingHandler(bookingService),
		Payments:     transport.NewPaymentHandler(paymentService),
		Courses:      transport.NewCourseHandler(courseService, cfg.Storage.MaxUpload),
		Reviews:      transport.NewReviewHandler(reviewService),
		Messages:     transport.NewMessageHandler(messageService),
		Health:       transport.NewHealthHandler(db, queueStats, cfg.Server.AppVersion),
	}

	// Setup HTTP server
	if cfg.Server.Mode == "release" || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := transport.InitRoutes(handlers, jwtManager, transport.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		StaticURL:      cfg.Storage.PublicURL,
		StaticDir:      cfg.Storage.Path,
	})

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("error occured while running http server: %s", err.Error())
			stop()
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	<-ctx.Done()

	logrus.Print("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
	background.Wait()
}
