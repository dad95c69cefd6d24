package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelReservationHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/complete_reservation"
	createReservationHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/create_reservation"
	getAvailableSlotsHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/get_available_slots"
	getReservationHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/get_reservation"
	getUserPaymentsHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/get_user_payments"
	getUserReservationsHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/get_user_reservations"
	getVenueReservationsHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/get_venue_reservations"
	markNoShowHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/mark_no_show"
	recordBalanceHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/record_balance"
	recordDepositHandler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/record_deposit"
	"github.com/noshow-me/NSP-ReservationService/internal/api/middleware"
	"github.com/noshow-me/NSP-ReservationService/internal/config"
	"github.com/noshow-me/NSP-ReservationService/internal/infra/cache"
	paymentRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/payment"
	reservationRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/reservation"
	userRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/user"
	venueRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/venue"
	paymentsService "github.com/noshow-me/NSP-ReservationService/internal/service/payments"
	reservationsService "github.com/noshow-me/NSP-ReservationService/internal/service/reservations"
	createReservationUC "github.com/noshow-me/NSP-ReservationService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/noshow-me/NSP-ReservationService/internal/usecase/get_available_slots"
	"github.com/noshow-me/NSP-ReservationService/pkg/dbmetrics"
	"github.com/noshow-me/NSP-ReservationService/pkg/logger"
	"github.com/noshow-me/NSP-ReservationService/pkg/metrics"
	"github.com/noshow-me/NSP-ReservationService/pkg/simpletxmanager"
	"github.com/noshow-me/NSP-ReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting NSP-ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем кеш доступности (если включен Redis)
	var availabilityCache cache.AvailabilityCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()

		availabilityCache = cache.NewRedisAvailabilityCache(
			redisClient,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
		)
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.CacheTTL)
	} else {
		availabilityCache = cache.NewNoopAvailabilityCache()
		log.Info("Availability cache disabled")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		paymentRepository     *paymentRepo.Repository
		userRepository        *userRepo.Repository
		venueRepository       *venueRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	// Бюджет времени на одну транзакцию из конфигурации
	queryTimeout := time.Duration(cfg.Database.QueryTimeout) * time.Second

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		paymentRepository = paymentRepo.NewRepository(wrappedDB)
		userRepository = userRepo.NewRepository(wrappedDB)
		venueRepository = venueRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB, queryTimeout)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		paymentRepository = paymentRepo.NewRepository(db)
		userRepository = userRepo.NewRepository(db)
		venueRepository = venueRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db, queryTimeout)
	}

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		paymentRepository,
		userRepository,
		venueRepository,
		availabilityCache,
		txMgr,
		log,
	)
	paymentSvc := paymentsService.NewService(
		paymentRepository,
		reservationRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		venueRepository,
		userRepository,
		availabilityCache,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		venueRepository,
		availabilityCache,
		log,
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	markNoShow := markNoShowHandler.NewHandler(reservationSvc, log)
	completeReservation := completeReservationHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getVenueReservations := getVenueReservationsHandler.NewHandler(reservationSvc, log)
	recordDeposit := recordDepositHandler.NewHandler(paymentSvc, log)
	recordBalance := recordBalanceHandler.NewHandler(paymentSvc, log)
	getUserPayments := getUserPaymentsHandler.NewHandler(paymentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Дневная сетка слотов услуги
	api.HandleFunc("/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Бронирование с историей платежей
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Переходы жизненного цикла
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/reservations/{reservationId}/no-show", markNoShow.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/reservations/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPut)

	// История бронирований пользователя
	protected.HandleFunc("/users/me/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Площадки (для владельцев) ---
	protected.HandleFunc("/venues/{venueId}/reservations", getVenueReservations.Handle).Methods(http.MethodGet)

	// --- Платежи ---
	protected.HandleFunc("/payments/deposit", recordDeposit.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/payments/balance", recordBalance.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/me/payments", getUserPayments.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
