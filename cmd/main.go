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

	cancelAppointmentHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/get_appointment"
	getAppointmentHistoryHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/get_appointment_history"
	getAvailableSlotsHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/get_available_slots"
	getBusinessAppointmentsHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/get_business_appointments"
	getCustomerAppointmentsHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/get_customer_appointments"
	getScheduleConfigHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/get_schedule_config"
	rescheduleAppointmentHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/update_appointment_status"
	updateScheduleConfigHandler "github.com/avenirbook/scheduling-engine/internal/api/handlers/update_schedule_config"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	"github.com/avenirbook/scheduling-engine/internal/config"
	"github.com/avenirbook/scheduling-engine/internal/infra/cache/availability"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	appointmentRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/appointment"
	modificationRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/modification"
	scheduleConfigRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	directoryClient "github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	appointmentsService "github.com/avenirbook/scheduling-engine/internal/service/appointments"
	"github.com/avenirbook/scheduling-engine/internal/service/conflicts"
	scheduleConfigService "github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig"
	createAppointmentUC "github.com/avenirbook/scheduling-engine/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/avenirbook/scheduling-engine/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/avenirbook/scheduling-engine/internal/usecase/reschedule_appointment"
	"github.com/avenirbook/scheduling-engine/pkg/dbmetrics"
	"github.com/avenirbook/scheduling-engine/pkg/logger"
	"github.com/avenirbook/scheduling-engine/pkg/metrics"
	"github.com/avenirbook/scheduling-engine/pkg/simpletxmanager"
	"github.com/avenirbook/scheduling-engine/pkg/txmanager"
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

	log.Info("Starting scheduling-engine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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

	// Инициализируем клиента DirectoryService
	directory := directoryClient.NewClient(
		cfg.Directory.URL,
		time.Duration(cfg.Directory.Timeout)*time.Second,
		log,
	)
	log.Info("DirectoryService client initialized (url=%s timeout=%ds)",
		cfg.Directory.URL, cfg.Directory.Timeout)

	// Кэш сеток доступности (advisory, сервис работает и без него)
	var slotsCache *availability.Cache
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

		slotsCache = availability.New(redisClient, time.Duration(cfg.Redis.TTL)*time.Second, log)
		log.Info("Availability cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Публикация доменных событий
	var publisher *events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer publisher.Close()
		log.Info("Event publisher enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Инициализируем репозитории и менеджер транзакций (с метриками или без)
	var (
		appointmentRepository    *appointmentRepo.Repository
		modificationRepository   *modificationRepo.Repository
		scheduleConfigRepository *scheduleConfigRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		modificationRepository = modificationRepo.NewRepository(wrappedDB)
		scheduleConfigRepository = scheduleConfigRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB).
			WithRetryObserver(metricsCollector.TxSerializationRetriesTotal.Inc)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		modificationRepository = modificationRepo.NewRepository(db)
		scheduleConfigRepository = scheduleConfigRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Детектор конфликтов вместимости
	detector := conflicts.NewDetector(appointmentRepository, log)

	// Интерфейсные переменные вместо typed-nil: выключенный кэш/паблишер
	// должен оставаться nil-интерфейсом внутри usecases
	var (
		svcCache        appointmentsService.SlotsCache
		createCache     createAppointmentUC.SlotsCache
		rescheduleCache rescheduleAppointmentUC.SlotsCache
		gridCache       getAvailableSlotsUC.SlotsCache
	)
	if slotsCache != nil {
		svcCache = slotsCache
		createCache = slotsCache
		rescheduleCache = slotsCache
		gridCache = slotsCache
	}

	var (
		svcPublisher        appointmentsService.EventPublisher
		createPublisher     createAppointmentUC.EventPublisher
		reschedulePublisher rescheduleAppointmentUC.EventPublisher
	)
	if publisher != nil {
		svcPublisher = publisher
		createPublisher = publisher
		reschedulePublisher = publisher
	}

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		modificationRepository,
		directory,
		txMgr,
		svcCache,
		svcPublisher,
		log,
	)
	configSvc := scheduleConfigService.NewService(
		scheduleConfigRepository,
		directory,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleConfigRepository,
		detector,
		directory,
		txMgr,
		createCache,
		createPublisher,
		log,
	)

	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		modificationRepository,
		scheduleConfigRepository,
		detector,
		directory,
		txMgr,
		rescheduleCache,
		reschedulePublisher,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		scheduleConfigRepository,
		directory,
		gridCache,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getAppointmentHistory := getAppointmentHistoryHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentSvc, log)
	getCustomerAppointments := getCustomerAppointmentsHandler.NewHandler(appointmentSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentSvc, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(configSvc, log)
	updateScheduleConfig := updateScheduleConfigHandler.NewHandler(configSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Сетка доступных слотов
	api.HandleFunc("/businesses/{id}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующая конфигурация расписания
	api.HandleFunc("/businesses/{id}/schedule-config",
		getScheduleConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-Actor-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/history", getAppointmentHistory.Handle).Methods(http.MethodGet)

	// --- История клиента ---
	protected.HandleFunc("/customers/{ref}/appointments", getCustomerAppointments.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом ---
	protected.HandleFunc("/businesses/{id}/appointments", getBusinessAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{id}/schedule-config", updateScheduleConfig.Handle).Methods(http.MethodPut)

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
