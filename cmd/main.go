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

	bookAppointmentHandler "github.com/sharpcut/booking-service/internal/api/handlers/book_appointment"
	cancelAppointmentHandler "github.com/sharpcut/booking-service/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/sharpcut/booking-service/internal/api/handlers/complete_appointment"
	deletePolicyHandler "github.com/sharpcut/booking-service/internal/api/handlers/delete_policy"
	getAppointmentHandler "github.com/sharpcut/booking-service/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/sharpcut/booking-service/internal/api/handlers/get_available_slots"
	getBarberAppointmentsHandler "github.com/sharpcut/booking-service/internal/api/handlers/get_barber_appointments"
	getPolicyHandler "github.com/sharpcut/booking-service/internal/api/handlers/get_policy"
	getUserAppointmentsHandler "github.com/sharpcut/booking-service/internal/api/handlers/get_user_appointments"
	updatePolicyHandler "github.com/sharpcut/booking-service/internal/api/handlers/update_policy"
	"github.com/sharpcut/booking-service/internal/api/middleware"
	"github.com/sharpcut/booking-service/internal/config"
	apptRepo "github.com/sharpcut/booking-service/internal/infra/storage/appointment"
	policyRepo "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	catalogServiceClient "github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	identityServiceClient "github.com/sharpcut/booking-service/internal/integrations/identityservice"
	appointmentsService "github.com/sharpcut/booking-service/internal/service/appointments"
	policyService "github.com/sharpcut/booking-service/internal/service/policy"
	"github.com/sharpcut/booking-service/internal/sweep"
	bookAppointmentUC "github.com/sharpcut/booking-service/internal/usecase/book_appointment"
	getAvailableSlotsUC "github.com/sharpcut/booking-service/internal/usecase/get_available_slots"
	"github.com/sharpcut/booking-service/pkg/dbmetrics"
	"github.com/sharpcut/booking-service/pkg/logger"
	"github.com/sharpcut/booking-service/pkg/metrics"
	"github.com/sharpcut/booking-service/pkg/simpletxmanager"
	"github.com/sharpcut/booking-service/pkg/txmanager"
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

	log.Info("Starting sharpcut booking-service...")
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

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	identityClient := identityServiceClient.NewClient(
		cfg.IdentityService.URL,
		time.Duration(cfg.IdentityService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, IdentityService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.IdentityService.URL, cfg.IdentityService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *apptRepo.Repository
		policyRepository      *policyRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = apptRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = apptRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		policyRepository,
		identityClient,
		appointmentsService.RealTimeProvider{},
		log,
	)
	policySvc := policyService.NewService(
		policyRepository,
		catalogClient,
		identityClient,
		log,
	)

	// Инициализируем use cases
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		appointmentRepository,
		policyRepository,
		catalogClient,
		identityClient,
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		policyRepository,
		catalogClient,
		log,
	)

	// Инициализируем handlers
	bookAppointment := bookAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentSvc, log)
	getUserAppointments := getUserAppointmentsHandler.NewHandler(appointmentSvc, log)
	getBarberAppointments := getBarberAppointmentsHandler.NewHandler(appointmentSvc, log)
	getPolicy := getPolicyHandler.NewHandler(policySvc, log)
	updatePolicy := updatePolicyHandler.NewHandler(policySvc, log)
	deletePolicy := deletePolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
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

	// Доступные слоты барбера на дату
	api.HandleFunc("/barbers/{barberId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующая политика бронирования барбера
	api.HandleFunc("/barbers/{barberId}/policy",
		getPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Создание записи
	protected.HandleFunc("/appointments", bookAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Отмена записи
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// Завершение записи (для администраторов)
	protected.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPost)

	// История записей пользователя
	protected.HandleFunc("/users/{userId}/appointments", getUserAppointments.Handle).Methods(http.MethodGet)

	// --- Управление барберами (для администраторов) ---
	// Расписание барбера
	protected.HandleFunc("/barbers/{barberId}/appointments", getBarberAppointments.Handle).Methods(http.MethodGet)

	// Обновление персональной политики барбера
	protected.HandleFunc("/barbers/{barberId}/policy", updatePolicy.Handle).Methods(http.MethodPut)

	// Сброс персональной политики барбера
	protected.HandleFunc("/barbers/{barberId}/policy", deletePolicy.Handle).Methods(http.MethodDelete)

	// Запускаем фоновый sweep прошедших записей
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()

	if cfg.Sweep.Enabled {
		sweeper := sweep.New(
			appointmentRepository,
			time.Duration(cfg.Sweep.IntervalSeconds)*time.Second,
			log,
		)
		go sweeper.Run(sweepCtx)
	} else {
		log.Info("Sweep disabled")
	}

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

	// Останавливаем фоновый sweep
	stopSweep()

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
