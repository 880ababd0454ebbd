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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bookSlotHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/book_slot"
	cancelBookingHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/cancel_booking"
	cancelRSVPHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/cancel_rsvp"
	createEventHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/create_event"
	createSeriesHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/create_series"
	createSlotHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/create_slot"
	deleteEventHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/delete_event"
	deleteSeriesHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/delete_series"
	deleteSlotHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/delete_slot"
	expandSeriesHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/expand_series"
	exportCalendarHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/export_calendar"
	getAttendeeCountHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_attendee_count"
	getAvailableSlotsHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_booking"
	getEventHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_event"
	getSeriesHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_series"
	getSlotHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_slot"
	getUpcomingBookingsHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/get_upcoming_bookings"
	listEventsHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/list_events"
	listRSVPsHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/list_rsvps"
	listSeriesHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/list_series"
	listSlotsHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/list_slots"
	markAttendanceHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/mark_attendance"
	rescheduleBookingHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/reschedule_booking"
	respondRSVPHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/respond_rsvp"
	updateOccurrenceHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/update_occurrence"
	updateSeriesHandler "github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers/update_series"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/config"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/booking"
	eventRepo "github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/event"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	rsvpRepo "github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/rsvp"
	seriesRepo "github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/series"
	slotRepo "github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/slot"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/scheduler"
	bookingsService "github.com/m04kA/RidingSchool-SchedulingService/internal/service/bookings"
	eventsService "github.com/m04kA/RidingSchool-SchedulingService/internal/service/events"
	recurrenceService "github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence"
	rsvpService "github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp"
	slotsService "github.com/m04kA/RidingSchool-SchedulingService/internal/service/slots"
	bookSlotUC "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/book_slot"
	cancelBookingUC "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/cancel_booking"
	getAvailableSlotsUC "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/RidingSchool-SchedulingService/migrations"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/metrics"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/txmanager"
)

// Репозитории, общие для PostgreSQL и in-memory хранилища.
// Каждый тип объединяет интерфейсы всех потребителей
type (
	slotStore interface {
		slotsService.SlotRepository
		recurrenceService.SlotRepository
		bookingsService.SlotRepository
		bookSlotUC.SlotRepository
		cancelBookingUC.SlotRepository
		rescheduleBookingUC.SlotRepository
		getAvailableSlotsUC.SlotRepository
	}
	bookingStore interface {
		bookingsService.BookingRepository
		bookSlotUC.BookingRepository
		cancelBookingUC.BookingRepository
		rescheduleBookingUC.BookingRepository
		getAvailableSlotsUC.BookingRepository
		recurrenceService.BookingRepository
		scheduler.BookingRepository
	}
	seriesStore interface {
		recurrenceService.SeriesRepository
		slotsService.SeriesRepository
	}
	eventStore interface {
		recurrenceService.EventRepository
		eventsService.EventRepository
		rsvpService.EventRepository
	}
	rsvpStore interface {
		eventsService.RSVPRepository
		rsvpService.RSVPRepository
	}
	txManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
)

type storage struct {
	slots    slotStore
	bookings bookingStore
	series   seriesStore
	events   eventStore
	rsvps    rsvpStore
	tx       txManager
	close    func() error
}

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

	log.Info("Starting RidingSchool-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Invalid scheduling timezone %q: %v", cfg.Scheduling.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Уведомления: внешний сервис или заглушка
	var sender notifications.Sender
	if cfg.Notifications.Enabled {
		sender = notifications.NewClient(
			cfg.Notifications.URL,
			time.Duration(cfg.Notifications.Timeout)*time.Second,
			log,
		)
		log.Info("Notification client initialized (url=%s, timeout=%ds)", cfg.Notifications.URL, cfg.Notifications.Timeout)
	} else {
		sender = notifications.NewNopSender(log)
		log.Info("Notifications disabled, messages are only logged")
	}

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()

	dispatcher := notifications.NewDispatcher(sender, cfg.Notifications.Workers, cfg.Notifications.QueueSize, metricsCollector, log)
	dispatcher.Start(dispatcherCtx)

	clock := &bookSlotUC.RealTimeProvider{}

	// Инициализируем сервисы
	slotSvc := slotsService.NewService(store.slots, store.series, store.tx, clock, log)
	bookingSvc := bookingsService.NewService(store.bookings, store.slots, store.tx, clock, log)
	eventSvc := eventsService.NewService(store.events, store.rsvps, clock, log)
	rsvpSvc := rsvpService.NewService(store.events, store.rsvps, store.tx, dispatcher, metricsCollector, clock, log)
	recurrenceSvc := recurrenceService.NewService(
		store.series,
		store.slots,
		store.events,
		store.bookings,
		rsvpSvc,
		store.tx,
		metricsCollector,
		clock,
		location,
		log,
	)

	// Инициализируем use cases
	bookSlotUseCase := bookSlotUC.NewUseCase(store.slots, store.bookings, store.tx, metricsCollector, clock, log)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(store.slots, store.bookings, store.tx, metricsCollector, clock, log)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(store.slots, store.bookings, store.tx, metricsCollector, clock, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(store.slots, store.bookings, clock, location, log)

	// Напоминания о занятиях
	var reminders *scheduler.Reminders
	if cfg.Reminders.Enabled {
		reminders, err = scheduler.NewReminders(
			cfg.Reminders.Schedule,
			time.Duration(cfg.Reminders.LeadMinutes)*time.Minute,
			time.Duration(cfg.Reminders.WindowMinutes)*time.Minute,
			store.bookings,
			dispatcher,
			clock,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize reminders: %v", err)
		}
		reminders.Start()
		log.Info("Lesson reminders scheduled (schedule=%q, lead=%dm, window=%dm)",
			cfg.Reminders.Schedule, cfg.Reminders.LeadMinutes, cfg.Reminders.WindowMinutes)
	}

	// Инициализируем handlers
	listSlots := listSlotsHandler.NewHandler(slotSvc, log)
	getSlot := getSlotHandler.NewHandler(slotSvc, log)
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)
	updateSlot := updateOccurrenceHandler.NewHandler(recurrenceSvc, domain.OccurrenceSlot, log)

	bookSlot := bookSlotHandler.NewHandler(bookSlotUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	markAttendance := markAttendanceHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUpcomingBookings := getUpcomingBookingsHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)

	createSeries := createSeriesHandler.NewHandler(recurrenceSvc, log)
	updateSeries := updateSeriesHandler.NewHandler(recurrenceSvc, log)
	deleteSeries := deleteSeriesHandler.NewHandler(recurrenceSvc, log)
	getSeries := getSeriesHandler.NewHandler(recurrenceSvc, log)
	listSeries := listSeriesHandler.NewHandler(recurrenceSvc, log)
	expandSeries := expandSeriesHandler.NewHandler(recurrenceSvc, log)

	createEvent := createEventHandler.NewHandler(eventSvc, log)
	listEvents := listEventsHandler.NewHandler(eventSvc, log)
	getEvent := getEventHandler.NewHandler(eventSvc, log)
	updateEvent := updateOccurrenceHandler.NewHandler(recurrenceSvc, domain.OccurrenceEvent, log)
	deleteEvent := deleteEventHandler.NewHandler(recurrenceSvc, log)

	respondRSVP := respondRSVPHandler.NewHandler(rsvpSvc, log)
	cancelRSVP := cancelRSVPHandler.NewHandler(rsvpSvc, log)
	getAttendeeCount := getAttendeeCountHandler.NewHandler(rsvpSvc, log)
	listRSVPs := listRSVPsHandler.NewHandler(rsvpSvc, log)

	exportCalendar := exportCalendarHandler.NewHandler(bookingSvc, eventSvc, recurrenceSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// --- Слоты ---
	api.HandleFunc("/slots", listSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)

	// --- События ---
	api.HandleFunc("/events", listEvents.Handle).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventId}", getEvent.Handle).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventId}/attendees/count", getAttendeeCount.Handle).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventId}/calendar", exportCalendar.HandleEvent).Methods(http.MethodGet)

	// --- Серии ---
	api.HandleFunc("/series/{seriesId}/calendar", exportCalendar.HandleSeries).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Бронирование места в слоте (для себя; за другого участника только сотрудник)
	protected.HandleFunc("/slots/{slotId}/bookings", bookSlot.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Перенос и отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Экспорт занятия в календарь
	protected.HandleFunc("/bookings/{bookingId}/calendar", exportCalendar.HandleBooking).Methods(http.MethodGet)

	// --- Участники ---
	protected.HandleFunc("/members/{memberId}/bookings/upcoming", getUpcomingBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/members/{memberId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// --- RSVP ---
	protected.HandleFunc("/events/{eventId}/rsvp", respondRSVP.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/events/{eventId}/rsvp", cancelRSVP.Handle).Methods(http.MethodDelete)

	// ============================================================
	// STAFF ROUTES (X-User-ID и X-User-Role: staff)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Auth, middleware.RequireStaff)

	// --- Слоты ---
	staff.HandleFunc("/slots", createSlot.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/slots/{slotId}", updateSlot.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// --- Посещаемость ---
	staff.HandleFunc("/bookings/{bookingId}/attendance", markAttendance.Handle).Methods(http.MethodPatch)

	// --- Серии ---
	staff.HandleFunc("/series", createSeries.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/series", listSeries.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/series/{seriesId}", getSeries.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/series/{seriesId}", updateSeries.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/series/{seriesId}", deleteSeries.Handle).Methods(http.MethodDelete)
	staff.HandleFunc("/series/{seriesId}/expand", expandSeries.Handle).Methods(http.MethodPost)

	// --- События ---
	staff.HandleFunc("/events", createEvent.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/events/{eventId}", updateEvent.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/events/{eventId}", deleteEvent.Handle).Methods(http.MethodDelete)
	staff.HandleFunc("/events/{eventId}/rsvps", listRSVPs.Handle).Methods(http.MethodGet)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся текущего прогона напоминаний
	if reminders != nil {
		if err := reminders.Stop(shutdownCtx); err != nil {
			log.Error("Reminders did not stop in time: %v", err)
		}
	}

	// Отправляем накопленные уведомления
	dispatcher.Stop()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

// openStorage выбирает хранилище по конфигурации
func openStorage(cfg *config.Config, metricsCollector *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		mem := memory.NewStore()
		log.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			slots:    mem.Slots(),
			bookings: mem.Bookings(),
			series:   mem.Series(),
			events:   mem.Events(),
			rsvps:    mem.RSVPs(),
			tx:       mem.TxManager(),
			close:    func() error { return nil },
		}, nil
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(context.Background(), db); err != nil {
			db.Close()
			return nil, err
		}
		version, err := migrations.Version(context.Background(), db)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Database migrated to version %d", version)
	}

	// Запросы измеряются, только если метрики включены
	var recorder dbmetrics.Recorder
	if metricsCollector != nil {
		recorder = metricsCollector
		log.Info("Database metrics collection started")
	}
	wrappedDB := dbmetrics.WrapWithDefault(db, recorder, stopCh)

	return &storage{
		slots:    slotRepo.NewRepository(wrappedDB),
		bookings: bookingRepo.NewRepository(wrappedDB),
		series:   seriesRepo.NewRepository(wrappedDB),
		events:   eventRepo.NewRepository(wrappedDB),
		rsvps:    rsvpRepo.NewRepository(wrappedDB),
		tx:       txmanager.NewTransactionManager(wrappedDB),
		close:    db.Close,
	}, nil
}
