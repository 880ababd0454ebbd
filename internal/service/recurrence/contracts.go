package recurrence

import (
	"context"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// SeriesRepository интерфейс репозитория серий
type SeriesRepository interface {
	Create(ctx context.Context, series *domain.RecurrenceSeries) (*domain.RecurrenceSeries, error)
	GetByID(ctx context.Context, id int64) (*domain.RecurrenceSeries, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.RecurrenceSeries, error)
	Update(ctx context.Context, series *domain.RecurrenceSeries) error
	AddExclusion(ctx context.Context, seriesID int64, originalStart time.Time) error
	ListExclusions(ctx context.Context, seriesID int64) ([]time.Time, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	CreateOccurrence(ctx context.Context, slot *domain.Slot) (*domain.Slot, bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	ListOriginalStarts(ctx context.Context, seriesID int64) ([]time.Time, error)
	Update(ctx context.Context, slot *domain.Slot) error
	Delete(ctx context.Context, id int64) error
	DeleteFutureFreeBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error)
	DetachFutureBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error)
	DeleteBySeries(ctx context.Context, seriesID int64) (int, error)
}

// EventRepository интерфейс репозитория событий
type EventRepository interface {
	CreateOccurrence(ctx context.Context, event *domain.Event) (*domain.Event, bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	ListOriginalStarts(ctx context.Context, seriesID int64) ([]time.Time, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int64) error
	DeleteFutureFreeBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error)
	DetachFutureBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error)
	DeleteBySeries(ctx context.Context, seriesID int64) (int, error)
}

// BookingRepository интерфейс репозитория бронирований для проверки переноса слота
type BookingRepository interface {
	ListConfirmedBySlot(ctx context.Context, slotID int64) ([]*domain.Booking, error)
	LockMember(ctx context.Context, memberID int64) error
	FindOverlapping(ctx context.Context, memberID int64, start, end time.Time, excludeBookingID int64) ([]*domain.Booking, error)
}

// Attendance интерфейс RSVP-менеджера для изменения ёмкости события
type Attendance interface {
	AttendeeCount(ctx context.Context, eventID int64) (int, error)
	PromoteWaitlist(ctx context.Context, eventID int64) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс метрик генерации вхождений
type Metrics interface {
	ObserveOccurrences(kind string, n int)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
