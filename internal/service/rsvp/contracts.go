package rsvp

import (
	"context"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
)

// EventRepository интерфейс репозитория событий
type EventRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
}

// RSVPRepository интерфейс репозитория ответов
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *domain.RSVP) (*domain.RSVP, error)
	Get(ctx context.Context, eventID, memberID int64) (*domain.RSVP, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.RSVP, error)
	Update(ctx context.Context, rsvp *domain.RSVP) error
	Delete(ctx context.Context, eventID, memberID int64) error
}

// Notifier ставит уведомления в очередь отправки
type Notifier interface {
	Dispatch(msg notifications.Message) bool
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс метрик RSVP
type Metrics interface {
	ObserveRSVP(status string)
	ObservePromotions(n int)
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
