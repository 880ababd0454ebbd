package scheduler

import (
	"context"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
)

// BookingRepository источник подтверждённых бронирований
type BookingRepository interface {
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.BookingWithSlot, error)
}

// Notifier ставит уведомление в очередь отправки
type Notifier interface {
	Dispatch(msg notifications.Message) bool
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
