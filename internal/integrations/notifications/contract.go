package notifications

import "context"

// Sender отправляет одно уведомление
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Metrics интерфейс метрик отправки уведомлений
type Metrics interface {
	ObserveNotification(template, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
