package notifications

import "context"

// NopSender используется при выключенных уведомлениях: только пишет в лог
type NopSender struct {
	log Logger
}

// NewNopSender создает отправитель-заглушку
func NewNopSender(log Logger) *NopSender {
	return &NopSender{log: log}
}

// Send логирует уведомление и ничего не отправляет
func (s *NopSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("Notifications disabled: skip template=%s for recipient=%d", msg.Template, msg.RecipientID)
	return nil
}
