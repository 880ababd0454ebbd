package notifications

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifications client: internal error")

	// ErrUnavailable возвращается, когда сервис уведомлений недоступен
	ErrUnavailable = errors.New("notifications client: service unavailable")

	// ErrRejected возвращается, когда сервис отклонил уведомление
	ErrRejected = errors.New("notifications client: message rejected")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("notifications client: invalid response")
)
