package rsvp

import (
	"errors"
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("rsvp: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("rsvp: internal error")
)
