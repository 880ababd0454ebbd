package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// UseCase use case для получения слотов, в которые участник может записаться в указанный день
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		timeProvider: timeProvider,
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: member=%d, date=%s", req.MemberID, req.Date)

	// 2. Границы дня в часовом поясе школы
	dayStart, dayEnd, err := parseDay(req.Date, uc.location)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, err
	}

	// 3. День не должен быть в прошлом
	now := uc.timeProvider.Now()
	if err := validateDate(dayEnd, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: date %s rejected: %v", req.Date, err)
		return nil, err
	}

	// 4. Слоты дня
	filter := domain.SlotFilter{From: &dayStart, To: &dayEnd}
	if req.Category != nil {
		category := domain.SlotCategory(*req.Category)
		filter.Category = &category
	}
	slots, err := uc.slotRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
	}

	// 5. Подтверждённые занятия участника для проверки пересечений
	booked, err := uc.bookingRepo.ListUpcomingByMember(ctx, req.MemberID, dayStart.Add(-domain.MaxDurationMinutes*time.Minute))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list bookings of member id=%d: %v", req.MemberID, err)
		return nil, fmt.Errorf("%w: failed to list member bookings: %w", ErrInternal, err)
	}

	// 6. Вычисляем доступность
	available := filterBookable(slots, booked, now, uc.location)

	uc.logger.Info("GetAvailableSlots: %d of %d slots bookable for member=%d on %s",
		len(available), len(slots), req.MemberID, req.Date)

	return &Response{
		Date:     req.Date,
		MemberID: req.MemberID,
		Slots:    available,
	}, nil
}
