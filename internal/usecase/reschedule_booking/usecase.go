package reschedule_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
)

const operation = "reschedule"

// UseCase use case переноса бронирования
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute переносит бронирование: уменьшение счётчика старого слота, увеличение счётчика
// нового и смена слота в бронировании выполняются одной транзакцией
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveBooking(operation, resultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking=%d, newSlot=%d, actor=%d", req.BookingID, req.NewSlotID, req.ActorID)

	now := uc.timeProvider.Now()

	var (
		booking *domain.Booking
		fromID  int64
		target  *domain.Slot
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Бронирование с блокировкой
		var err error
		booking, err = uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, domain.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
				return err
			}
			uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		if err := validateBooking(booking, req); err != nil {
			uc.logger.Warn("RescheduleBooking: booking id=%d rejected: %v", booking.ID, err)
			return err
		}

		// 3. Блокируем оба слота в порядке возрастания ID, чтобы встречные переносы не взаимоблокировались
		current, next, err := uc.lockSlots(txCtx, booking.SlotID, req.NewSlotID)
		if err != nil {
			return err
		}

		// 4. Правило 24 часов для обоих слотов и место в целевом
		if err := validateSlots(current, next, now); err != nil {
			uc.logger.Warn("RescheduleBooking: booking id=%d from slot=%d to slot=%d rejected: %v",
				booking.ID, current.ID, next.ID, err)
			return err
		}

		// 5. Проверяем расписание участника без учёта переносимого бронирования
		if err := uc.bookingRepo.LockMember(txCtx, booking.MemberID); err != nil {
			uc.logger.Error("RescheduleBooking: failed to lock member id=%d: %v", booking.MemberID, err)
			return fmt.Errorf("%w: failed to lock member: %w", ErrInternal, err)
		}
		overlapping, err := uc.bookingRepo.FindOverlapping(txCtx, booking.MemberID, next.StartTime, next.EndTime, booking.ID)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to check schedule of member id=%d: %v", booking.MemberID, err)
			return fmt.Errorf("%w: failed to check member schedule: %w", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			uc.logger.Warn("RescheduleBooking: member id=%d has booking id=%d overlapping slot id=%d",
				booking.MemberID, overlapping[0].ID, next.ID)
			return domain.ErrMemberScheduleConflict
		}

		// 6. Переносим место
		if err := uc.slotRepo.IncrementOccupancy(txCtx, next.ID); err != nil {
			if errors.Is(err, domain.ErrSlotFull) {
				uc.logger.Warn("RescheduleBooking: target slot id=%d became full", next.ID)
				return domain.ErrTargetSlotFull
			}
			uc.logger.Error("RescheduleBooking: failed to increment occupancy of slot id=%d: %v", next.ID, err)
			return fmt.Errorf("%w: failed to increment occupancy: %w", ErrInternal, err)
		}
		if err := uc.slotRepo.DecrementOccupancy(txCtx, current.ID); err != nil {
			uc.logger.Error("RescheduleBooking: failed to decrement occupancy of slot id=%d: %v", current.ID, err)
			return fmt.Errorf("%w: failed to decrement occupancy: %w", ErrInternal, err)
		}

		// 7. Обновляем бронирование и его историю
		fromID = current.ID
		booking.SlotID = next.ID
		booking.RescheduleCount++
		booking.RescheduledFrom = ptr.Ptr(current.ID)
		booking.RescheduledTo = ptr.Ptr(next.ID)

		if err := uc.bookingRepo.Update(txCtx, booking); err != nil {
			uc.logger.Error("RescheduleBooking: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		target = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved from slot=%d to slot=%d (count=%d)",
		booking.ID, fromID, target.ID, booking.RescheduleCount)

	return &Response{
		ID:              booking.ID,
		MemberID:        booking.MemberID,
		FromSlotID:      fromID,
		ToSlotID:        target.ID,
		RescheduleCount: booking.RescheduleCount,
		SlotStart:       target.StartTime,
		SlotEnd:         target.EndTime,
	}, nil
}

// lockSlots получает текущий и целевой слоты, блокируя их в порядке возрастания ID
func (uc *UseCase) lockSlots(ctx context.Context, currentID, targetID int64) (current, target *domain.Slot, err error) {
	order := []int64{currentID, targetID}
	if targetID < currentID {
		order = []int64{targetID, currentID}
	}

	locked := make(map[int64]*domain.Slot, 2)
	for _, id := range order {
		slot, err := uc.slotRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSlotNotFound) {
				uc.logger.Warn("RescheduleBooking: slot id=%d not found", id)
				return nil, nil, err
			}
			uc.logger.Error("RescheduleBooking: failed to get slot id=%d: %v", id, err)
			return nil, nil, fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}
		locked[id] = slot
	}

	return locked[currentID], locked[targetID], nil
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return domain.ReasonOf(err)
}
