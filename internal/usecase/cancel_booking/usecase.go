package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
)

const operation = "cancel"

// UseCase use case отмены бронирования
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

// Execute отменяет бронирование и освобождает место в слоте
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveBooking(operation, resultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking=%d, actor=%d", req.BookingID, req.ActorID)

	now := uc.timeProvider.Now()
	var booking *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Бронирование с блокировкой
		var err error
		booking, err = uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, domain.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
				return err
			}
			uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		if err := validateBooking(booking, req); err != nil {
			uc.logger.Warn("CancelBooking: booking id=%d rejected: %v", booking.ID, err)
			return err
		}

		// 2. Слот с блокировкой, правило 24 часов
		slot, err := uc.slotRepo.GetByID(txCtx, booking.SlotID)
		if err != nil {
			uc.logger.Error("CancelBooking: failed to get slot id=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}
		if err := validateSlot(slot, now); err != nil {
			uc.logger.Warn("CancelBooking: booking id=%d, slot starts at %s: %v",
				booking.ID, slot.StartTime.Format("2006-01-02 15:04"), err)
			return err
		}

		// 3. Освобождаем место
		if err := uc.slotRepo.DecrementOccupancy(txCtx, slot.ID); err != nil {
			uc.logger.Error("CancelBooking: failed to decrement occupancy of slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to decrement occupancy: %w", ErrInternal, err)
		}

		// 4. Отмечаем бронирование отменённым
		booking.State = domain.BookingCancelled
		booking.CancelledAt = ptr.Ptr(now)
		booking.CancellationReason = req.Reason

		if err := uc.bookingRepo.Update(txCtx, booking); err != nil {
			uc.logger.Error("CancelBooking: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking id=%d cancelled, slot id=%d released", booking.ID, booking.SlotID)

	return &Response{
		ID:                 booking.ID,
		SlotID:             booking.SlotID,
		MemberID:           booking.MemberID,
		State:              string(booking.State),
		CancelledAt:        now,
		CancellationReason: booking.CancellationReason,
	}, nil
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return domain.ReasonOf(err)
}
