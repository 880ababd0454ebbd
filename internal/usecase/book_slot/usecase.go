package book_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

const operation = "book"

// UseCase use case бронирования места в слоте
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

// Execute выполняет бронирование
// Проверка вместимости, запись бронирования и увеличение счётчика выполняются в одной
// сериализуемой транзакции с блокировкой строки слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveBooking(operation, resultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("BookSlot: slot=%d, member=%d, actor=%d", req.SlotID, req.MemberID, req.ActorID)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var (
		created *domain.Booking
		slot    *domain.Slot
	)

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем слот с блокировкой (FOR UPDATE)
		var err error
		slot, err = uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, domain.ErrSlotNotFound) {
				uc.logger.Warn("BookSlot: slot id=%d not found", req.SlotID)
				return err
			}
			uc.logger.Error("BookSlot: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		// 3.2. Слот в будущем и есть свободное место
		if err := validateSlot(slot, now); err != nil {
			uc.logger.Warn("BookSlot: slot id=%d rejected: %v (occupancy %d/%d, start=%s)",
				slot.ID, err, slot.Occupancy, slot.Capacity, slot.StartTime.Format(timeLogFormat))
			return err
		}

		// 3.3. Блокируем участника, чтобы параллельные бронирования на другие слоты ждали
		if err := uc.bookingRepo.LockMember(txCtx, req.MemberID); err != nil {
			uc.logger.Error("BookSlot: failed to lock member id=%d: %v", req.MemberID, err)
			return fmt.Errorf("%w: failed to lock member: %w", ErrInternal, err)
		}

		// 3.4. Проверяем пересечение с другими подтверждёнными бронированиями участника
		overlapping, err := uc.bookingRepo.FindOverlapping(txCtx, req.MemberID, slot.StartTime, slot.EndTime, 0)
		if err != nil {
			uc.logger.Error("BookSlot: failed to check schedule of member id=%d: %v", req.MemberID, err)
			return fmt.Errorf("%w: failed to check member schedule: %w", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			uc.logger.Warn("BookSlot: member id=%d already has booking id=%d at this time",
				req.MemberID, overlapping[0].ID)
			return domain.ErrMemberScheduleConflict
		}

		// 3.5. Занимаем место условным UPDATE (occupancy < capacity)
		if err := uc.slotRepo.IncrementOccupancy(txCtx, slot.ID); err != nil {
			if errors.Is(err, domain.ErrSlotFull) {
				uc.logger.Warn("BookSlot: slot id=%d became full", slot.ID)
				return err
			}
			uc.logger.Error("BookSlot: failed to increment occupancy of slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to increment occupancy: %w", ErrInternal, err)
		}
		slot.Occupancy++

		// 3.6. Создаём бронирование
		created, err = uc.bookingRepo.Create(txCtx, &domain.Booking{
			SlotID:          slot.ID,
			MemberID:        req.MemberID,
			BookedBy:        req.ActorID,
			State:           domain.BookingConfirmed,
			AttendanceState: domain.AttendancePending,
			BookedAt:        now,
		})
		if err != nil {
			uc.logger.Error("BookSlot: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("BookSlot: created booking id=%d, slot id=%d occupancy %d/%d",
		created.ID, slot.ID, slot.Occupancy, slot.Capacity)

	return toResponse(created, slot), nil
}

const timeLogFormat = "2006-01-02 15:04"

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return domain.ReasonOf(err)
}
