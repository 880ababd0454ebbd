package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями вне изменения ёмкости
type Service struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование вместе со слотом
// Проверка владельца выполняется на уровне HTTP
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	var (
		booking *domain.Booking
		slot    *domain.Slot
	)
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		slot, err = s.slotRepo.GetByID(txCtx, booking.SlotID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("GetByID: booking id=%d: %v", id, err)
			return nil, err
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainBooking(booking, slot), nil
}

// ListUpcomingForMember возвращает подтверждённые бронирования участника на будущие слоты
// Отсортированы по времени начала слота
func (s *Service) ListUpcomingForMember(ctx context.Context, memberID int64) (*models.UpcomingListResponse, error) {
	if memberID <= 0 {
		return nil, fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}

	s.logger.Info("ListUpcomingForMember: member=%d", memberID)

	items, err := s.bookingRepo.ListUpcomingByMember(ctx, memberID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("ListUpcomingForMember: repository error for member=%d: %v", memberID, err)
		return nil, fmt.Errorf("%w: ListUpcomingForMember - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListUpcomingForMember: found %d bookings for member=%d", len(items), memberID)
	return models.FromDomainUpcoming(items), nil
}

// MarkAttendance отмечает посещение занятия
// Доступно только персоналу, без ограничений по времени и состоянию бронирования.
// Меняются только поля посещаемости: состояние бронирования и занятость слота остаются прежними
func (s *Service) MarkAttendance(ctx context.Context, bookingID int64, req *models.MarkAttendanceRequest) (*models.BookingResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	s.logger.Info("MarkAttendance: booking=%d, state=%s, actor=%d", bookingID, req.State, req.ActorID)

	if !req.ActorIsStaff {
		s.logger.Warn("MarkAttendance: actor=%d is not staff", req.ActorID)
		return nil, domain.ErrStaffOnly
	}

	state := domain.AttendanceState(req.State)
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown attendance state %q", ErrInvalidInput, req.State)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	var (
		booking *domain.Booking
		slot    *domain.Slot
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		slot, err = s.slotRepo.GetByID(txCtx, booking.SlotID)
		if err != nil {
			return err
		}

		booking.AttendanceState = state
		booking.AttendanceNotes = req.Notes

		return s.bookingRepo.Update(txCtx, booking)
	})
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			s.logger.Warn("MarkAttendance: booking=%d rejected: %v", bookingID, err)
			return nil, err
		}
		s.logger.Error("MarkAttendance: failed for booking=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: MarkAttendance - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("MarkAttendance: booking=%d, state=%s, attendance=%s", booking.ID, booking.State, booking.AttendanceState)
	return models.FromDomainBooking(booking, slot), nil
}
