package slots

import (
	"context"
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/slots/models"
)

// Service сервис управления слотами персоналом
type Service struct {
	slotRepo     SlotRepository
	seriesRepo   SeriesRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	seriesRepo SeriesRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		seriesRepo:   seriesRepo,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create создаёт разовый слот
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	if err := validateCreate(req, s.timeProvider.Now()); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = req.Category
	}

	slot, err := s.slotRepo.Create(ctx, &domain.Slot{
		Title:      title,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Category:   domain.SlotCategory(req.Category),
		Capacity:   req.Capacity,
		Instructor: req.Instructor,
		Location:   req.Location,
		CreatedBy:  req.ActorID,
	})
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: slot id=%d created at %s, capacity=%d", slot.ID, slot.StartTime.Format("2006-01-02 15:04"), slot.Capacity)
	return models.FromDomainSlot(slot), nil
}

// GetByID возвращает слот с оставшейся ёмкостью
func (s *Service) GetByID(ctx context.Context, id int64) (*models.SlotResponse, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoErr("GetByID", id, err)
	}
	return models.FromDomainSlot(slot), nil
}

// List возвращает слоты по фильтру, отсортированные по времени начала
func (s *Service) List(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	filter, err := toDomainFilter(req)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, err
	}

	slots, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	resp := &models.SlotListResponse{Slots: make([]models.SlotResponse, 0, len(slots))}
	for _, slot := range slots {
		if req.AvailableOnly && slot.IsFull() {
			continue
		}
		resp.Slots = append(resp.Slots, *models.FromDomainSlot(slot))
	}
	resp.Total = len(resp.Slots)

	return resp, nil
}

// Delete удаляет слот
// Слот с подтверждёнными бронированиями удаляется только с force, бронирования удаляются каскадно.
// Для вхождения серии сохраняется исключение, чтобы повторная генерация его не восстановила
func (s *Service) Delete(ctx context.Context, id int64, force bool) error {
	s.logger.Info("Delete: slot id=%d, force=%t", id, force)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if slot.Occupancy > 0 && !force {
			return domain.ErrSlotHasBookings
		}
		if err := s.slotRepo.Delete(txCtx, id); err != nil {
			return err
		}
		if slot.SeriesID != nil {
			return s.seriesRepo.AddExclusion(txCtx, *slot.SeriesID, slot.OriginalStart)
		}
		return nil
	})
	if err != nil {
		return s.wrapRepoErr("Delete", id, err)
	}

	s.logger.Info("Delete: slot id=%d deleted", id)
	return nil
}

func (s *Service) wrapRepoErr(op string, id int64, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		s.logger.Warn("%s: slot id=%d: %v", op, id, err)
		return err
	}
	s.logger.Error("%s: repository error for slot id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}
