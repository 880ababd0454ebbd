package events

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/events/models"
)

// Service сервис разовых событий
type Service struct {
	eventRepo    EventRepository
	rsvpRepo     RSVPRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса событий
func NewService(eventRepo EventRepository, rsvpRepo RSVPRepository, timeProvider TimeProvider, logger Logger) *Service {
	return &Service{
		eventRepo:    eventRepo,
		rsvpRepo:     rsvpRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create создаёт разовое событие
func (s *Service) Create(ctx context.Context, req *models.CreateEventRequest) (*models.EventResponse, error) {
	if err := validateCreate(req, s.timeProvider.Now()); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	event, err := s.eventRepo.Create(ctx, &domain.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		CreatedBy:   req.ActorID,
	})
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: event id=%d created, capacity=%d", event.ID, event.Capacity)
	return models.FromDomainEvent(event, nil), nil
}

// GetByID возвращает событие с числом участников и длиной листа ожидания
func (s *Service) GetByID(ctx context.Context, id int64) (*models.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapErr("GetByID", err)
	}
	rsvps, err := s.rsvpRepo.ListByEvent(ctx, id)
	if err != nil {
		return nil, s.wrapErr("GetByID", err)
	}
	return models.FromDomainEvent(event, rsvps), nil
}

// List возвращает события в периоде [from, to)
func (s *Service) List(ctx context.Context, from, to *time.Time) (*models.EventListResponse, error) {
	if from != nil && to != nil && !to.After(*from) {
		return nil, domain.ErrInvalidTimeRange
	}

	list, err := s.eventRepo.List(ctx, domain.EventFilter{From: from, To: to})
	if err != nil {
		return nil, s.wrapErr("List", err)
	}

	resp := &models.EventListResponse{Events: make([]models.EventResponse, 0, len(list))}
	for _, event := range list {
		rsvps, err := s.rsvpRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, s.wrapErr("List", err)
		}
		resp.Events = append(resp.Events, *models.FromDomainEvent(event, rsvps))
	}
	resp.Total = len(resp.Events)
	return resp, nil
}

func validateCreate(req *models.CreateEventRequest, now time.Time) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.Title == "" || len(req.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title is required and must be at most %d characters", ErrInvalidInput, domain.MaxTitleLength)
	}
	if req.Capacity < 0 || req.Capacity > domain.MaxEventCapacity {
		return fmt.Errorf("%w: capacity must be between 0 and %d", ErrInvalidInput, domain.MaxEventCapacity)
	}
	if req.StartTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return domain.ErrInvalidTimeRange
	}
	if !req.StartTime.After(now) {
		return domain.ErrEventInPast
	}
	return nil
}

func (s *Service) wrapErr(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		s.logger.Warn("%s: %v", op, err)
		return err
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}
