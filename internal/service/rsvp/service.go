package rsvp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
)

// Service менеджер ответов на события и их ёмкости
type Service struct {
	eventRepo    EventRepository
	rsvpRepo     RSVPRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса RSVP
func NewService(
	eventRepo EventRepository,
	rsvpRepo RSVPRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		eventRepo:    eventRepo,
		rsvpRepo:     rsvpRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Respond создаёт или обновляет ответ участника.
// Переход в attending проверяется по ёмкости без учёта прежних мест самого участника;
// при нехватке мест ответ сохраняется в листе ожидания и возвращается Waitlisted=true.
// Освободившиеся места сразу отдаются листу ожидания в порядке очереди
func (s *Service) Respond(ctx context.Context, req *models.RespondRequest) (*models.RespondResponse, error) {
	if err := validateRespond(req); err != nil {
		s.logger.Warn("Respond: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("Respond: event=%d, member=%d, status=%s, guests=%d", req.EventID, req.MemberID, req.Status, req.GuestCount)

	now := s.timeProvider.Now()
	var (
		event    *domain.Event
		saved    *domain.RSVP
		promoted []*domain.RSVP
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Событие с блокировкой строки
		var err error
		event, err = s.eventRepo.GetByID(txCtx, req.EventID)
		if err != nil {
			return err
		}
		if !event.StartTime.After(now) {
			return domain.ErrEventInPast
		}

		// 2. Текущие ответы и прежний ответ участника
		rsvps, err := s.rsvpRepo.ListByEvent(txCtx, event.ID)
		if err != nil {
			return err
		}
		var existing *domain.RSVP
		for _, r := range rsvps {
			if r.MemberID == req.MemberID {
				existing = r
				break
			}
		}

		// 3. Решение по ёмкости
		next := &domain.RSVP{
			EventID:    event.ID,
			MemberID:   req.MemberID,
			Status:     domain.RSVPStatus(req.Status),
			GuestCount: req.GuestCount,
			Notes:      req.Notes,
		}
		if next.Status == domain.RSVPAttending {
			used := domain.AttendingUnits(rsvps, req.MemberID)
			if !event.Fits(used, next.Units()) {
				next.Status = domain.RSVPWaitlist
				next.WaitlistedAt = ptr.Ptr(now)
				if existing != nil && existing.Status == domain.RSVPWaitlist && existing.WaitlistedAt != nil {
					next.WaitlistedAt = existing.WaitlistedAt
				}
			}
		}

		// 4. Сохранение (upsert по событию и участнику)
		if existing == nil {
			saved, err = s.rsvpRepo.Create(txCtx, next)
			if err != nil {
				return err
			}
		} else {
			next.ID = existing.ID
			next.CreatedAt = existing.CreatedAt
			if err := s.rsvpRepo.Update(txCtx, next); err != nil {
				return err
			}
			saved = next
		}

		// 5. Освободились места: продвигаем лист ожидания
		freed := existing != nil && existing.Status == domain.RSVPAttending &&
			(saved.Status != domain.RSVPAttending || saved.Units() < existing.Units())
		if freed {
			promoted, err = s.promote(txCtx, event)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapErr("Respond", err)
	}

	waitlisted := saved.Status == domain.RSVPWaitlist
	s.metrics.ObserveRSVP(string(saved.Status))
	s.metrics.ObservePromotions(len(promoted))

	s.logger.Info("Respond: event=%d, member=%d stored as %s, promoted=%d", event.ID, saved.MemberID, saved.Status, len(promoted))

	// Уведомления только после фиксации транзакции
	template := notifications.TemplateRSVPConfirmation
	if waitlisted {
		template = notifications.TemplateRSVPWaitlisted
	}
	s.notify(template, event, saved)
	s.notifyPromoted(event, promoted)

	return &models.RespondResponse{
		RSVP:       models.FromDomainRSVP(saved),
		Waitlisted: waitlisted,
		Promoted:   models.FromDomainRSVPs(promoted),
	}, nil
}

// Cancel удаляет ответ участника и продвигает лист ожидания
func (s *Service) Cancel(ctx context.Context, eventID, memberID int64) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: event=%d, member=%d", eventID, memberID)

	now := s.timeProvider.Now()
	var (
		event    *domain.Event
		promoted []*domain.RSVP
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByID(txCtx, eventID)
		if err != nil {
			return err
		}

		existing, err := s.rsvpRepo.Get(txCtx, eventID, memberID)
		if err != nil {
			return err
		}
		if err := s.rsvpRepo.Delete(txCtx, eventID, memberID); err != nil {
			return err
		}

		if existing.Status == domain.RSVPAttending && event.StartTime.After(now) {
			promoted, err = s.promote(txCtx, event)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapErr("Cancel", err)
	}

	s.metrics.ObservePromotions(len(promoted))
	s.notifyPromoted(event, promoted)

	s.logger.Info("Cancel: event=%d, member=%d removed, promoted=%d", eventID, memberID, len(promoted))
	return &models.CancelResponse{Promoted: models.FromDomainRSVPs(promoted)}, nil
}

// PromoteWaitlist отдаёт свободные места листу ожидания. Возвращает число продвинутых ответов
func (s *Service) PromoteWaitlist(ctx context.Context, eventID int64) (int, error) {
	var (
		event    *domain.Event
		promoted []*domain.RSVP
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByID(txCtx, eventID)
		if err != nil {
			return err
		}
		promoted, err = s.promote(txCtx, event)
		return err
	})
	if err != nil {
		return 0, s.wrapErr("PromoteWaitlist", err)
	}

	s.metrics.ObservePromotions(len(promoted))
	s.notifyPromoted(event, promoted)

	if len(promoted) > 0 {
		s.logger.Info("PromoteWaitlist: event=%d, promoted=%d", eventID, len(promoted))
	}
	return len(promoted), nil
}

// AttendeeCount возвращает сумму (1 + гости) по ответам attending
func (s *Service) AttendeeCount(ctx context.Context, eventID int64) (int, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return 0, s.wrapErr("AttendeeCount", err)
	}
	rsvps, err := s.rsvpRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, s.wrapErr("AttendeeCount", err)
	}
	return domain.AttendingUnits(rsvps, 0), nil
}

// Attendees возвращает число участников вместе с ёмкостью события
func (s *Service) Attendees(ctx context.Context, eventID int64) (*models.AttendeeCountResponse, error) {
	var resp *models.AttendeeCountResponse
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByID(txCtx, eventID)
		if err != nil {
			return err
		}
		rsvps, err := s.rsvpRepo.ListByEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		resp = &models.AttendeeCountResponse{
			EventID:   event.ID,
			Attending: domain.AttendingUnits(rsvps, 0),
			Capacity:  event.Capacity,
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapErr("Attendees", err)
	}
	return resp, nil
}

// ListByEvent возвращает все ответы по событию и очередь ожидания
func (s *Service) ListByEvent(ctx context.Context, eventID int64) (*models.RSVPListResponse, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, s.wrapErr("ListByEvent", err)
	}
	rsvps, err := s.rsvpRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, s.wrapErr("ListByEvent", err)
	}

	queue := domain.WaitlistQueue(rsvps)
	waitlist := make([]int64, 0, len(queue))
	for _, r := range queue {
		waitlist = append(waitlist, r.MemberID)
	}

	return &models.RSVPListResponse{
		RSVPs:     models.FromDomainRSVPs(rsvps),
		Attending: domain.AttendingUnits(rsvps, 0),
		Waitlist:  waitlist,
	}, nil
}

// promote продвигает голову очереди ожидания, пока она помещается; останавливается на первом,
// кто не помещается, чтобы не обходить очередь
func (s *Service) promote(ctx context.Context, event *domain.Event) ([]*domain.RSVP, error) {
	rsvps, err := s.rsvpRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	used := domain.AttendingUnits(rsvps, 0)
	promoted := make([]*domain.RSVP, 0)
	for _, r := range domain.WaitlistQueue(rsvps) {
		if !event.Fits(used, r.Units()) {
			break
		}
		r.Status = domain.RSVPAttending
		r.WaitlistedAt = nil
		if err := s.rsvpRepo.Update(ctx, r); err != nil {
			return nil, err
		}
		used += r.Units()
		promoted = append(promoted, r)
	}
	return promoted, nil
}

func (s *Service) notify(template string, event *domain.Event, r *domain.RSVP) {
	s.notifier.Dispatch(notifications.Message{
		RecipientID: r.MemberID,
		Template:    template,
		Data: map[string]string{
			"event_id":    strconv.FormatInt(event.ID, 10),
			"event_title": event.Title,
			"start_time":  event.StartTime.Format(time.RFC3339),
			"status":      string(r.Status),
			"guest_count": strconv.Itoa(r.GuestCount),
		},
	})
}

func (s *Service) notifyPromoted(event *domain.Event, promoted []*domain.RSVP) {
	for _, r := range promoted {
		s.notify(notifications.TemplateRSVPPromoted, event, r)
	}
}

func (s *Service) wrapErr(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		s.logger.Warn("%s: rejected: %v", op, err)
		return err
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}
