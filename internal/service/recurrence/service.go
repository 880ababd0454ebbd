package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

// Service генератор вхождений по шаблонам серий
type Service struct {
	seriesRepo   SeriesRepository
	slotRepo     SlotRepository
	eventRepo    EventRepository
	bookingRepo  BookingRepository
	attendance   Attendance
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса серий.
// location задаёт часовой пояс, в котором вычисляются дни и время суток серии
func NewService(
	seriesRepo SeriesRepository,
	slotRepo SlotRepository,
	eventRepo EventRepository,
	bookingRepo BookingRepository,
	attendance Attendance,
	txManager TransactionManager,
	metrics Metrics,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		seriesRepo:   seriesRepo,
		slotRepo:     slotRepo,
		eventRepo:    eventRepo,
		bookingRepo:  bookingRepo,
		attendance:   attendance,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		location:     location,
		logger:       logger,
	}
}

// CreateSeries создаёт шаблон и сразу генерирует вхождения
func (s *Service) CreateSeries(ctx context.Context, req *models.CreateSeriesRequest) (*models.CreateSeriesResponse, error) {
	series, err := toDomainSeries(req, s.location)
	if err != nil {
		s.logger.Warn("CreateSeries: invalid request: %v", err)
		return nil, err
	}
	if err := validateSeries(series); err != nil {
		s.logger.Warn("CreateSeries: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("CreateSeries: kind=%s, pattern=%s, days=%v, time=%s, from=%s",
		series.Kind, series.Pattern, series.DaysOfWeek, series.TimeOfDay, req.WindowStart)

	var created int
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		series, err = s.seriesRepo.Create(txCtx, series)
		if err != nil {
			return err
		}
		created, err = s.expand(txCtx, series)
		return err
	})
	if err != nil {
		return nil, s.wrapErr("CreateSeries", err)
	}

	s.metrics.ObserveOccurrences(string(series.Kind), created)
	s.logger.Info("CreateSeries: series id=%d created with %d occurrences", series.ID, created)

	return &models.CreateSeriesResponse{
		Series:  toSeriesResponse(series, s.location, s.rruleOf(series)),
		Created: created,
	}, nil
}

// Expand генерирует недостающие вхождения серии и возвращает число созданных.
// Повторный вызов не создаёт дубликатов
func (s *Service) Expand(ctx context.Context, seriesID int64) (int, error) {
	var (
		created int
		kind    domain.OccurrenceKind
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		series, err := s.seriesRepo.GetByID(txCtx, seriesID)
		if err != nil {
			return err
		}
		kind = series.Kind
		created, err = s.expand(txCtx, series)
		return err
	})
	if err != nil {
		return 0, s.wrapErr("Expand", err)
	}

	s.metrics.ObserveOccurrences(string(kind), created)
	s.logger.Info("Expand: series id=%d, created %d occurrences", seriesID, created)
	return created, nil
}

// UpdateSeries применяет изменения шаблона, удаляет будущие свободные вхождения без исключений
// и генерирует их заново. Занятые вхождения остаются как исключения. Возвращает число созданных вхождений
func (s *Service) UpdateSeries(ctx context.Context, seriesID int64, req *models.UpdateSeriesRequest) (int, error) {
	s.logger.Info("UpdateSeries: series id=%d", seriesID)

	var (
		created int
		kind    domain.OccurrenceKind
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		series, err := s.seriesRepo.GetByID(txCtx, seriesID)
		if err != nil {
			return err
		}
		kind = series.Kind

		if err := applyUpdate(series, req, s.location); err != nil {
			return err
		}
		if err := validateSeries(series); err != nil {
			return err
		}
		if err := s.seriesRepo.Update(txCtx, series); err != nil {
			return err
		}

		now := s.timeProvider.Now()
		deleted, detached, err := s.replaceFuture(txCtx, series, now)
		if err != nil {
			return err
		}
		s.logger.Info("UpdateSeries: series id=%d, removed %d future occurrences, kept %d occupied as exceptions",
			seriesID, deleted, detached)

		created, err = s.expand(txCtx, series)
		return err
	})
	if err != nil {
		return 0, s.wrapErr("UpdateSeries", err)
	}

	s.metrics.ObserveOccurrences(string(kind), created)
	s.logger.Info("UpdateSeries: series id=%d regenerated, created %d occurrences", seriesID, created)
	return created, nil
}

// DeleteSeries удаляет все вхождения серии и деактивирует шаблон
func (s *Service) DeleteSeries(ctx context.Context, seriesID int64) error {
	s.logger.Info("DeleteSeries: series id=%d", seriesID)

	var deleted int
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		series, err := s.seriesRepo.GetByID(txCtx, seriesID)
		if err != nil {
			return err
		}

		switch series.Kind {
		case domain.OccurrenceSlot:
			deleted, err = s.slotRepo.DeleteBySeries(txCtx, seriesID)
		case domain.OccurrenceEvent:
			deleted, err = s.eventRepo.DeleteBySeries(txCtx, seriesID)
		default:
			return domain.ErrOccurrenceKind
		}
		if err != nil {
			return err
		}

		series.IsActive = false
		return s.seriesRepo.Update(txCtx, series)
	})
	if err != nil {
		return s.wrapErr("DeleteSeries", err)
	}

	s.logger.Info("DeleteSeries: series id=%d deactivated, %d occurrences deleted", seriesID, deleted)
	return nil
}

// DeleteOccurrence удаляет одно вхождение. Для вхождения серии сохраняется исключение,
// чтобы повторная генерация его не восстановила.
// Слот с бронированиями удаляется только с force, RSVP события удаляются каскадно
func (s *Service) DeleteOccurrence(ctx context.Context, kind domain.OccurrenceKind, id int64, force bool) error {
	s.logger.Info("DeleteOccurrence: kind=%s, id=%d, force=%t", kind, id, force)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var (
			seriesID      *int64
			originalStart time.Time
		)

		switch kind {
		case domain.OccurrenceSlot:
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
			seriesID, originalStart = slot.SeriesID, slot.OriginalStart
		case domain.OccurrenceEvent:
			event, err := s.eventRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if err := s.eventRepo.Delete(txCtx, id); err != nil {
				return err
			}
			seriesID, originalStart = event.SeriesID, event.OriginalStart
		default:
			return domain.ErrOccurrenceKind
		}

		if seriesID == nil {
			return nil
		}
		return s.seriesRepo.AddExclusion(txCtx, *seriesID, originalStart)
	})
	if err != nil {
		return s.wrapErr("DeleteOccurrence", err)
	}

	s.logger.Info("DeleteOccurrence: %s id=%d deleted", kind, id)
	return nil
}

// UpdateOccurrence изменяет одно вхождение и помечает его исключением,
// чтобы перегенерация серии его не затронула
func (s *Service) UpdateOccurrence(ctx context.Context, kind domain.OccurrenceKind, id int64, req *models.UpdateOccurrenceRequest) (*models.OccurrenceResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	s.logger.Info("UpdateOccurrence: kind=%s, id=%d", kind, id)

	var (
		resp            *models.OccurrenceResponse
		capacityGrowing bool
	)
	now := s.timeProvider.Now()

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		switch kind {
		case domain.OccurrenceSlot:
			slot, err := s.slotRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			before := *slot
			if err := applySlotChanges(slot, req, now); err != nil {
				return err
			}
			moved := !slot.StartTime.Equal(before.StartTime) || !slot.EndTime.Equal(before.EndTime)
			if moved && slot.Occupancy > 0 {
				if err := s.checkMembersFree(txCtx, slot); err != nil {
					return err
				}
			}
			if err := s.slotRepo.Update(txCtx, slot); err != nil {
				return err
			}
			resp = slotOccurrence(slot)
		case domain.OccurrenceEvent:
			event, err := s.eventRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			before := *event
			if err := applyEventChanges(event, req, now); err != nil {
				return err
			}
			if s.attendance != nil && !event.Unlimited() && (before.Unlimited() || event.Capacity < before.Capacity) {
				attending, err := s.attendance.AttendeeCount(txCtx, id)
				if err != nil {
					return err
				}
				if event.Capacity < attending {
					return domain.ErrCapacityBelowOccupancy
				}
			}
			capacityGrowing = (event.Unlimited() && !before.Unlimited()) ||
				(!before.Unlimited() && event.Capacity > before.Capacity)
			if err := s.eventRepo.Update(txCtx, event); err != nil {
				return err
			}
			resp = eventOccurrence(event)
		default:
			return domain.ErrOccurrenceKind
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapErr("UpdateOccurrence", err)
	}

	if capacityGrowing && s.attendance != nil {
		promoted, err := s.attendance.PromoteWaitlist(ctx, id)
		if err != nil {
			s.logger.Error("UpdateOccurrence: waitlist promotion failed for event id=%d: %v", id, err)
		} else if promoted > 0 {
			s.logger.Info("UpdateOccurrence: event id=%d, promoted %d from waitlist", id, promoted)
		}
	}

	s.logger.Info("UpdateOccurrence: %s id=%d updated", kind, id)
	return resp, nil
}

// checkMembersFree проверяет, что новое время слота не пересекается
// с другими подтверждёнными бронированиями записанных участников
func (s *Service) checkMembersFree(ctx context.Context, slot *domain.Slot) error {
	bookings, err := s.bookingRepo.ListConfirmedBySlot(ctx, slot.ID)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		if err := s.bookingRepo.LockMember(ctx, b.MemberID); err != nil {
			return err
		}
		overlapping, err := s.bookingRepo.FindOverlapping(ctx, b.MemberID, slot.StartTime, slot.EndTime, b.ID)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			s.logger.Warn("UpdateOccurrence: slot id=%d, member %d already booked at new time (booking id=%d)",
				slot.ID, b.MemberID, overlapping[0].ID)
			return domain.ErrMemberScheduleConflict
		}
	}
	return nil
}

// GetSeries возвращает серию вместе с её RRULE
func (s *Service) GetSeries(ctx context.Context, seriesID int64) (*models.SeriesResponse, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		return nil, s.wrapErr("GetSeries", err)
	}
	resp := toSeriesResponse(series, s.location, s.rruleOf(series))
	return &resp, nil
}

// ListSeries возвращает серии, при activeOnly только активные
func (s *Service) ListSeries(ctx context.Context, activeOnly bool) (*models.SeriesListResponse, error) {
	list, err := s.seriesRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, s.wrapErr("ListSeries", err)
	}

	resp := &models.SeriesListResponse{Series: make([]models.SeriesResponse, 0, len(list))}
	for _, series := range list {
		resp.Series = append(resp.Series, toSeriesResponse(series, s.location, s.rruleOf(series)))
	}
	resp.Total = len(resp.Series)
	return resp, nil
}

// CalendarEntry возвращает первое вхождение серии и RRULE для экспорта в календарь
func (s *Service) CalendarEntry(ctx context.Context, seriesID int64) (*models.SeriesCalendar, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		return nil, s.wrapErr("CalendarEntry", err)
	}

	candidates, err := Candidates(series, s.location)
	if err != nil {
		return nil, s.wrapErr("CalendarEntry", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: series id=%d has no occurrences", ErrInvalidInput, seriesID)
	}

	rrule, err := SeriesRRule(series, s.location)
	if err != nil {
		return nil, s.wrapErr("CalendarEntry", err)
	}

	return &models.SeriesCalendar{
		ID:          series.ID,
		Title:       series.Title,
		Description: series.Description,
		Location:    series.Location,
		Start:       candidates[0].OriginalStart,
		End:         candidates[0].End,
		RRule:       rrule,
	}, nil
}

// expand создаёт отсутствующие будущие вхождения, пропуская существующие и исключённые
func (s *Service) expand(ctx context.Context, series *domain.RecurrenceSeries) (int, error) {
	if !series.IsActive {
		return 0, nil
	}

	exclusions, err := s.seriesRepo.ListExclusions(ctx, series.ID)
	if err != nil {
		return 0, err
	}

	var existing []time.Time
	switch series.Kind {
	case domain.OccurrenceSlot:
		existing, err = s.slotRepo.ListOriginalStarts(ctx, series.ID)
	case domain.OccurrenceEvent:
		existing, err = s.eventRepo.ListOriginalStarts(ctx, series.ID)
	default:
		return 0, domain.ErrOccurrenceKind
	}
	if err != nil {
		return 0, err
	}

	skip := make(map[int64]bool, len(exclusions)+len(existing))
	for _, t := range exclusions {
		skip[t.Unix()] = true
	}
	for _, t := range existing {
		skip[t.Unix()] = true
	}

	// В maxOccurrences входят уже созданные, исключённые и будущие вхождения.
	// Прошедшие кандидаты, которые никогда не создавались, лимит не расходуют
	now := s.timeProvider.Now()
	candidates, err := walk(series, s.location, func(c Candidate) bool {
		return skip[c.OriginalStart.Unix()] || c.OriginalStart.After(now)
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, c := range candidates {
		if skip[c.OriginalStart.Unix()] {
			continue
		}

		ok, err := s.createOccurrence(ctx, series, c)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func (s *Service) createOccurrence(ctx context.Context, series *domain.RecurrenceSeries, c Candidate) (bool, error) {
	seriesID := series.ID

	switch series.Kind {
	case domain.OccurrenceSlot:
		_, created, err := s.slotRepo.CreateOccurrence(ctx, &domain.Slot{
			Title:         series.Title,
			StartTime:     c.OriginalStart,
			EndTime:       c.End,
			Category:      series.Category,
			Capacity:      series.Capacity,
			Instructor:    series.Instructor,
			Location:      series.Location,
			SeriesID:      &seriesID,
			OriginalStart: c.OriginalStart,
			CreatedBy:     series.CreatedBy,
		})
		return created, err
	case domain.OccurrenceEvent:
		_, created, err := s.eventRepo.CreateOccurrence(ctx, &domain.Event{
			Title:         series.Title,
			Description:   series.Description,
			Location:      series.Location,
			StartTime:     c.OriginalStart,
			EndTime:       c.End,
			Capacity:      series.Capacity,
			SeriesID:      &seriesID,
			OriginalStart: c.OriginalStart,
			CreatedBy:     series.CreatedBy,
		})
		return created, err
	default:
		return false, domain.ErrOccurrenceKind
	}
}

// replaceFuture удаляет будущие свободные вхождения серии, а занятые отвязывает от шаблона,
// помечая исключениями
func (s *Service) replaceFuture(ctx context.Context, series *domain.RecurrenceSeries, after time.Time) (int, int, error) {
	var (
		deleted, detached int
		err               error
	)
	switch series.Kind {
	case domain.OccurrenceSlot:
		if deleted, err = s.slotRepo.DeleteFutureFreeBySeries(ctx, series.ID, after); err != nil {
			return 0, 0, err
		}
		detached, err = s.slotRepo.DetachFutureBySeries(ctx, series.ID, after)
	case domain.OccurrenceEvent:
		if deleted, err = s.eventRepo.DeleteFutureFreeBySeries(ctx, series.ID, after); err != nil {
			return 0, 0, err
		}
		detached, err = s.eventRepo.DetachFutureBySeries(ctx, series.ID, after)
	default:
		return 0, 0, domain.ErrOccurrenceKind
	}
	if err != nil {
		return 0, 0, err
	}
	return deleted, detached, nil
}

func (s *Service) rruleOf(series *domain.RecurrenceSeries) string {
	rule, err := SeriesRRule(series, s.location)
	if err != nil {
		s.logger.Warn("rrule: series id=%d: %v", series.ID, err)
		return ""
	}
	return rule
}

func (s *Service) wrapErr(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		s.logger.Warn("%s: rejected: %v", op, err)
		return err
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}
