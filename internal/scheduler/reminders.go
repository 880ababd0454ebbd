package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
)

var ErrInvalidSchedule = errors.New("scheduler: invalid schedule")

// Reminders периодически рассылает напоминания о ближайших занятиях.
// Жизненным циклом управляет вызывающий код через Start/Stop
type Reminders struct {
	cron     *cron.Cron
	bookings BookingRepository
	notifier Notifier
	clock    TimeProvider
	logger   Logger

	lead    time.Duration
	window  time.Duration
	timeout time.Duration
}

// NewReminders регистрирует задачу по cron-выражению schedule.
// Каждый запуск ищет занятия, начинающиеся в интервале (now+lead-window, now+lead]
func NewReminders(
	schedule string,
	lead, window time.Duration,
	bookings BookingRepository,
	notifier Notifier,
	clock TimeProvider,
	logger Logger,
) (*Reminders, error) {
	if lead <= 0 || window <= 0 {
		return nil, fmt.Errorf("%w: lead and window must be positive", ErrInvalidSchedule)
	}

	r := &Reminders{
		cron:     cron.New(),
		bookings: bookings,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		lead:     lead,
		window:   window,
		timeout:  window,
	}

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, schedule, err)
	}
	return r, nil
}

// Start запускает планировщик в фоне
func (r *Reminders) Start() {
	r.cron.Start()
	r.logger.Info("Reminders: started lead=%s window=%s", r.lead, r.window)
}

// Stop останавливает планировщик и ждёт завершения текущего запуска.
// Возвращает ошибку контекста, если запуск не успел завершиться
func (r *Reminders) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		r.logger.Info("Reminders: stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Reminders: stop timed out, running job abandoned")
		return ctx.Err()
	}
}

func (r *Reminders) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.Error("Reminders: run failed: %v", err)
	}
}

// RunOnce выполняет один проход и возвращает количество поставленных в очередь напоминаний
func (r *Reminders) RunOnce(ctx context.Context) (int, error) {
	now := r.clock.Now()
	to := now.Add(r.lead)
	from := to.Add(-r.window)

	upcoming, err := r.bookings.ListConfirmedStartingBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("scheduler: list upcoming bookings: %w", err)
	}

	sent := 0
	for _, item := range upcoming {
		msg := notifications.Message{
			RecipientID: item.Booking.MemberID,
			Template:    notifications.TemplateLessonReminder,
			Data: map[string]string{
				"booking_id": strconv.FormatInt(item.Booking.ID, 10),
				"slot_id":    strconv.FormatInt(item.Slot.ID, 10),
				"title":      item.Slot.Title,
				"start_time": item.Slot.StartTime.Format(time.RFC3339),
			},
		}
		if item.Slot.Location != nil {
			msg.Data["location"] = *item.Slot.Location
		}
		if item.Slot.Instructor != nil {
			msg.Data["instructor"] = *item.Slot.Instructor
		}

		if !r.notifier.Dispatch(msg) {
			r.logger.Warn("RunOnce: reminder dropped booking=%d member=%d", item.Booking.ID, item.Booking.MemberID)
			continue
		}
		sent++
	}

	if sent > 0 {
		r.logger.Info("RunOnce: queued %d reminders for (%s, %s]", sent, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return sent, nil
}
