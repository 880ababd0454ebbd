package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// EventRepository мероприятия в памяти
type EventRepository struct {
	s *Store
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.OriginalStart.IsZero() {
		e.OriginalStart = e.StartTime
	}
	r.insert(e)
	return e, nil
}

func (r *EventRepository) CreateOccurrence(ctx context.Context, e *domain.Event) (*domain.Event, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.SeriesID != nil {
		for _, existing := range r.s.data.events {
			if existing.SeriesID != nil && *existing.SeriesID == *e.SeriesID && existing.OriginalStart.Equal(e.OriginalStart) {
				return nil, false, nil
			}
		}
	}
	r.insert(e)
	return e, true, nil
}

func (r *EventRepository) insert(e *domain.Event) {
	now := r.s.now()
	e.ID = r.s.nextID()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.s.data.events[e.ID] = *e
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.data.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Event, 0)
	for _, e := range r.s.data.events {
		if filter.From != nil && e.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.StartTime.Before(*filter.To) {
			continue
		}
		if filter.SeriesID != nil && (e.SeriesID == nil || *e.SeriesID != *filter.SeriesID) {
			continue
		}
		e := e
		result = append(result, &e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *EventRepository) ListOriginalStarts(ctx context.Context, seriesID int64) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	starts := make([]time.Time, 0)
	for _, e := range r.s.data.events {
		if e.SeriesID != nil && *e.SeriesID == seriesID {
			starts = append(starts, e.OriginalStart)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.events[e.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	current.Title = e.Title
	current.Description = e.Description
	current.Location = e.Location
	current.StartTime = e.StartTime
	current.EndTime = e.EndTime
	current.Capacity = e.Capacity
	current.IsException = e.IsException
	current.UpdatedAt = r.s.now()
	r.s.data.events[e.ID] = current
	e.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	r.deleteLocked(id)
	return nil
}

func (r *EventRepository) DeleteFutureFreeBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, e := range r.s.data.events {
		if e.SeriesID == nil || *e.SeriesID != seriesID || e.IsException || !e.StartTime.After(after) {
			continue
		}
		if r.hasRSVPsLocked(id) {
			continue
		}
		r.deleteLocked(id)
		n++
	}
	return n, nil
}

func (r *EventRepository) DetachFutureBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, e := range r.s.data.events {
		if e.SeriesID == nil || *e.SeriesID != seriesID || e.IsException || !e.StartTime.After(after) {
			continue
		}
		e.IsException = true
		e.UpdatedAt = r.s.now()
		r.s.data.events[id] = e
		n++
	}
	return n, nil
}

func (r *EventRepository) DeleteBySeries(ctx context.Context, seriesID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, e := range r.s.data.events {
		if e.SeriesID != nil && *e.SeriesID == seriesID {
			r.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

func (r *EventRepository) hasRSVPsLocked(eventID int64) bool {
	for _, rsvp := range r.s.data.rsvps {
		if rsvp.EventID == eventID {
			return true
		}
	}
	return false
}

// deleteLocked удаляет мероприятие вместе с ответами (как ON DELETE CASCADE)
func (r *EventRepository) deleteLocked(id int64) {
	delete(r.s.data.events, id)
	for rid, rsvp := range r.s.data.rsvps {
		if rsvp.EventID == id {
			delete(r.s.data.rsvps, rid)
		}
	}
}
