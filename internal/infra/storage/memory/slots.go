package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// SlotRepository слоты в памяти
type SlotRepository struct {
	s *Store
}

func (r *SlotRepository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if slot.OriginalStart.IsZero() {
		slot.OriginalStart = slot.StartTime
	}
	r.insert(slot)
	return slot, nil
}

func (r *SlotRepository) CreateOccurrence(ctx context.Context, slot *domain.Slot) (*domain.Slot, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if slot.SeriesID != nil {
		for _, existing := range r.s.data.slots {
			if existing.SeriesID != nil && *existing.SeriesID == *slot.SeriesID && existing.OriginalStart.Equal(slot.OriginalStart) {
				return nil, false, nil
			}
		}
	}
	r.insert(slot)
	return slot, true, nil
}

func (r *SlotRepository) insert(slot *domain.Slot) {
	now := r.s.now()
	slot.ID = r.s.nextID()
	slot.Occupancy = 0
	slot.CreatedAt = now
	slot.UpdatedAt = now
	r.s.data.slots[slot.ID] = *slot
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.data.slots[id]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return &slot, nil
}

func (r *SlotRepository) List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Slot, 0)
	for _, slot := range r.s.data.slots {
		if filter.From != nil && slot.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !slot.StartTime.Before(*filter.To) {
			continue
		}
		if filter.Category != nil && slot.Category != *filter.Category {
			continue
		}
		if filter.SeriesID != nil && (slot.SeriesID == nil || *slot.SeriesID != *filter.SeriesID) {
			continue
		}
		slot := slot
		result = append(result, &slot)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *SlotRepository) ListOriginalStarts(ctx context.Context, seriesID int64) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	starts := make([]time.Time, 0)
	for _, slot := range r.s.data.slots {
		if slot.SeriesID != nil && *slot.SeriesID == seriesID {
			starts = append(starts, slot.OriginalStart)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

func (r *SlotRepository) Update(ctx context.Context, slot *domain.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.slots[slot.ID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	current.Title = slot.Title
	current.StartTime = slot.StartTime
	current.EndTime = slot.EndTime
	current.Category = slot.Category
	current.Capacity = slot.Capacity
	current.Instructor = slot.Instructor
	current.Location = slot.Location
	current.IsException = slot.IsException
	current.UpdatedAt = r.s.now()
	r.s.data.slots[slot.ID] = current
	return nil
}

func (r *SlotRepository) IncrementOccupancy(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.data.slots[id]
	if !ok || slot.Occupancy >= slot.Capacity {
		return domain.ErrSlotFull
	}
	slot.Occupancy++
	slot.UpdatedAt = r.s.now()
	r.s.data.slots[id] = slot
	return nil
}

func (r *SlotRepository) DecrementOccupancy(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.data.slots[id]
	if !ok {
		return domain.ErrSlotNotFound
	}
	if slot.Occupancy <= 0 {
		return domain.ErrOccupancyUnderflow
	}
	slot.Occupancy--
	slot.UpdatedAt = r.s.now()
	r.s.data.slots[id] = slot
	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.slots[id]; !ok {
		return domain.ErrSlotNotFound
	}
	r.deleteLocked(id)
	return nil
}

func (r *SlotRepository) DeleteFutureFreeBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, slot := range r.s.data.slots {
		if slot.SeriesID == nil || *slot.SeriesID != seriesID {
			continue
		}
		if slot.IsException || slot.Occupancy != 0 || !slot.StartTime.After(after) {
			continue
		}
		r.deleteLocked(id)
		n++
	}
	return n, nil
}

func (r *SlotRepository) DetachFutureBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, slot := range r.s.data.slots {
		if slot.SeriesID == nil || *slot.SeriesID != seriesID || slot.IsException || !slot.StartTime.After(after) {
			continue
		}
		slot.IsException = true
		slot.UpdatedAt = r.s.now()
		r.s.data.slots[id] = slot
		n++
	}
	return n, nil
}

func (r *SlotRepository) DeleteBySeries(ctx context.Context, seriesID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, slot := range r.s.data.slots {
		if slot.SeriesID != nil && *slot.SeriesID == seriesID {
			r.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

// deleteLocked удаляет слот вместе с бронированиями (как ON DELETE CASCADE)
func (r *SlotRepository) deleteLocked(id int64) {
	delete(r.s.data.slots, id)
	for bid, b := range r.s.data.bookings {
		if b.SlotID == id {
			delete(r.s.data.bookings, bid)
		}
	}
}
