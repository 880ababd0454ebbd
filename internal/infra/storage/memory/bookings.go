package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	s *Store
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking.ID = r.s.nextID()
	booking.UpdatedAt = r.s.now()
	r.s.data.bookings[booking.ID] = *booking
	return booking, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.data.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.bookings[booking.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	booking.UpdatedAt = r.s.now()
	r.s.data.bookings[booking.ID] = *booking
	return nil
}

// LockMember ничего не делает: транзакции в памяти и так последовательны
func (r *BookingRepository) LockMember(ctx context.Context, memberID int64) error {
	return nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, memberID int64, start, end time.Time, excludeBookingID int64) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.s.data.bookings {
		if b.MemberID != memberID || b.State != domain.BookingConfirmed || b.ID == excludeBookingID {
			continue
		}
		slot, ok := r.s.data.slots[b.SlotID]
		if !ok || !domain.Overlaps(slot.StartTime, slot.EndTime, start, end) {
			continue
		}
		b := b
		result = append(result, &b)
	}
	return result, nil
}

func (r *BookingRepository) ListConfirmedBySlot(ctx context.Context, slotID int64) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.s.data.bookings {
		if b.SlotID != slotID || b.State != domain.BookingConfirmed {
			continue
		}
		b := b
		result = append(result, &b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *BookingRepository) ListUpcomingByMember(ctx context.Context, memberID int64, after time.Time) ([]*domain.BookingWithSlot, error) {
	return r.listWithSlots(func(b domain.Booking, s domain.Slot) bool {
		return b.MemberID == memberID && b.State == domain.BookingConfirmed && s.StartTime.After(after)
	}), nil
}

func (r *BookingRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.BookingWithSlot, error) {
	return r.listWithSlots(func(b domain.Booking, s domain.Slot) bool {
		return b.State == domain.BookingConfirmed && s.StartTime.After(from) && !s.StartTime.After(to)
	}), nil
}

func (r *BookingRepository) listWithSlots(match func(domain.Booking, domain.Slot) bool) []*domain.BookingWithSlot {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.BookingWithSlot, 0)
	for _, b := range r.s.data.bookings {
		slot, ok := r.s.data.slots[b.SlotID]
		if !ok || !match(b, slot) {
			continue
		}
		result = append(result, &domain.BookingWithSlot{Booking: b, Slot: slot})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Slot.StartTime.Equal(b.Slot.StartTime) {
			return a.Slot.StartTime.Before(b.Slot.StartTime)
		}
		return a.Booking.ID < b.Booking.ID
	})
	return result
}
