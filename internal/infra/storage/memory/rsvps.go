package memory

import (
	"context"
	"sort"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// RSVPRepository ответы на мероприятия в памяти
type RSVPRepository struct {
	s *Store
}

func (r *RSVPRepository) Create(ctx context.Context, rsvp *domain.RSVP) (*domain.RSVP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	rsvp.ID = r.s.nextID()
	rsvp.CreatedAt = now
	rsvp.UpdatedAt = now
	r.s.data.rsvps[rsvp.ID] = *rsvp
	return rsvp, nil
}

func (r *RSVPRepository) Get(ctx context.Context, eventID, memberID int64) (*domain.RSVP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rsvp := range r.s.data.rsvps {
		if rsvp.EventID == eventID && rsvp.MemberID == memberID {
			return &rsvp, nil
		}
	}
	return nil, domain.ErrRSVPNotFound
}

func (r *RSVPRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.RSVP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.RSVP, 0)
	for _, rsvp := range r.s.data.rsvps {
		if rsvp.EventID == eventID {
			rsvp := rsvp
			result = append(result, &rsvp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *RSVPRepository) Update(ctx context.Context, rsvp *domain.RSVP) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.rsvps[rsvp.ID]
	if !ok {
		return domain.ErrRSVPNotFound
	}
	current.Status = rsvp.Status
	current.GuestCount = rsvp.GuestCount
	current.Notes = rsvp.Notes
	current.WaitlistedAt = rsvp.WaitlistedAt
	current.UpdatedAt = r.s.now()
	r.s.data.rsvps[rsvp.ID] = current
	rsvp.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *RSVPRepository) Delete(ctx context.Context, eventID, memberID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, rsvp := range r.s.data.rsvps {
		if rsvp.EventID == eventID && rsvp.MemberID == memberID {
			delete(r.s.data.rsvps, id)
			return nil
		}
	}
	return domain.ErrRSVPNotFound
}
