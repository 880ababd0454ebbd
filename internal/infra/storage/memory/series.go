package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// SeriesRepository серии в памяти
type SeriesRepository struct {
	s *Store
}

func (r *SeriesRepository) Create(ctx context.Context, series *domain.RecurrenceSeries) (*domain.RecurrenceSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	series.ID = r.s.nextID()
	series.CreatedAt = now
	series.UpdatedAt = now
	r.put(series)
	return series, nil
}

func (r *SeriesRepository) GetByID(ctx context.Context, id int64) (*domain.RecurrenceSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	series, ok := r.s.data.series[id]
	if !ok {
		return nil, domain.ErrSeriesNotFound
	}
	series.DaysOfWeek = append([]int(nil), series.DaysOfWeek...)
	return &series, nil
}

func (r *SeriesRepository) List(ctx context.Context, activeOnly bool) ([]*domain.RecurrenceSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.RecurrenceSeries, 0)
	for _, series := range r.s.data.series {
		if activeOnly && !series.IsActive {
			continue
		}
		series := series
		series.DaysOfWeek = append([]int(nil), series.DaysOfWeek...)
		result = append(result, &series)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *SeriesRepository) Update(ctx context.Context, series *domain.RecurrenceSeries) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.series[series.ID]
	if !ok {
		return domain.ErrSeriesNotFound
	}
	series.Kind = current.Kind
	series.CreatedAt = current.CreatedAt
	series.UpdatedAt = r.s.now()
	r.put(series)
	return nil
}

func (r *SeriesRepository) AddExclusion(ctx context.Context, seriesID int64, originalStart time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	set, ok := r.s.data.exclusions[seriesID]
	if !ok {
		set = make(map[int64]time.Time)
		r.s.data.exclusions[seriesID] = set
	}
	set[originalStart.UnixNano()] = originalStart
	return nil
}

func (r *SeriesRepository) ListExclusions(ctx context.Context, seriesID int64) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]time.Time, 0, len(r.s.data.exclusions[seriesID]))
	for _, t := range r.s.data.exclusions[seriesID] {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result, nil
}

func (r *SeriesRepository) put(series *domain.RecurrenceSeries) {
	stored := *series
	stored.DaysOfWeek = append([]int(nil), series.DaysOfWeek...)
	r.s.data.series[series.ID] = stored
}
