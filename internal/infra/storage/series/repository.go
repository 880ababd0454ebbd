package series

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"kind",
	"title",
	"description",
	"pattern",
	"days_of_week",
	"time_of_day",
	"duration_minutes",
	"window_start",
	"window_end",
	"max_occurrences",
	"capacity",
	"category",
	"instructor",
	"location",
	"is_active",
	"created_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий шаблонов повторяющихся занятий и мероприятий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория серий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую серию
func (r *Repository) Create(ctx context.Context, s *domain.RecurrenceSeries) (*domain.RecurrenceSeries, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("recurrence_series").
		Columns(
			"kind",
			"title",
			"description",
			"pattern",
			"days_of_week",
			"time_of_day",
			"duration_minutes",
			"window_start",
			"window_end",
			"max_occurrences",
			"capacity",
			"category",
			"instructor",
			"location",
			"is_active",
			"created_by",
		).
		Values(
			s.Kind,
			s.Title,
			s.Description,
			s.Pattern,
			pq.Array(toInt64s(s.DaysOfWeek)),
			s.TimeOfDay,
			s.DurationMinutes,
			s.WindowStart,
			s.WindowEnd,
			s.MaxOccurrences,
			s.Capacity,
			nullableCategory(s.Category),
			s.Instructor,
			s.Location,
			s.IsActive,
			s.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return s, nil
}

// GetByID получает серию по ID (внутри транзакции с блокировкой строки)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RecurrenceSeries, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("recurrence_series").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	s, err := scanSeries(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeriesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan series: %w", ErrScanRow, err)
	}

	return s, nil
}

// List возвращает серии, при activeOnly - только активные
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.RecurrenceSeries, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("recurrence_series").
		OrderBy("id ASC")
	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.RecurrenceSeries, 0)
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan series: %w", ErrScanRow, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// Update сохраняет изменения шаблона (kind не меняется)
func (r *Repository) Update(ctx context.Context, s *domain.RecurrenceSeries) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("recurrence_series").
		Set("title", s.Title).
		Set("description", s.Description).
		Set("pattern", s.Pattern).
		Set("days_of_week", pq.Array(toInt64s(s.DaysOfWeek))).
		Set("time_of_day", s.TimeOfDay).
		Set("duration_minutes", s.DurationMinutes).
		Set("window_start", s.WindowStart).
		Set("window_end", s.WindowEnd).
		Set("max_occurrences", s.MaxOccurrences).
		Set("capacity", s.Capacity).
		Set("category", nullableCategory(s.Category)).
		Set("instructor", s.Instructor).
		Set("location", s.Location).
		Set("is_active", s.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSeriesNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// AddExclusion запоминает удалённый экземпляр, чтобы повторная генерация его не восстановила
func (r *Repository) AddExclusion(ctx context.Context, seriesID int64, originalStart time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("series_exclusions").
		Columns("series_id", "original_start").
		Values(seriesID, originalStart).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddExclusion - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddExclusion - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ListExclusions возвращает исходные моменты начала удалённых экземпляров серии
func (r *Repository) ListExclusions(ctx context.Context, seriesID int64) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("original_start").
		From("series_exclusions").
		Where(squirrel.Eq{"series_id": seriesID}).
		OrderBy("original_start ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExclusions - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExclusions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%w: ListExclusions - scan: %w", ErrScanRow, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExclusions - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

func scanSeries(row rowScanner) (*domain.RecurrenceSeries, error) {
	var (
		s        domain.RecurrenceSeries
		days     pq.Int64Array
		category sql.NullString
	)
	err := row.Scan(
		&s.ID,
		&s.Kind,
		&s.Title,
		&s.Description,
		&s.Pattern,
		&days,
		&s.TimeOfDay,
		&s.DurationMinutes,
		&s.WindowStart,
		&s.WindowEnd,
		&s.MaxOccurrences,
		&s.Capacity,
		&category,
		&s.Instructor,
		&s.Location,
		&s.IsActive,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.DaysOfWeek = make([]int, len(days))
	for i, d := range days {
		s.DaysOfWeek[i] = int(d)
	}
	s.Category = domain.SlotCategory(category.String)

	return &s, nil
}

func toInt64s(days []int) []int64 {
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func nullableCategory(c domain.SlotCategory) sql.NullString {
	return sql.NullString{String: string(c), Valid: c != ""}
}
