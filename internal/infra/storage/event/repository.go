package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"title",
	"description",
	"location",
	"start_time",
	"end_time",
	"capacity",
	"series_id",
	"original_start",
	"is_exception",
	"created_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий мероприятий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мероприятий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает разовое мероприятие
func (r *Repository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if e.OriginalStart.IsZero() {
		e.OriginalStart = e.StartTime
	}

	query, args, err := insertBuilder(e).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return e, nil
}

// CreateOccurrence создает экземпляр серии, если его ещё нет (created=false - уже существовал)
func (r *Repository) CreateOccurrence(ctx context.Context, e *domain.Event) (*domain.Event, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := insertBuilder(e).
		Suffix("ON CONFLICT (series_id, original_start) WHERE series_id IS NOT NULL DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: CreateOccurrence - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: CreateOccurrence - execute insert: %w", ErrExecQuery, err)
	}

	return e, true, nil
}

// GetByID получает мероприятие. Внутри пишущей транзакции строка блокируется:
// все решения по вместимости RSVP одного мероприятия выполняются последовательно
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("events").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	e, err := scanEvent(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan event: %w", ErrScanRow, err)
	}

	return e, nil
}

// List получает мероприятия по фильтру, по возрастанию времени начала
func (r *Repository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("events").
		OrderBy("start_time ASC", "id ASC")

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.SeriesID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"series_id": *filter.SeriesID})
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

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan event: %w", ErrScanRow, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return events, nil
}

// ListOriginalStarts возвращает исходные моменты начала всех экземпляров серии
func (r *Repository) ListOriginalStarts(ctx context.Context, seriesID int64) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("original_start").
		From("events").
		Where(squirrel.Eq{"series_id": seriesID}).
		OrderBy("original_start ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOriginalStarts - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOriginalStarts - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	starts := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%w: ListOriginalStarts - scan: %w", ErrScanRow, err)
		}
		starts = append(starts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOriginalStarts - rows error: %w", ErrScanRow, err)
	}

	return starts, nil
}

// Update сохраняет редактируемые поля мероприятия
func (r *Repository) Update(ctx context.Context, e *domain.Event) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("events").
		Set("title", e.Title).
		Set("description", e.Description).
		Set("location", e.Location).
		Set("start_time", e.StartTime).
		Set("end_time", e.EndTime).
		Set("capacity", e.Capacity).
		Set("is_exception", e.IsException).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// Delete удаляет мероприятие, RSVP удаляются каскадно
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	n, err := r.execCount(ctx, executor, "Delete", query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DeleteFutureFreeBySeries удаляет будущие неизменённые экземпляры серии без RSVP
func (r *Repository) DeleteFutureFreeBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("events").
		Where(squirrel.Eq{"series_id": seriesID, "is_exception": false}).
		Where(squirrel.Gt{"start_time": after}).
		Where("NOT EXISTS (SELECT 1 FROM rsvps WHERE rsvps.event_id = events.id)").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteFutureFreeBySeries - build delete query: %w", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DeleteFutureFreeBySeries", query, args)
}

// DetachFutureBySeries помечает исключениями будущие экземпляры серии, оставшиеся после DeleteFutureFreeBySeries
func (r *Repository) DetachFutureBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("events").
		Set("is_exception", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"series_id": seriesID, "is_exception": false}).
		Where(squirrel.Gt{"start_time": after}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DetachFutureBySeries - build update query: %w", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DetachFutureBySeries", query, args)
}

// DeleteBySeries удаляет все экземпляры серии
func (r *Repository) DeleteBySeries(ctx context.Context, seriesID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("events").
		Where(squirrel.Eq{"series_id": seriesID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySeries - build delete query: %w", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DeleteBySeries", query, args)
}

func (r *Repository) execCount(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) (int, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s - execute: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	return int(rowsAffected), nil
}

func insertBuilder(e *domain.Event) squirrel.InsertBuilder {
	return psqlbuilder.Insert("events").
		Columns(
			"title",
			"description",
			"location",
			"start_time",
			"end_time",
			"capacity",
			"series_id",
			"original_start",
			"is_exception",
			"created_by",
		).
		Values(
			e.Title,
			e.Description,
			e.Location,
			e.StartTime,
			e.EndTime,
			e.Capacity,
			e.SeriesID,
			e.OriginalStart,
			e.IsException,
			e.CreatedBy,
		)
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartTime,
		&e.EndTime,
		&e.Capacity,
		&e.SeriesID,
		&e.OriginalStart,
		&e.IsException,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
