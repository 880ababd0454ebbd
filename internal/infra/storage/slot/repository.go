package slot

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
	"start_time",
	"end_time",
	"category",
	"capacity",
	"occupancy",
	"instructor",
	"location",
	"series_id",
	"original_start",
	"is_exception",
	"created_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает разовый слот (или экземпляр серии без проверки уникальности)
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if slot.OriginalStart.IsZero() {
		slot.OriginalStart = slot.StartTime
	}

	query, args, err := insertBuilder(slot).
		Suffix("RETURNING id, occupancy, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slot.Occupancy, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// CreateOccurrence создает экземпляр серии, если слота с тем же (series_id, original_start) ещё нет.
// Возвращает created=false, если экземпляр уже существовал
func (r *Repository) CreateOccurrence(ctx context.Context, slot *domain.Slot) (*domain.Slot, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := insertBuilder(slot).
		Suffix("ON CONFLICT (series_id, original_start) WHERE series_id IS NOT NULL DO NOTHING RETURNING id, occupancy, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: CreateOccurrence - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slot.Occupancy, &slot.CreatedAt, &slot.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: CreateOccurrence - execute insert: %w", ErrExecQuery, err)
	}

	return slot, true, nil
}

// GetByID получает слот по ID
// Внутри пишущей транзакции строка блокируется (FOR UPDATE): слот служит семафором для своих мест
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("slots").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// List получает слоты по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("slots").
		OrderBy("start_time ASC", "id ASC")

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.Category != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"category": *filter.Category})
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

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan slot: %w", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// ListOriginalStarts возвращает исходные моменты начала всех экземпляров серии
func (r *Repository) ListOriginalStarts(ctx context.Context, seriesID int64) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("original_start").
		From("slots").
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

// Update обновляет редактируемые поля слота (occupancy меняется только Increment/Decrement)
func (r *Repository) Update(ctx context.Context, slot *domain.Slot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("title", slot.Title).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Set("category", slot.Category).
		Set("capacity", slot.Capacity).
		Set("instructor", slot.Instructor).
		Set("location", slot.Location).
		Set("is_exception", slot.IsException).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Update", query, args, domain.ErrSlotNotFound)
}

// IncrementOccupancy занимает одно место. Условие occupancy < capacity проверяется в том же UPDATE,
// поэтому два конкурентных вызова не могут переполнить слот
func (r *Repository) IncrementOccupancy(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("occupancy", squirrel.Expr("occupancy + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("occupancy < capacity").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: IncrementOccupancy - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "IncrementOccupancy", query, args, domain.ErrSlotFull)
}

// DecrementOccupancy освобождает одно место. Вызывается после блокировки слота,
// поэтому отсутствие затронутых строк означает нулевую занятость
func (r *Repository) DecrementOccupancy(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("occupancy", squirrel.Expr("occupancy - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("occupancy > 0").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DecrementOccupancy - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "DecrementOccupancy", query, args, domain.ErrOccupancyUnderflow)
}

// Delete удаляет слот, бронирования удаляются каскадно
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Delete", query, args, domain.ErrSlotNotFound)
}

// DeleteFutureFreeBySeries удаляет будущие неизменённые экземпляры серии без занятых мест
func (r *Repository) DeleteFutureFreeBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"series_id": seriesID, "is_exception": false, "occupancy": 0}).
		Where(squirrel.Gt{"start_time": after}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteFutureFreeBySeries - build delete query: %w", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DeleteFutureFreeBySeries", query, args)
}

// DetachFutureBySeries помечает исключениями будущие экземпляры серии, оставшиеся после DeleteFutureFreeBySeries
func (r *Repository) DetachFutureBySeries(ctx context.Context, seriesID int64, after time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
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

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"series_id": seriesID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySeries - build delete query: %w", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DeleteBySeries", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}, notAffected error) error {
	n, err := r.execCount(ctx, executor, op, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return notAffected
	}
	return nil
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

func insertBuilder(slot *domain.Slot) squirrel.InsertBuilder {
	return psqlbuilder.Insert("slots").
		Columns(
			"title",
			"start_time",
			"end_time",
			"category",
			"capacity",
			"instructor",
			"location",
			"series_id",
			"original_start",
			"is_exception",
			"created_by",
		).
		Values(
			slot.Title,
			slot.StartTime,
			slot.EndTime,
			slot.Category,
			slot.Capacity,
			slot.Instructor,
			slot.Location,
			slot.SeriesID,
			slot.OriginalStart,
			slot.IsException,
			slot.CreatedBy,
		)
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	err := row.Scan(
		&slot.ID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Category,
		&slot.Capacity,
		&slot.Occupancy,
		&slot.Instructor,
		&slot.Location,
		&slot.SeriesID,
		&slot.OriginalStart,
		&slot.IsException,
		&slot.CreatedBy,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
