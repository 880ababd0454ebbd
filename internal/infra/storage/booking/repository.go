package booking

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

// memberLockNamespace старшие биты ключа advisory lock, отделяют блокировки участников от прочих
const memberLockNamespace int64 = 0x52530000 << 32

var columns = []string{
	"b.id",
	"b.slot_id",
	"b.member_id",
	"b.booked_by",
	"b.state",
	"b.attendance_state",
	"b.attendance_notes",
	"b.booked_at",
	"b.cancelled_at",
	"b.cancellation_reason",
	"b.reschedule_count",
	"b.rescheduled_from",
	"b.rescheduled_to",
	"b.updated_at",
}

var slotColumns = []string{
	"s.id",
	"s.title",
	"s.start_time",
	"s.end_time",
	"s.category",
	"s.capacity",
	"s.occupancy",
	"s.instructor",
	"s.location",
	"s.series_id",
	"s.original_start",
	"s.is_exception",
	"s.created_by",
	"s.created_at",
	"s.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Вызывается внутри транзакции Booking Engine вместе с IncrementOccupancy слота
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"slot_id",
			"member_id",
			"booked_by",
			"state",
			"attendance_state",
			"booked_at",
		).
		Values(
			booking.SlotID,
			booking.MemberID,
			booking.BookedBy,
			booking.State,
			booking.AttendanceState,
			booking.BookedAt,
		).
		Suffix("RETURNING id, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри пишущей транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("bookings b").
		Where(squirrel.Eq{"b.id": id})

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// Update сохраняет изменяемые поля бронирования
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("slot_id", booking.SlotID).
		Set("state", booking.State).
		Set("attendance_state", booking.AttendanceState).
		Set("attendance_notes", booking.AttendanceNotes).
		Set("cancelled_at", booking.CancelledAt).
		Set("cancellation_reason", booking.CancellationReason).
		Set("reschedule_count", booking.RescheduleCount).
		Set("rescheduled_from", booking.RescheduledFrom).
		Set("rescheduled_to", booking.RescheduledTo).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// LockMember берёт транзакционную advisory-блокировку участника.
// Две транзакции бронирования одного участника на разные слоты выполняются по очереди,
// поэтому проверка пересечений видит результат предыдущей
func (r *Repository) LockMember(ctx context.Context, memberID int64) error {
	if !dbmetrics.CanLockRows(ctx) {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", memberLockNamespace|memberID); err != nil {
		return fmt.Errorf("%w: member=%d: %w", ErrLock, memberID, err)
	}
	return nil
}

// FindOverlapping возвращает подтверждённые бронирования участника, чьи слоты пересекаются с [start, end).
// excludeBookingID исключает переносимое бронирование (0 - без исключения)
func (r *Repository) FindOverlapping(ctx context.Context, memberID int64, start, end time.Time, excludeBookingID int64) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From("bookings b").
		Join("slots s ON s.id = b.slot_id").
		Where(squirrel.Eq{"b.member_id": memberID, "b.state": domain.BookingConfirmed}).
		Where(squirrel.Lt{"s.start_time": end}).
		Where(squirrel.Gt{"s.end_time": start})

	if excludeBookingID > 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"b.id": excludeBookingID})
	}

	return r.list(ctx, "FindOverlapping", selectBuilder)
}

// ListConfirmedBySlot возвращает подтверждённые бронирования слота по возрастанию id
func (r *Repository) ListConfirmedBySlot(ctx context.Context, slotID int64) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From("bookings b").
		Where(squirrel.Eq{"b.slot_id": slotID, "b.state": domain.BookingConfirmed}).
		OrderBy("b.id ASC")

	return r.list(ctx, "ListConfirmedBySlot", selectBuilder)
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return bookings, nil
}

// ListUpcomingByMember возвращает подтверждённые бронирования участника со слотами,
// начинающимися позже after, по возрастанию времени начала
func (r *Repository) ListUpcomingByMember(ctx context.Context, memberID int64, after time.Time) ([]*domain.BookingWithSlot, error) {
	selectBuilder := psqlbuilder.Select(append(append([]string{}, columns...), slotColumns...)...).
		From("bookings b").
		Join("slots s ON s.id = b.slot_id").
		Where(squirrel.Eq{"b.member_id": memberID, "b.state": domain.BookingConfirmed}).
		Where(squirrel.Gt{"s.start_time": after}).
		OrderBy("s.start_time ASC", "b.id ASC")

	return r.listWithSlots(ctx, "ListUpcomingByMember", selectBuilder)
}

// ListConfirmedStartingBetween возвращает подтверждённые бронирования со слотами, начинающимися в (from, to]
// Используется планировщиком напоминаний
func (r *Repository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.BookingWithSlot, error) {
	selectBuilder := psqlbuilder.Select(append(append([]string{}, columns...), slotColumns...)...).
		From("bookings b").
		Join("slots s ON s.id = b.slot_id").
		Where(squirrel.Eq{"b.state": domain.BookingConfirmed}).
		Where(squirrel.Gt{"s.start_time": from}).
		Where(squirrel.LtOrEq{"s.start_time": to}).
		OrderBy("s.start_time ASC", "b.id ASC")

	return r.listWithSlots(ctx, "ListConfirmedStartingBetween", selectBuilder)
}

func (r *Repository) listWithSlots(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.BookingWithSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make([]*domain.BookingWithSlot, 0)
	for rows.Next() {
		var item domain.BookingWithSlot
		b, s := &item.Booking, &item.Slot
		err := rows.Scan(
			&b.ID, &b.SlotID, &b.MemberID, &b.BookedBy, &b.State,
			&b.AttendanceState, &b.AttendanceNotes, &b.BookedAt, &b.CancelledAt,
			&b.CancellationReason, &b.RescheduleCount, &b.RescheduledFrom, &b.RescheduledTo, &b.UpdatedAt,
			&s.ID, &s.Title, &s.StartTime, &s.EndTime, &s.Category, &s.Capacity, &s.Occupancy,
			&s.Instructor, &s.Location, &s.SeriesID, &s.OriginalStart, &s.IsException,
			&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return result, nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.SlotID,
		&b.MemberID,
		&b.BookedBy,
		&b.State,
		&b.AttendanceState,
		&b.AttendanceNotes,
		&b.BookedAt,
		&b.CancelledAt,
		&b.CancellationReason,
		&b.RescheduleCount,
		&b.RescheduledFrom,
		&b.RescheduledTo,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
