package rsvp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"event_id",
	"member_id",
	"status",
	"guest_count",
	"notes",
	"waitlisted_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий ответов участников на мероприятия
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория RSVP
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый ответ
func (r *Repository) Create(ctx context.Context, rsvp *domain.RSVP) (*domain.RSVP, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("rsvps").
		Columns("event_id", "member_id", "status", "guest_count", "notes", "waitlisted_at").
		Values(rsvp.EventID, rsvp.MemberID, rsvp.Status, rsvp.GuestCount, rsvp.Notes, rsvp.WaitlistedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rsvp.ID, &rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return rsvp, nil
}

// Get получает ответ участника на мероприятие
func (r *Repository) Get(ctx context.Context, eventID, memberID int64) (*domain.RSVP, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("rsvps").
		Where(squirrel.Eq{"event_id": eventID, "member_id": memberID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %w", ErrBuildQuery, err)
	}

	rsvp, err := scanRSVP(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRSVPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan rsvp: %w", ErrScanRow, err)
	}

	return rsvp, nil
}

// ListByEvent возвращает все ответы на мероприятие в порядке создания
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.RSVP, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("rsvps").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEvent - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEvent - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByEvent - scan rsvp: %w", ErrScanRow, err)
		}
		result = append(result, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByEvent - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// Update сохраняет статус, количество гостей, заметки и отметку листа ожидания
func (r *Repository) Update(ctx context.Context, rsvp *domain.RSVP) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("rsvps").
		Set("status", rsvp.Status).
		Set("guest_count", rsvp.GuestCount).
		Set("notes", rsvp.Notes).
		Set("waitlisted_at", rsvp.WaitlistedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": rsvp.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&rsvp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRSVPNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// Delete удаляет ответ участника
func (r *Repository) Delete(ctx context.Context, eventID, memberID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("rsvps").
		Where(squirrel.Eq{"event_id": eventID, "member_id": memberID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return domain.ErrRSVPNotFound
	}

	return nil
}

func scanRSVP(row rowScanner) (*domain.RSVP, error) {
	var rsvp domain.RSVP
	err := row.Scan(
		&rsvp.ID,
		&rsvp.EventID,
		&rsvp.MemberID,
		&rsvp.Status,
		&rsvp.GuestCount,
		&rsvp.Notes,
		&rsvp.WaitlistedAt,
		&rsvp.CreatedAt,
		&rsvp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}
