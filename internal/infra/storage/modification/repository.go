// Package modification репозиторий журнала изменений записей.
// Журнал append-only: есть только вставка и чтение по записи,
// обновление и удаление строк не предусмотрены ни на каком уровне.
package modification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/pkg/dbmetrics"
	"github.com/avenirbook/scheduling-engine/pkg/psqlbuilder"
)

// Repository репозиторий журнала изменений
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет одну строку журнала.
// Вызывается в той же транзакции, что и мутация, которую строка описывает:
// либо коммитятся обе, либо ни одной.
func (r *Repository) Create(ctx context.Context, record *domain.ModificationRecord) (*domain.ModificationRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("modification_records").
		Columns(
			"appointment_id",
			"modification_type",
			"old_date",
			"old_start_time",
			"old_duration_minutes",
			"new_date",
			"new_start_time",
			"new_duration_minutes",
			"old_status",
			"new_status",
			"reason",
			"actor_id",
		).
		Values(
			record.AppointmentID,
			record.Type,
			record.OldDate,
			record.OldStartTime,
			record.OldDurationMinutes,
			record.NewDate,
			record.NewStartTime,
			record.NewDurationMinutes,
			record.OldStatus,
			record.NewStatus,
			record.Reason,
			record.ActorID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&record.ID,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	record.CreatedAt = createdAt.Time

	return record, nil
}

// GetByAppointmentID возвращает историю изменений записи, старые первыми
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) ([]*domain.ModificationRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"appointment_id",
		"modification_type",
		"old_date",
		"old_start_time",
		"old_duration_minutes",
		"new_date",
		"new_start_time",
		"new_duration_minutes",
		"old_status",
		"new_status",
		"reason",
		"actor_id",
		"created_at",
	).
		From("modification_records").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at ASC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.ModificationRecord, 0)
	for rows.Next() {
		var record domain.ModificationRecord
		var createdAt sql.NullTime

		err := rows.Scan(
			&record.ID,
			&record.AppointmentID,
			&record.Type,
			&record.OldDate,
			&record.OldStartTime,
			&record.OldDurationMinutes,
			&record.NewDate,
			&record.NewStartTime,
			&record.NewDurationMinutes,
			&record.OldStatus,
			&record.NewStatus,
			&record.Reason,
			&record.ActorID,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByAppointmentID - scan row: %v", ErrScanRow, err)
		}

		record.CreatedAt = createdAt.Time
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
