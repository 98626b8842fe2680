package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/pkg/dbmetrics"
	"github.com/avenirbook/scheduling-engine/pkg/psqlbuilder"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

var appointmentColumns = []string{
	"id",
	"business_id",
	"service_id",
	"resource_type",
	"resource_id",
	"appointment_date",
	"start_time",
	"duration_minutes",
	"status",
	"customer_ref",
	"service_name",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на обслуживание
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись.
// Если в контексте передана активная транзакция (через context.Value),
// использует её — так работает locked check-and-insert в usecase создания.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"business_id",
			"service_id",
			"resource_type",
			"resource_id",
			"appointment_date",
			"start_time",
			"duration_minutes",
			"status",
			"customer_ref",
			"service_name",
			"notes",
		).
		Values(
			appt.BusinessID,
			appt.ServiceID,
			appt.ResourceType,
			appt.ResourceID,
			appt.Date,
			appt.StartTime,
			appt.DurationMinutes,
			appt.Status,
			appt.CustomerRef,
			appt.ServiceName,
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := r.scanAppointmentRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// GetByCustomerRef получает список записей клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomerRef(ctx context.Context, customerRef string, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"customer_ref": customerRef}).
		OrderBy("appointment_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerRef - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerRef - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetByBusinessWithFilter получает записи бизнеса с гибкой фильтрацией
// Поддерживает фильтрацию по ресурсу, периоду, статусу и включению
// неактивных записей (отмененные, no-show)
func (r *Repository) GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	if filter.ResourceType != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_type": *filter.ResourceType})
	}
	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	// Для конкретной даты сортируем по времени начала, для периода - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC, start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetOccupyingByResourceDay получает записи, занимающие вместимость ресурса
// на указанную дату (pending и confirmed), отсортированные по времени начала.
// excludeID исключает запись из результата — используется при переносе,
// чтобы запись не конфликтовала со своим собственным прежним слотом.
//
// Внутри транзакции добавляет FOR UPDATE: строки дня блокируются до конца
// транзакции, это часть сериализации locked check-and-act.
func (r *Repository) GetOccupyingByResourceDay(
	ctx context.Context,
	businessID int64,
	resourceType domain.ResourceType,
	resourceID *int64,
	date time.Time,
	excludeID *int64,
) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	occupyingStatusStrings := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		occupyingStatusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"resource_type": resourceType}).
		Where(squirrel.Eq{"appointment_date": date}).
		Where(squirrel.Eq{"status": occupyingStatusStrings})

	if resourceID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *resourceID})
	}

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	selectBuilder = selectBuilder.OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupyingByResourceDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupyingByResourceDay - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// LockResourceDay берет эксклюзивный advisory lock на ключ
// (business_id, resource_id, date) до конца текущей транзакции.
// FOR UPDATE блокирует только существующие строки; advisory lock закрывает
// гонку вставки для слотов, по которым строк еще нет.
// Вызывать можно только внутри транзакции — lock снимается на commit/rollback.
func (r *Repository) LockResourceDay(ctx context.Context, businessID, resourceID int64, date time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrLockNotInTransaction
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	key := fmt.Sprintf("%d:%d:%s", businessID, resourceID, date.Format(domain.DateFormat))
	_, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key)
	if err != nil {
		return fmt.Errorf("%w: LockResourceDay - acquire advisory lock: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdateSchedule обновляет дату и время записи (перенос).
// Статус не меняется: перенесенная запись остается pending/confirmed.
func (r *Repository) UpdateSchedule(ctx context.Context, id int64, newDate time.Time, newStart types.TimeString) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("appointment_date", newDate).
		Set("start_time", newStart).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateSchedule - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateSchedule - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateSchedule - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// UpdateStatus переводит запись из статуса from в статус to.
// Предикат по текущему статусу прямо в UPDATE закрывает гонку между
// проверкой перехода и самим переходом: конкурентное изменение статуса
// после загрузки записи дает ноль обновленных строк и ErrStatusConflict.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// Cancel отменяет запись с указанием причины.
// Физического удаления нет: отмена — переход статуса, история сохраняется.
// UPDATE срабатывает только для активных статусов; запись, отмененная или
// завершенная конкурентным запросом между загрузкой и отменой, дает
// ErrStatusConflict вместо второй отмены и второй строки журнала.
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": []domain.AppointmentStatus{domain.StatusPending, domain.StatusConfirmed},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanAppointmentRow(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.ServiceID,
		&appt.ResourceType,
		&appt.ResourceID,
		&appt.Date,
		&appt.StartTime,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.CustomerRef,
		&appt.ServiceName,
		&appt.Notes,
		&appt.CancellationReason,
		&appt.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := r.scanAppointmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
