package scheduleconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/pkg/dbmetrics"
	"github.com/avenirbook/scheduling-engine/pkg/psqlbuilder"
)

var configColumns = []string{
	"id",
	"business_id",
	"resource_id",
	"slot_granularity_minutes",
	"advance_booking_days",
	"min_booking_notice_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий конфигурации расписания
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую конфигурацию расписания
func (r *Repository) Create(ctx context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_configs").
		Columns(
			"business_id",
			"resource_id",
			"slot_granularity_minutes",
			"advance_booking_days",
			"min_booking_notice_minutes",
		).
		Values(
			config.BusinessID,
			config.ResourceID,
			config.SlotGranularityMinutes,
			config.AdvanceBookingDays,
			config.MinBookingNoticeMinutes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// GetByBusinessAndResource получает конфигурацию для бизнеса и ресурса.
// resourceID == nil означает бизнес-wide строку.
func (r *Repository) GetByBusinessAndResource(ctx context.Context, businessID int64, resourceID *int64) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From("schedule_configs").
		Where(squirrel.Eq{"business_id": businessID})

	if resourceID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *resourceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessAndResource - build select query: %v", ErrBuildQuery, err)
	}

	config, err := r.scanConfigRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessAndResource - scan config: %v", ErrScanRow, err)
	}

	return config, nil
}

// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Конфигурация конкретного ресурса (business_id, resource_id)
// 2. Конфигурация бизнеса целиком (business_id, NULL)
// Если не найдено ни одной строки — возвращает ErrConfigNotFound,
// выбор дефолтов остается за вызывающим слоем.
func (r *Repository) GetConfigWithHierarchy(ctx context.Context, businessID int64, resourceID *int64) (*domain.ScheduleConfig, error) {
	if resourceID != nil {
		config, err := r.GetByBusinessAndResource(ctx, businessID, resourceID)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
	}

	return r.GetByBusinessAndResource(ctx, businessID, nil)
}

// GetAllByBusiness возвращает все строки конфигурации бизнеса
// (бизнес-wide строка первой)
func (r *Repository) GetAllByBusiness(ctx context.Context, businessID int64) ([]*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("schedule_configs").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("resource_id ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByBusiness - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	configs := make([]*domain.ScheduleConfig, 0)
	for rows.Next() {
		config, err := r.scanConfigRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByBusiness - scan row: %v", ErrScanRow, err)
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByBusiness - rows error: %v", ErrScanRow, err)
	}

	return configs, nil
}

// Upsert создает или обновляет конфигурацию для (business_id, resource_id)
func (r *Repository) Upsert(ctx context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_configs").
		Columns(
			"business_id",
			"resource_id",
			"slot_granularity_minutes",
			"advance_booking_days",
			"min_booking_notice_minutes",
		).
		Values(
			config.BusinessID,
			config.ResourceID,
			config.SlotGranularityMinutes,
			config.AdvanceBookingDays,
			config.MinBookingNoticeMinutes,
		).
		Suffix(`ON CONFLICT (business_id, COALESCE(resource_id, 0)) DO UPDATE SET
			slot_granularity_minutes = EXCLUDED.slot_granularity_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanConfigRow(row rowScanner) (*domain.ScheduleConfig, error) {
	var config domain.ScheduleConfig
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&config.ID,
		&config.BusinessID,
		&config.ResourceID,
		&config.SlotGranularityMinutes,
		&config.AdvanceBookingDays,
		&config.MinBookingNoticeMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}
