// Package conflicts детектор конфликтов вместимости.
//
// Детектор — чистая функция от своих входов и текущего закоммиченного
// состояния: сам по себе он НЕ защищает от гонок. Гарантию race-freedom
// дают usecases бронирования, вызывающие детектор внутри сериализуемой
// транзакции с advisory lock на (business, resource, date).
package conflicts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// CheckRequest параметры проверки конфликта
type CheckRequest struct {
	BusinessID      int64
	Resource        domain.Resource
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int

	// ExcludeAppointmentID исключает запись из проверки — при переносе
	// запись не должна конфликтовать со своим же прежним слотом
	ExcludeAppointmentID *int64
}

// Detector детектор конфликтов
type Detector struct {
	apptRepo AppointmentRepository
	log      Logger
}

// NewDetector создает детектор конфликтов
func NewDetector(apptRepo AppointmentRepository, log Logger) *Detector {
	return &Detector{apptRepo: apptRepo, log: log}
}

// HasConflict возвращает true, если коммит кандидата превысил бы вместимость
// ресурса хотя бы в один момент времени.
//
// Если вызов происходит внутри транзакции, чтение записей дня блокирует
// строки (FOR UPDATE) — ответ детектора остается валидным до конца транзакции.
func (d *Detector) HasConflict(ctx context.Context, req CheckRequest) (bool, error) {
	candidate, err := domain.NewInterval(req.StartTime, req.DurationMinutes)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	if !req.Resource.IsBookable() {
		// Неактивный ресурс недоступен всегда
		return true, nil
	}

	appointments, err := d.apptRepo.GetOccupyingByResourceDay(
		ctx,
		req.BusinessID,
		req.Resource.Type,
		req.Resource.StorageID(),
		req.Date,
		req.ExcludeAppointmentID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: failed to load appointments: %v", ErrInternal, err)
	}

	occupied := domain.OccupiedIntervals(appointments)
	capacity := req.Resource.Capacity()

	conflict := domain.WouldExceedCapacity(candidate, occupied, capacity)
	if conflict {
		d.log.Info("HasConflict: business=%d resource=%s:%d date=%s slot=%s+%dmin: capacity %d exceeded (%d occupying)",
			req.BusinessID, req.Resource.Type, req.Resource.KeyID(),
			req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes,
			capacity, len(occupied))
	}

	return conflict, nil
}

// SpotsLeft возвращает число свободных мест ресурса в интервале кандидата
// (используется калькулятором доступности для построения сетки)
func (d *Detector) SpotsLeft(ctx context.Context, req CheckRequest) (int, error) {
	candidate, err := domain.NewInterval(req.StartTime, req.DurationMinutes)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	if !req.Resource.IsBookable() {
		return 0, nil
	}

	appointments, err := d.apptRepo.GetOccupyingByResourceDay(
		ctx,
		req.BusinessID,
		req.Resource.Type,
		req.Resource.StorageID(),
		req.Date,
		req.ExcludeAppointmentID,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to load appointments: %v", ErrInternal, err)
	}

	occupied := domain.OccupiedIntervals(appointments)
	spots := req.Resource.Capacity() - domain.MaxOccupancyWithin(candidate, occupied)
	if spots < 0 {
		spots = 0
	}

	return spots, nil
}

// IsInvalidSlot возвращает true для ошибок некорректного кандидата
func IsInvalidSlot(err error) bool {
	return errors.Is(err, ErrInvalidSlot)
}
