package get_available_slots

import (
	"fmt"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Селектор ресурса либо пустой, либо ровно один
	selectors := 0
	if req.StaffID != nil {
		selectors++
	}
	if req.ServicePointID != nil {
		selectors++
	}
	if req.AnyOfType != nil {
		selectors++
	}
	if selectors > 1 {
		return fmt.Errorf("%w: at most one resource selector is allowed", ErrInvalidInput)
	}

	if req.AnyOfType != nil &&
		*req.AnyOfType != domain.ResourceStaff && *req.AnyOfType != domain.ResourceServicePoint {
		return fmt.Errorf("%w: unknown resource type %q", ErrInvalidInput, *req.AnyOfType)
	}

	if req.DurationOverrideMinutes != nil {
		d := *req.DurationOverrideMinutes
		if d < domain.MinServiceDurationMinutes || d > domain.MaxServiceDurationMinutes {
			return fmt.Errorf("%w: duration override must be within [%d, %d] minutes",
				ErrInvalidInput, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
		}
	}

	return nil
}

// validateDate проверяет, что дата подходит для запроса слотов
func validateDate(requestDate time.Time, now time.Time, advanceBookingDays int) error {
	if isDateInPast(requestDate, now) {
		return ErrInvalidDate
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, advanceBookingDays)

	requestDateOnly := time.Date(requestDate.Year(), requestDate.Month(), requestDate.Day(), 0, 0, 0, 0, requestDate.Location())

	if requestDateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
