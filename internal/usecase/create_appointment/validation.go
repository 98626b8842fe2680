package create_appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StaffID != nil && req.ServicePointID != nil {
		return fmt.Errorf("%w: at most one resource selector is allowed", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.CustomerRef) == "" {
		return fmt.Errorf("%w: customerRef is required", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и не за горизонтом бронирования
func validateDate(requestDate time.Time, now time.Time, advanceBookingDays int) error {
	reqDay := dateOnly(requestDate)
	nowDay := dateOnly(now)

	if reqDay.Before(nowDay) {
		return ErrInvalidDate
	}

	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := nowDay.AddDate(0, 0, advanceBookingDays)
	if reqDay.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateSlot проверяет, что слот лежит внутри рабочих часов,
// выровнен по сетке гранулярности и не нарушает минимальное уведомление
func validateSlot(
	workingHours directory.DaySchedule,
	start types.TimeString,
	durationMinutes int,
	granularityMinutes int,
	requestDate time.Time,
	now time.Time,
	minBookingNoticeMinutes int,
) error {
	if !workingHours.IsOpen || workingHours.OpenTime == nil || workingHours.CloseTime == nil {
		return ErrSlotOutsideWorkingHours
	}

	openTime, err := types.NewTimeStringFromString(*workingHours.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: invalid open time: %v", ErrInternal, err)
	}

	closeTime, err := types.NewTimeStringFromString(*workingHours.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: invalid close time: %v", ErrInternal, err)
	}

	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSlotOutsideWorkingHours, err)
	}

	// Слот целиком внутри [open, close]
	if start.IsBefore(openTime) || closeTime.IsBefore(end) {
		return ErrSlotOutsideWorkingHours
	}

	// Начало слота попадает в сетку от времени открытия
	if granularityMinutes > 0 && (start.Minutes()-openTime.Minutes())%granularityMinutes != 0 {
		return ErrSlotNotAligned
	}

	// Минимальное уведомление действует только на сегодняшнюю дату
	if isSameDay(requestDate, now) {
		cutoffMinutes := now.Hour()*60 + now.Minute() + minBookingNoticeMinutes
		if start.Minutes() < cutoffMinutes {
			return ErrBookingNoticeTooShort
		}
	}

	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
