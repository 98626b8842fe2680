package reschedule_appointment

import "errors"

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("invalid input")
	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrForbidden актор не владелец записи и не управляет бизнесом
	ErrForbidden = errors.New("forbidden")
	// ErrCannotReschedule запись в терминальном статусе
	ErrCannotReschedule = errors.New("appointment cannot be rescheduled")
	// ErrInvalidDate новая дата в прошлом
	ErrInvalidDate = errors.New("date is in the past")
	// ErrDateTooFarInFuture новая дата за горизонтом бронирования
	ErrDateTooFarInFuture = errors.New("date is too far in the future")
	// ErrSlotOutsideWorkingHours новый слот вне рабочих часов
	ErrSlotOutsideWorkingHours = errors.New("slot is outside working hours")
	// ErrSlotNotAligned начало нового слота не попадает в сетку гранулярности
	ErrSlotNotAligned = errors.New("slot start is not aligned to the slot grid")
	// ErrBookingNoticeTooShort новый слот начинается раньше минимального уведомления
	ErrBookingNoticeTooShort = errors.New("slot starts sooner than the minimum booking notice")
	// ErrSlotNotAvailable новый слот занят
	ErrSlotNotAvailable = errors.New("slot is not available")
	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)
