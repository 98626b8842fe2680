package create_appointment

import "errors"

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("invalid input")
	// ErrBusinessNotFound бизнес не найден или деактивирован
	ErrBusinessNotFound = errors.New("business not found")
	// ErrServiceNotFound услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("service not found")
	// ErrResourceNotFound ресурс не найден или неактивен
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidDate дата в прошлом
	ErrInvalidDate = errors.New("date is in the past")
	// ErrDateTooFarInFuture дата за горизонтом бронирования
	ErrDateTooFarInFuture = errors.New("date is too far in the future")
	// ErrSlotOutsideWorkingHours слот вне рабочих часов бизнеса
	ErrSlotOutsideWorkingHours = errors.New("slot is outside working hours")
	// ErrSlotNotAligned начало слота не попадает в сетку гранулярности
	ErrSlotNotAligned = errors.New("slot start is not aligned to the slot grid")
	// ErrBookingNoticeTooShort слот начинается раньше минимального уведомления
	ErrBookingNoticeTooShort = errors.New("slot starts sooner than the minimum booking notice")
	// ErrSlotNotAvailable слот занят: вместимость ресурса исчерпана
	ErrSlotNotAvailable = errors.New("slot is not available")
	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)
