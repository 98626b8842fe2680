package directory

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("directory client: business not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("directory client: service not found")

	// ErrResourceNotFound возвращается, когда сотрудник или точка обслуживания не найдены
	ErrResourceNotFound = errors.New("directory client: resource not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("directory client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("directory client: invalid response")
)
