package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrLockNotInTransaction возвращается при попытке взять advisory lock вне транзакции
	ErrLockNotInTransaction = errors.New("appointment.repository: resource-day lock requires an active transaction")

	// ErrStatusConflict возвращается, когда UPDATE со статусным предикатом
	// не затронул ни одной строки: статус записи изменился конкурентно
	ErrStatusConflict = errors.New("appointment.repository: appointment status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
