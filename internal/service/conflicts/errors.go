package conflicts

import "errors"

var (
	// ErrInvalidSlot возвращается при некорректном кандидате
	// (нулевая длительность, выход за границу суток)
	ErrInvalidSlot = errors.New("conflicts: invalid candidate slot")

	// ErrInternal возвращается при внутренних ошибках детектора
	ErrInternal = errors.New("conflicts: internal error")
)
