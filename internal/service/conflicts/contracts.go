package conflicts

import (
	"context"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetOccupyingByResourceDay(
		ctx context.Context,
		businessID int64,
		resourceType domain.ResourceType,
		resourceID *int64,
		date time.Time,
		excludeID *int64,
	) ([]*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
