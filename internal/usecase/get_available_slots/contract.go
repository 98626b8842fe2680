package get_available_slots

import (
	"context"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/cache/availability"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
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

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, businessID int64, resourceID *int64) (*domain.ScheduleConfig, error)
}

// DirectoryClient интерфейс клиента DirectoryService
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directory.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*directory.Service, error)
	GetStaffMember(ctx context.Context, businessID, staffID int64) (*directory.StaffMember, error)
	GetServicePoint(ctx context.Context, businessID, servicePointID int64) (*directory.ServicePoint, error)
	ListStaff(ctx context.Context, businessID int64) ([]directory.StaffMember, error)
	ListServicePoints(ctx context.Context, businessID int64) ([]directory.ServicePoint, error)
}

// SlotsCache advisory кэш сеток доступности (может быть nil-обёрткой)
type SlotsCache interface {
	Get(ctx context.Context, key availability.Key) ([]domain.TimeSlot, error)
	Set(ctx context.Context, key availability.Key, slots []domain.TimeSlot) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
