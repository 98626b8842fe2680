package scheduleconfig

import (
	"context"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
)

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetByBusinessAndResource(ctx context.Context, businessID int64, resourceID *int64) (*domain.ScheduleConfig, error)
	GetConfigWithHierarchy(ctx context.Context, businessID int64, resourceID *int64) (*domain.ScheduleConfig, error)
	GetAllByBusiness(ctx context.Context, businessID int64) ([]*domain.ScheduleConfig, error)
	Upsert(ctx context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
}

// DirectoryClient интерфейс клиента DirectoryService
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directory.Business, error)
	GetStaffMember(ctx context.Context, businessID, staffID int64) (*directory.StaffMember, error)
	GetServicePoint(ctx context.Context, businessID, servicePointID int64) (*directory.ServicePoint, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
