package reschedule_appointment

import (
	"context"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/conflicts"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateSchedule(ctx context.Context, id int64, newDate time.Time, newStart types.TimeString) error
	LockResourceDay(ctx context.Context, businessID, resourceID int64, date time.Time) error
}

// ModificationRepository интерфейс журнала изменений (append-only)
type ModificationRepository interface {
	Create(ctx context.Context, record *domain.ModificationRecord) (*domain.ModificationRecord, error)
}

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, businessID int64, resourceID *int64) (*domain.ScheduleConfig, error)
}

// ConflictDetector интерфейс детектора конфликтов вместимости
type ConflictDetector interface {
	HasConflict(ctx context.Context, req conflicts.CheckRequest) (bool, error)
}

// DirectoryClient интерфейс клиента DirectoryService
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directory.Business, error)
	GetStaffMember(ctx context.Context, businessID, staffID int64) (*directory.StaffMember, error)
	GetServicePoint(ctx context.Context, businessID, servicePointID int64) (*directory.ServicePoint, error)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotsCache интерфейс инвалидации кэша доступности
type SlotsCache interface {
	InvalidateDay(ctx context.Context, businessID int64, date time.Time) error
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	PublishAsync(event events.AppointmentEvent)
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
