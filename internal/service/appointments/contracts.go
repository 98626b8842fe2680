package appointments

import (
	"context"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByCustomerRef(ctx context.Context, customerRef string, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessAppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
}

// ModificationRepository интерфейс журнала изменений (append-only)
type ModificationRepository interface {
	Create(ctx context.Context, record *domain.ModificationRecord) (*domain.ModificationRecord, error)
	GetByAppointmentID(ctx context.Context, appointmentID int64) ([]*domain.ModificationRecord, error)
}

// DirectoryClient интерфейс клиента DirectoryService
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directory.Business, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
