package domain

import (
	"time"

	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Appointment represents a committed booking of a resource for a time slot.
// DurationMinutes is a snapshot of the service duration at creation time:
// editing the service later must never move historical end times.
type Appointment struct {
	ID              int64
	BusinessID      int64
	ServiceID       int64
	ResourceType    ResourceType
	ResourceID      *int64 // nil = whole-business fallback resource
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus
	CustomerRef     string

	// Denormalized data for history
	ServiceName string
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the end of the appointment's half-open interval
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// Interval returns the appointment's occupied interval
func (a *Appointment) Interval() (Interval, error) {
	return NewInterval(a.StartTime, a.DurationMinutes)
}

// OccupiesCapacity returns true if the appointment counts toward resource
// occupancy. Cancelled and no-show appointments free their slot retroactively;
// completed appointments are in the past and no longer contend.
func (a *Appointment) OccupiesCapacity() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// IsTerminal returns true if no further transitions are allowed
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusCompleted || a.Status == StatusNoShow
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the appointment can be moved to a new slot
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// BusinessAppointmentsFilter фильтр для получения записей бизнеса
type BusinessAppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	ResourceType    *ResourceType      // Фильтр по типу ресурса (опционально)
	ResourceID      *int64             // Фильтр по ресурсу (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отмененные и no-show записи
}
