package events

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

// Kind тип доменного события
type Kind string

const (
	KindCreated     Kind = "appointment.created"
	KindRescheduled Kind = "appointment.rescheduled"
	KindCancelled   Kind = "appointment.cancelled"
)

// AppointmentEvent доменное событие для notification-коллаборатора.
// Доставка (email/SMS) — полностью его ответственность, best effort.
type AppointmentEvent struct {
	EventID         string  `json:"event_id"`
	Kind            Kind    `json:"kind"`
	AppointmentID   int64   `json:"appointment_id"`
	BusinessID      int64   `json:"business_id"`
	ServiceID       int64   `json:"service_id"`
	ServiceName     string  `json:"service_name"`
	ResourceType    string  `json:"resource_type"`
	ResourceID      *int64  `json:"resource_id,omitempty"`
	CustomerRef     string  `json:"customer_ref"`
	Date            string  `json:"date"`       // YYYY-MM-DD
	StartTime       string  `json:"start_time"` // HH:MM
	DurationMinutes int     `json:"duration_minutes"`
	Reason          *string `json:"reason,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// FromAppointment собирает событие из записи
func FromAppointment(kind Kind, appt *domain.Appointment, reason *string, occurredAt time.Time) AppointmentEvent {
	return AppointmentEvent{
		Kind:            kind,
		AppointmentID:   appt.ID,
		BusinessID:      appt.BusinessID,
		ServiceID:       appt.ServiceID,
		ServiceName:     appt.ServiceName,
		ResourceType:    string(appt.ResourceType),
		ResourceID:      appt.ResourceID,
		CustomerRef:     appt.CustomerRef,
		Date:            appt.Date.Format(domain.DateFormat),
		StartTime:       appt.StartTime.String(),
		DurationMinutes: appt.DurationMinutes,
		Reason:          reason,
		OccurredAt:      occurredAt,
	}
}
