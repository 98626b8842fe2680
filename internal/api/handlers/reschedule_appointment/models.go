package reschedule_appointment

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	rescheduleAppointment "github.com/avenirbook/scheduling-engine/internal/usecase/reschedule_appointment"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	NewDate      string `json:"newDate"`      // "2026-03-16"
	NewStartTime string `json:"newStartTime"` // "14:00"
	Reason       string `json:"reason,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"businessId"`
	ServiceID       int64   `json:"serviceId"`
	ResourceType    string  `json:"resourceType"`
	ResourceID      *int64  `json:"resourceId,omitempty"`
	CustomerRef     string  `json:"customerRef"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ServiceName     string  `json:"serviceName"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(actorID, appointmentID int64) (*rescheduleAppointment.Request, error) {
	newDate, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	newStartTime, err := types.NewTimeStringFromString(r.NewStartTime)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		ActorID:       actorID,
		AppointmentID: appointmentID,
		NewDate:       newDate,
		NewStartTime:  newStartTime,
		Reason:        r.Reason,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *AppointmentResponse {
	appt := resp.Appointment

	out := &AppointmentResponse{
		ID:              appt.ID,
		BusinessID:      appt.BusinessID,
		ServiceID:       appt.ServiceID,
		ResourceType:    string(appt.ResourceType),
		ResourceID:      appt.ResourceID,
		CustomerRef:     appt.CustomerRef,
		Date:            appt.Date.Format(domain.DateFormat),
		StartTime:       appt.StartTime.String(),
		DurationMinutes: appt.DurationMinutes,
		Status:          string(appt.Status),
		ServiceName:     appt.ServiceName,
		Notes:           appt.Notes,
		CreatedAt:       appt.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       appt.UpdatedAt.Format(time.RFC3339),
	}

	if end, err := appt.EndTime(); err == nil {
		out.EndTime = end.String()
	}

	return out
}
