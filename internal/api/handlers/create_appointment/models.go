package create_appointment

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	createAppointment "github.com/avenirbook/scheduling-engine/internal/usecase/create_appointment"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BusinessID     int64   `json:"businessId"`
	ServiceID      int64   `json:"serviceId"`
	StaffID        *int64  `json:"staffId,omitempty"`
	ServicePointID *int64  `json:"servicePointId,omitempty"`
	Date           string  `json:"date"`      // "2026-03-15"
	StartTime      string  `json:"startTime"` // "10:00"
	Notes          *string `json:"notes,omitempty"`
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

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Актор становится владельцем записи (customerRef).
func (r *CreateAppointmentRequest) ToUseCaseRequest(actorID int64, customerRef string) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		ActorID:        actorID,
		BusinessID:     r.BusinessID,
		ServiceID:      r.ServiceID,
		StaffID:        r.StaffID,
		ServicePointID: r.ServicePointID,
		Date:           date,
		StartTime:      startTime,
		CustomerRef:    customerRef,
		Notes:          r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
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
