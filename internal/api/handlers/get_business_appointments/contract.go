package get_business_appointments

import (
	"context"

	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

type AppointmentService interface {
	GetBusinessAppointments(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
