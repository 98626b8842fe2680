package get_appointment_history

import (
	"context"

	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

type AppointmentService interface {
	GetHistory(ctx context.Context, appointmentID int64, actorID int64) (*models.ModificationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
