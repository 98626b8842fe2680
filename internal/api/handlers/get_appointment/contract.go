package get_appointment

import (
	"context"

	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

type AppointmentService interface {
	GetByID(ctx context.Context, id int64, actorID int64) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
