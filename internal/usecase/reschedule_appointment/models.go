package reschedule_appointment

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// Request запрос на перенос записи
type Request struct {
	ActorID       int64
	AppointmentID int64

	NewDate      time.Time
	NewStartTime types.TimeString

	// Reason опциональная причина переноса, попадает в журнал изменений
	Reason string
}

// Response ответ с перенесенной записью
type Response struct {
	Appointment *domain.Appointment
}
