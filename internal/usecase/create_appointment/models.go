package create_appointment

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// Request запрос на создание записи
type Request struct {
	ActorID    int64
	BusinessID int64
	ServiceID  int64

	// Ровно один из StaffID/ServicePointID, либо оба nil —
	// тогда запись идет на весь бизнес как один ресурс
	StaffID        *int64
	ServicePointID *int64

	Date      time.Time
	StartTime types.TimeString

	// CustomerRef внешний идентификатор клиента (владельца записи)
	CustomerRef string

	Notes *string
}

// Response ответ с созданной записью
type Response struct {
	Appointment *domain.Appointment
}
