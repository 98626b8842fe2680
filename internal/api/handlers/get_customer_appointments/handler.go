package get_customer_appointments

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

const (
	msgInvalidRef    = "некорректный идентификатор клиента"
	msgInvalidStatus = "недопустимый статус"
	msgAccessDenied  = "нет прав на просмотр истории этого клиента"
	msgUnauthorized  = "не указан идентификатор пользователя"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/customers/{ref}/appointments?status=confirmed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	customerRef := mux.Vars(r)["ref"]
	if customerRef == "" {
		handlers.RespondBadRequest(w, msgInvalidRef)
		return
	}

	req := &models.GetCustomerAppointmentsRequest{
		ActorID:     actorID,
		CustomerRef: customerRef,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	list, err := h.service.GetCustomerAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /customers/%s/appointments - Access denied: actor=%d", customerRef, actorID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /customers/%s/appointments - Invalid input: %v", customerRef, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /customers/%s/appointments - Failed: actor=%d, error=%v", customerRef, actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /customers/%s/appointments - Fetched %d appointments", customerRef, len(list.Appointments))
	handlers.RespondJSON(w, http.StatusOK, list)
}
