package get_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments"
)

const (
	msgInvalidID           = "некорректный идентификатор записи"
	msgAppointmentNotFound = "запись не найдена"
	msgAccessDenied        = "нет прав на просмотр этой записи"
	msgUnauthorized        = "не указан идентификатор пользователя"
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

// Handle GET /api/v1/appointments/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	appointmentID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || appointmentID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	appt, err := h.service.GetByID(r.Context(), appointmentID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /appointments/%d - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /appointments/%d - Access denied: actor=%d", appointmentID, actorID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("GET /appointments/%d - Failed: actor=%d, error=%v", appointmentID, actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments/%d - Fetched: actor=%d", appointmentID, actorID)
	handlers.RespondJSON(w, http.StatusOK, appt)
}
