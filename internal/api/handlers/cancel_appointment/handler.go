package cancel_appointment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidID           = "некорректный идентификатор записи"
	msgAppointmentNotFound = "запись не найдена"
	msgAccessDenied        = "нет прав на отмену этой записи"
	msgCannotCancel        = "запись нельзя отменить"
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

// Handle PATCH /api/v1/appointments/{id}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgInvalidRequestBody)
		return
	}

	appointmentID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || appointmentID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	// Тело опционально: отмена без причины допустима
	var req CancelAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /appointments/%d/cancel - Invalid request body: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.Cancel(r.Context(), appointmentID, &models.CancelAppointmentRequest{
		ActorID:            actorID,
		CancellationReason: req.CancellationReason,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/%d/cancel - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/%d/cancel - Access denied: actor=%d", appointmentID, actorID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, appointments.ErrCannotCancel):
			h.logger.Warn("PATCH /appointments/%d/cancel - Cannot cancel", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

		default:
			h.logger.Error("PATCH /appointments/%d/cancel - Failed: actor=%d, error=%v",
				appointmentID, actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/%d/cancel - Cancelled: actor=%d", appointmentID, actorID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
