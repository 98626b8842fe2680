package get_business_appointments

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
	msgInvalidID        = "некорректный идентификатор бизнеса"
	msgInvalidQuery     = "некорректные параметры фильтрации"
	msgBusinessNotFound = "бизнес не найден"
	msgAccessDenied     = "нет прав на просмотр записей этого бизнеса"
	msgUnauthorized     = "не указан идентификатор пользователя"
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

// Handle GET /api/v1/businesses/{id}/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	businessID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || businessID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	req, err := parseQuery(r.URL.Query(), businessID, actorID)
	if err != nil {
		h.logger.Warn("GET /businesses/%d/appointments - Invalid query: %v", businessID, err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	list, err := h.service.GetBusinessAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrBusinessNotFound):
			h.logger.Warn("GET /businesses/%d/appointments - Business not found", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /businesses/%d/appointments - Access denied: actor=%d", businessID, actorID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /businesses/%d/appointments - Invalid filter: %v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /businesses/%d/appointments - Failed: actor=%d, error=%v", businessID, actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/%d/appointments - Fetched %d appointments: actor=%d",
		businessID, len(list.Appointments), actorID)
	handlers.RespondJSON(w, http.StatusOK, list)
}
