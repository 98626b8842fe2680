package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	getAvailableSlots "github.com/avenirbook/scheduling-engine/internal/usecase/get_available_slots"
)

const (
	msgInvalidBusinessID = "некорректный идентификатор бизнеса"
	msgInvalidQuery      = "некорректные параметры запроса"
	msgBusinessNotFound  = "бизнес не найден"
	msgServiceNotFound   = "услуга не найдена"
	msgResourceNotFound  = "ресурс не найден"
	msgInvalidDate       = "некорректная дата"
	msgDateTooFar        = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{id}/available-slots
// Query params: serviceId (обязателен), date (обязателен, YYYY-MM-DD),
// staffId | servicePointId | anyOf (не более одного), duration (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || businessID <= 0 {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	req, err := ToUseCaseRequest(businessID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /businesses/%d/available-slots - Invalid query: %v", businessID, err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrBusinessNotFound):
			h.logger.Warn("GET /businesses/%d/available-slots - Business not found", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /businesses/%d/available-slots - Service not found: service=%d", businessID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrResourceNotFound):
			h.logger.Warn("GET /businesses/%d/available-slots - Resource not found", businessID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /businesses/%d/available-slots - Invalid input: %v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /businesses/%d/available-slots - Failed: error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/%d/available-slots - Returned %d slots for %s",
		businessID, len(result.Slots), result.Date.Format("2006-01-02"))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
