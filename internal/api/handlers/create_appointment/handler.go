package create_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	createAppointment "github.com/avenirbook/scheduling-engine/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgBusinessNotFound   = "бизнес не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgResourceNotFound   = "ресурс не найден"
	msgInvalidAppDate     = "некорректная дата записи"
	msgDateTooFar         = "дата записи слишком далеко в будущем"
	msgOutsideHours       = "слот вне рабочих часов"
	msgSlotNotAligned     = "начало слота не попадает в сетку расписания"
	msgNoticeTooShort     = "слишком поздно для записи на этот слот"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgInvalidRequestBody)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actorID, strconv.FormatInt(actorID, 10))
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotNotAvailable):
			h.logger.Warn("POST /appointments - Slot not available: actor=%d, business=%d", actorID, req.BusinessID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createAppointment.ErrBusinessNotFound):
			h.logger.Warn("POST /appointments - Business not found: business=%d", req.BusinessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: business=%d, service=%d", req.BusinessID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrResourceNotFound):
			h.logger.Warn("POST /appointments - Resource not found: business=%d", req.BusinessID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, createAppointment.ErrInvalidDate):
			h.logger.Warn("POST /appointments - Invalid date: actor=%d, business=%d", actorID, req.BusinessID)
			handlers.RespondBadRequest(w, msgInvalidAppDate)

		case errors.Is(err, createAppointment.ErrDateTooFarInFuture):
			h.logger.Warn("POST /appointments - Date too far in future: actor=%d, business=%d", actorID, req.BusinessID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createAppointment.ErrSlotOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Slot outside working hours: actor=%d, business=%d", actorID, req.BusinessID)
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, createAppointment.ErrSlotNotAligned):
			h.logger.Warn("POST /appointments - Slot not aligned: actor=%d, business=%d", actorID, req.BusinessID)
			handlers.RespondBadRequest(w, msgSlotNotAligned)

		case errors.Is(err, createAppointment.ErrBookingNoticeTooShort):
			h.logger.Warn("POST /appointments - Notice too short: actor=%d, business=%d", actorID, req.BusinessID)
			handlers.RespondBadRequest(w, msgNoticeTooShort)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: actor=%d, business=%d, error=%v",
				actorID, req.BusinessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: id=%d, actor=%d, business=%d",
		result.Appointment.ID, actorID, req.BusinessID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
