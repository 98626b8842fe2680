package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	rescheduleAppointment "github.com/avenirbook/scheduling-engine/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidID           = "некорректный идентификатор записи"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgAppointmentNotFound = "запись не найдена"
	msgForbidden           = "нет прав на изменение этой записи"
	msgCannotReschedule    = "запись нельзя перенести"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgInvalidAppDate      = "некорректная дата записи"
	msgDateTooFar          = "дата записи слишком далеко в будущем"
	msgOutsideHours        = "слот вне рабочих часов"
	msgSlotNotAligned      = "начало слота не попадает в сетку расписания"
	msgNoticeTooShort      = "слишком поздно для переноса на этот слот"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{id}/reschedule
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

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/%d/reschedule - Invalid request body: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actorID, appointmentID)
	if err != nil {
		h.logger.Warn("POST /appointments/%d/reschedule - Failed to parse request: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/%d/reschedule - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, rescheduleAppointment.ErrForbidden):
			h.logger.Warn("POST /appointments/%d/reschedule - Forbidden: actor=%d", appointmentID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleAppointment.ErrCannotReschedule):
			h.logger.Warn("POST /appointments/%d/reschedule - Cannot reschedule", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgCannotReschedule)

		case errors.Is(err, rescheduleAppointment.ErrSlotNotAvailable):
			h.logger.Warn("POST /appointments/%d/reschedule - Slot not available", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, rescheduleAppointment.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidAppDate)

		case errors.Is(err, rescheduleAppointment.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, rescheduleAppointment.ErrSlotOutsideWorkingHours):
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, rescheduleAppointment.ErrSlotNotAligned):
			handlers.RespondBadRequest(w, msgSlotNotAligned)

		case errors.Is(err, rescheduleAppointment.ErrBookingNoticeTooShort):
			handlers.RespondBadRequest(w, msgNoticeTooShort)

		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments/%d/reschedule - Failed: actor=%d, error=%v",
				appointmentID, actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/%d/reschedule - Rescheduled: actor=%d, newDate=%s",
		appointmentID, actorID, req.NewDate)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
