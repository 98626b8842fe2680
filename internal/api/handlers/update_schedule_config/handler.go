package update_schedule_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/api/middleware"
	"github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig"
	"github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBusinessID  = "некорректный идентификатор бизнеса"
	msgBusinessNotFound   = "бизнес не найден"
	msgResourceNotFound   = "ресурс не найден"
	msgAccessDenied       = "менять конфигурацию может только владелец бизнеса"
	msgUnauthorized       = "не указан идентификатор пользователя"
)

// UpdateConfigRequest HTTP request model
type UpdateConfigRequest struct {
	ResourceID              *int64 `json:"resourceId,omitempty"`
	SlotGranularityMinutes  int    `json:"slotGranularityMinutes"`
	AdvanceBookingDays      int    `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int    `json:"minBookingNoticeMinutes"`
}

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{id}/schedule-config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	businessID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || businessID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req UpdateConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/%d/schedule-config - Invalid request body: %v", businessID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	config, err := h.service.Update(r.Context(), &models.UpdateConfigRequest{
		ActorID:                 actorID,
		BusinessID:              businessID,
		ResourceID:              req.ResourceID,
		SlotGranularityMinutes:  req.SlotGranularityMinutes,
		AdvanceBookingDays:      req.AdvanceBookingDays,
		MinBookingNoticeMinutes: req.MinBookingNoticeMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleconfig.ErrBusinessNotFound):
			h.logger.Warn("PUT /businesses/%d/schedule-config - Business not found", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, scheduleconfig.ErrResourceNotFound):
			h.logger.Warn("PUT /businesses/%d/schedule-config - Resource not found", businessID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, scheduleconfig.ErrAccessDenied):
			h.logger.Warn("PUT /businesses/%d/schedule-config - Access denied: actor=%d", businessID, actorID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, scheduleconfig.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/%d/schedule-config - Invalid input: %v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PUT /businesses/%d/schedule-config - Failed: actor=%d, error=%v", businessID, actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/%d/schedule-config - Saved config id=%d: actor=%d", businessID, config.ID, actorID)
	handlers.RespondJSON(w, http.StatusOK, config)
}
