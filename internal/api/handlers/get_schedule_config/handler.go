package get_schedule_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
	"github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig"
	"github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig/models"
)

const (
	msgInvalidBusinessID = "некорректный идентификатор бизнеса"
	msgInvalidResourceID = "некорректный идентификатор ресурса"
	msgConfigNotFound    = "конфигурация не найдена"
)

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

// Handle GET /api/v1/businesses/{id}/schedule-config
// Query params: resourceId (опционально) - конфигурация конкретного ресурса
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || businessID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	req := &models.GetConfigRequest{BusinessID: businessID}
	if raw := r.URL.Query().Get("resourceId"); raw != "" {
		resourceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || resourceID <= 0 {
			handlers.RespondBadRequest(w, msgInvalidResourceID)
			return
		}
		req.ResourceID = &resourceID
	}

	config, err := h.service.GetResolved(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, scheduleconfig.ErrConfigNotFound):
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, scheduleconfig.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBusinessID)

		default:
			h.logger.Error("GET /businesses/%d/schedule-config - Failed: error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/%d/schedule-config - Fetched", businessID)
	handlers.RespondJSON(w, http.StatusOK, config)
}
