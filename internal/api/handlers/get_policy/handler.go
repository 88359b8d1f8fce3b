package get_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/service/policy"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
	msgBarberNotFound  = "барбер не найден"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/barbers/{barberId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем barberId из URL
	vars := mux.Vars(r)
	barberIDStr := vars["barberId"]

	barberID, err := strconv.ParseInt(barberIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/policy - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	// Получаем действующую политику (персональная > общая > дефолты)
	result, err := h.service.GetEffective(r.Context(), barberID)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrBarberNotFound):
			h.logger.Warn("GET /barbers/{id}/policy - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		default:
			h.logger.Error("GET /barbers/{id}/policy - Failed to get policy: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{id}/policy - Policy retrieved successfully: barber_id=%d", barberID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
