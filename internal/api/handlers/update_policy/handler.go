package update_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/api/middleware"
	"github.com/sharpcut/booking-service/internal/service/policy"
)

const (
	msgInvalidBarberID    = "некорректный ID барбера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgBarberNotFound     = "барбер не найден"
	msgInvalidPolicy      = "некорректные параметры политики"
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

// Handle PUT /api/v1/barbers/{barberId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем barberId из URL
	vars := mux.Vars(r)
	barberIDStr := vars["barberId"]

	barberID, err := strconv.ParseInt(barberIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PUT /barbers/{id}/policy - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /barbers/{id}/policy - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdatePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /barbers/{id}/policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Обновляем политику (сервис сам проверит права администратора)
	result, err := h.service.Update(r.Context(), barberID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrBarberNotFound):
			h.logger.Warn("PUT /barbers/{id}/policy - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, policy.ErrAccessDenied), errors.Is(err, policy.ErrUserNotFound):
			h.logger.Warn("PUT /barbers/{id}/policy - Access denied: barber_id=%d, user_id=%s", barberID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, policy.ErrInvalidInput):
			h.logger.Warn("PUT /barbers/{id}/policy - Invalid policy data: barber_id=%d, error=%v", barberID, err)
			handlers.RespondBadRequest(w, msgInvalidPolicy)

		default:
			h.logger.Error("PUT /barbers/{id}/policy - Failed to update policy: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /barbers/{id}/policy - Policy updated successfully: barber_id=%d, user_id=%s", barberID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
