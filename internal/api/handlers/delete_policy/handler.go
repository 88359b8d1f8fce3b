package delete_policy

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
	msgInvalidBarberID = "некорректный ID барбера"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgForbidden       = "доступ запрещен"
	msgPolicyNotFound  = "персональная политика не найдена"
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

// Handle DELETE /api/v1/barbers/{barberId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем barberId из URL
	vars := mux.Vars(r)
	barberIDStr := vars["barberId"]

	barberID, err := strconv.ParseInt(barberIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /barbers/{id}/policy - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /barbers/{id}/policy - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Удаляем персональную политику (сервис сам проверит права администратора)
	if err := h.service.Delete(r.Context(), barberID, userID); err != nil {
		switch {
		case errors.Is(err, policy.ErrPolicyNotFound):
			h.logger.Warn("DELETE /barbers/{id}/policy - Policy not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgPolicyNotFound)

		case errors.Is(err, policy.ErrAccessDenied), errors.Is(err, policy.ErrUserNotFound):
			h.logger.Warn("DELETE /barbers/{id}/policy - Access denied: barber_id=%d, user_id=%s", barberID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /barbers/{id}/policy - Failed to delete policy: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /barbers/{id}/policy - Policy deleted successfully: barber_id=%d, user_id=%s", barberID, userID)
	w.WriteHeader(http.StatusNoContent)
}
