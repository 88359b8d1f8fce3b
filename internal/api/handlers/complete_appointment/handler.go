package complete_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/api/middleware"
	"github.com/sharpcut/booking-service/internal/service/appointments"
	"github.com/sharpcut/booking-service/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgNotFound             = "запись не найдена"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgForbidden            = "доступ запрещен"
	msgCannotComplete       = "запись уже завершена или отменена"
	msgNotElapsed           = "время записи еще не прошло"
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

// Handle POST /api/v1/appointments/{appointmentId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем appointmentId из URL
	vars := mux.Vars(r)
	appointmentIDStr := vars["appointmentId"]

	appointmentID, err := strconv.ParseInt(appointmentIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/complete - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments/{id}/complete - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Завершаем запись (сервис сам проверит права администратора)
	req := &models.CompleteAppointmentRequest{UserID: userID}
	if err := h.service.Complete(r.Context(), appointmentID, req); err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/complete - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied), errors.Is(err, appointments.ErrUserNotFound):
			h.logger.Warn("POST /appointments/{id}/complete - Access denied: appointment_id=%d, user_id=%s", appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrCannotComplete):
			h.logger.Warn("POST /appointments/{id}/complete - Cannot complete: appointment_id=%d", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgCannotComplete)

		case errors.Is(err, appointments.ErrNotElapsed):
			h.logger.Warn("POST /appointments/{id}/complete - Not elapsed yet: appointment_id=%d", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgNotElapsed)

		default:
			h.logger.Error("POST /appointments/{id}/complete - Failed to complete appointment: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/complete - Appointment completed successfully: appointment_id=%d, user_id=%s",
		appointmentID, userID)
	w.WriteHeader(http.StatusNoContent)
}
