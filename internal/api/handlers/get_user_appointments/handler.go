package get_user_appointments

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/api/middleware"
	"github.com/sharpcut/booking-service/internal/service/appointments"
	"github.com/sharpcut/booking-service/internal/service/appointments/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgInvalidStatus = "некорректный параметр status"
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

// Handle GET /api/v1/users/{userId}/appointments?status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем userId из URL
	vars := mux.Vars(r)
	targetUserID := vars["userId"]

	// Получаем requesterID из контекста (через middleware Auth)
	requesterID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Опциональный фильтр по статусу
	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	req := &models.GetUserAppointmentsRequest{
		UserID:      targetUserID,
		RequesterID: requesterID,
		Status:      status,
	}

	// Получаем записи (сервис сам проверит права доступа)
	result, err := h.service.GetUserAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied), errors.Is(err, appointments.ErrUserNotFound):
			h.logger.Warn("GET /users/{id}/appointments - Access denied: target=%s, requester=%s", targetUserID, requesterID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /users/{id}/appointments - Invalid status: target=%s", targetUserID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /users/{id}/appointments - Failed to get appointments: target=%s, error=%v", targetUserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/{id}/appointments - %d appointments returned: target=%s, requester=%s",
		len(result.Appointments), targetUserID, requesterID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
