package get_barber_appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/api/middleware"
	"github.com/sharpcut/booking-service/internal/service/appointments"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
	msgInvalidQuery    = "некорректные параметры фильтрации"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgForbidden       = "доступ запрещен"
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

// Handle GET /api/v1/barbers/{barberId}/appointments?startDate=&endDate=&status=&includeTerminal=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем barberId из URL
	vars := mux.Vars(r)
	barberIDStr := vars["barberId"]

	barberID, err := strconv.ParseInt(barberIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/appointments - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /barbers/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Собираем фильтр из query-параметров
	req, err := ParseQuery(r.URL.Query(), barberID, userID)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/appointments - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	// Получаем записи (сервис сам проверит права администратора)
	result, err := h.service.GetBarberAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied), errors.Is(err, appointments.ErrUserNotFound):
			h.logger.Warn("GET /barbers/{id}/appointments - Access denied: barber_id=%d, user_id=%s", barberID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /barbers/{id}/appointments - Invalid filter: barber_id=%d", barberID)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /barbers/{id}/appointments - Failed to get appointments: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{id}/appointments - %d appointments returned: barber_id=%d, user_id=%s",
		len(result.Appointments), barberID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
