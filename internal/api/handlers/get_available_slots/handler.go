package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/domain"
	getAvailableSlots "github.com/sharpcut/booking-service/internal/usecase/get_available_slots"
)

const (
	msgInvalidBarberID   = "некорректный ID барбера"
	msgInvalidServiceID  = "некорректный параметр serviceId"
	msgInvalidDate       = "некорректный параметр date, ожидается YYYY-MM-DD"
	msgBarberNotFound    = "барбер не найден"
	msgServiceNotFound   = "услуга не найдена"
	msgServiceNotOffered = "барбер не оказывает эту услугу"
	msgDateTooFar        = "дата слишком далеко в будущем"
	msgInvalidInput      = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/barbers/{barberId}/available-slots?serviceId=&date=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем barberId из URL
	vars := mux.Vars(r)
	barberIDStr := vars["barberId"]

	barberID, err := strconv.ParseInt(barberIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/available-slots - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	// Извлекаем обязательные query-параметры
	serviceID, err := strconv.ParseInt(r.URL.Query().Get("serviceId"), 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/available-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/available-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		BarberID:  barberID,
		ServiceID: serviceID,
		Date:      date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrBarberNotFound):
			h.logger.Warn("GET /barbers/{id}/available-slots - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /barbers/{id}/available-slots - Service not found: barber_id=%d, service_id=%d", barberID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotOfferedByBarber):
			h.logger.Warn("GET /barbers/{id}/available-slots - Service not offered: barber_id=%d, service_id=%d", barberID, serviceID)
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /barbers/{id}/available-slots - Date too far in future: barber_id=%d", barberID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /barbers/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /barbers/{id}/available-slots - Failed to get slots: barber_id=%d, error=%v", barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{id}/available-slots - %d slots returned: barber_id=%d, service_id=%d",
		len(result.Slots), barberID, serviceID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
