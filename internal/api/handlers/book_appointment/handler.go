package book_appointment

import (
	"errors"
	"net/http"

	"github.com/sharpcut/booking-service/internal/api/handlers"
	"github.com/sharpcut/booking-service/internal/api/middleware"
	bookAppointment "github.com/sharpcut/booking-service/internal/usecase/book_appointment"
	"github.com/sharpcut/booking-service/pkg/txmanager"
)

// HeaderIdempotencyKey заголовок с клиентским ключом идемпотентности
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты записи, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotTaken          = "выбранный интервал уже занят"
	msgUserNotFound       = "пользователь не найден"
	msgBarberNotFound     = "барбер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceNotOffered  = "барбер не оказывает эту услугу"
	msgBarberClosed       = "барбер не работает в выбранную дату"
	msgInvalidDateValue   = "некорректная дата записи"
	msgDateTooFar         = "дата записи слишком далеко в будущем"
	msgInvalidTimeSlot    = "некорректный временной интервал"
	msgTooLateToBook      = "слишком поздно для записи на это время"
	msgTryAgain           = "не удалось зафиксировать запись, повторите попытку"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BookAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Idempotency-Key опционален: без него повтор запроса создаст новую запись
	var idempotencyKey *string
	if key := r.Header.Get(HeaderIdempotencyKey); key != "" {
		idempotencyKey = &key
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(customerID, idempotencyKey)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Обработка ошибок use case
		switch {
		case errors.Is(err, bookAppointment.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: customer_id=%s, barber_id=%d", customerID, req.BarberID)
			handlers.RespondError(w, http.StatusConflict, msgSlotTaken)

		case errors.Is(err, bookAppointment.ErrUserNotFound):
			h.logger.Warn("POST /appointments - User not found: customer_id=%s", customerID)
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, bookAppointment.ErrBarberNotFound):
			h.logger.Warn("POST /appointments - Barber not found: barber_id=%d", req.BarberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, bookAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: barber_id=%d, service_id=%d", req.BarberID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, bookAppointment.ErrServiceNotOfferedByBarber):
			h.logger.Warn("POST /appointments - Service not offered: barber_id=%d, service_id=%d", req.BarberID, req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, bookAppointment.ErrBarberClosed):
			h.logger.Warn("POST /appointments - Barber closed: barber_id=%d, date=%s", req.BarberID, req.AppointmentDate)
			handlers.RespondBadRequest(w, msgBarberClosed)

		case errors.Is(err, bookAppointment.ErrInvalidDate):
			h.logger.Warn("POST /appointments - Invalid date: customer_id=%s, date=%s", customerID, req.AppointmentDate)
			handlers.RespondBadRequest(w, msgInvalidDateValue)

		case errors.Is(err, bookAppointment.ErrDateTooFarInFuture):
			h.logger.Warn("POST /appointments - Date too far in future: customer_id=%s, date=%s", customerID, req.AppointmentDate)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, bookAppointment.ErrInvalidTimeSlot):
			h.logger.Warn("POST /appointments - Invalid time slot: customer_id=%s, barber_id=%d", customerID, req.BarberID)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, bookAppointment.ErrTooLateToBook):
			h.logger.Warn("POST /appointments - Too late to book: customer_id=%s, barber_id=%d", customerID, req.BarberID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, bookAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: customer_id=%s, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, txmanager.ErrSerializationFailure):
			h.logger.Warn("POST /appointments - Serialization failure after retries: customer_id=%s, barber_id=%d", customerID, req.BarberID)
			handlers.RespondServiceUnavailable(w, msgTryAgain)

		default:
			h.logger.Error("POST /appointments - Failed to book appointment: customer_id=%s, barber_id=%d, error=%v",
				customerID, req.BarberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	// Повтор с тем же idempotency-ключом возвращает исходную запись с 200
	if result.Replayed {
		h.logger.Info("POST /appointments - Idempotent replay: appointment_id=%d, customer_id=%s", result.ID, customerID)
		handlers.RespondJSON(w, http.StatusOK, response)
		return
	}

	h.logger.Info("POST /appointments - Appointment booked successfully: appointment_id=%d, customer_id=%s, barber_id=%d",
		result.ID, customerID, req.BarberID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
