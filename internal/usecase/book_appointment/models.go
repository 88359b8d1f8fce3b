package book_appointment

import (
	"time"

	"github.com/sharpcut/booking-service/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	CustomerID     string           // ID клиента (UUID из identity-провайдера)
	BarberID       int64            // ID барбера
	ServiceID      int64            // ID услуги
	Date           time.Time        // Дата записи (без времени)
	StartTime      types.TimeString // Время начала (например, "10:00")
	Notes          *string          // Пожелания клиента (опционально)
	IdempotencyKey *string          // Ключ идемпотентности из заголовка (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64            // ID созданной записи
	CustomerID      string           // ID клиента
	BarberID        int64            // ID барбера
	ServiceID       int64            // ID услуги
	AppointmentDate time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания (start + duration)
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи

	// Денормализованные данные услуги
	ServiceName      string  // Название услуги
	ServicePrice     float64 // Цена услуги
	ConfirmationCode string  // Код подтверждения
	Notes            *string // Пожелания

	// Replayed = true, если запись не создавалась, а была найдена по
	// idempotency-ключу от предыдущего запроса
	Replayed bool

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
