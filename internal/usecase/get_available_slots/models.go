package get_available_slots

import (
	"time"

	"github.com/sharpcut/booking-service/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BarberID  int64     // ID барбера
	ServiceID int64     // ID услуги (определяет длительность слота)
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date      time.Time // Дата, на которую запрашивались слоты
	BarberID  int64     // ID барбера
	ServiceID int64     // ID услуги
	Slots     []Slot    // Список доступных слотов
}

// Slot модель доступного интервала
type Slot struct {
	StartTime       types.TimeString // Время начала (например, "10:00")
	EndTime         types.TimeString // Время окончания (start + duration)
	DurationMinutes int              // Длительность услуги в минутах
}
