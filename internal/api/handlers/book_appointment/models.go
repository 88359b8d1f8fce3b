package book_appointment

import (
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	bookAppointment "github.com/sharpcut/booking-service/internal/usecase/book_appointment"
	"github.com/sharpcut/booking-service/pkg/types"
)

// BookAppointmentRequest HTTP request model
type BookAppointmentRequest struct {
	BarberID        int64   `json:"barberId"`
	ServiceID       int64   `json:"serviceId"`
	AppointmentDate string  `json:"appointmentDate"` // "2026-09-15"
	StartTime       string  `json:"startTime"`       // "10:00"
	Notes           *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID               int64   `json:"id"`
	CustomerID       string  `json:"customerId"`
	BarberID         int64   `json:"barberId"`
	ServiceID        int64   `json:"serviceId"`
	AppointmentDate  string  `json:"appointmentDate"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	DurationMinutes  int     `json:"durationMinutes"`
	Status           string  `json:"status"`
	ServiceName      string  `json:"serviceName"`
	ServicePrice     float64 `json:"servicePrice"`
	ConfirmationCode string  `json:"confirmationCode"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookAppointmentRequest) ToUseCaseRequest(customerID string, idempotencyKey *string) (*bookAppointment.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &bookAppointment.Request{
		CustomerID:     customerID,
		BarberID:       r.BarberID,
		ServiceID:      r.ServiceID,
		Date:           date,
		StartTime:      startTime,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:               resp.ID,
		CustomerID:       resp.CustomerID,
		BarberID:         resp.BarberID,
		ServiceID:        resp.ServiceID,
		AppointmentDate:  resp.AppointmentDate.Format(domain.DateFormat),
		StartTime:        resp.StartTime.String(),
		EndTime:          resp.EndTime.String(),
		DurationMinutes:  resp.DurationMinutes,
		Status:           resp.Status,
		ServiceName:      resp.ServiceName,
		ServicePrice:     resp.ServicePrice,
		ConfirmationCode: resp.ConfirmationCode,
		Notes:            resp.Notes,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
