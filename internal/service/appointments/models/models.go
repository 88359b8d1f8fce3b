package models

import (
	"errors"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	UserID             string `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// CompleteAppointmentRequest запрос на завершение записи
type CompleteAppointmentRequest struct {
	UserID string `json:"userId"`
}

// GetUserAppointmentsRequest запрос на получение записей пользователя
type GetUserAppointmentsRequest struct {
	UserID      string  `json:"userId"`      // Чьи записи запрашиваются
	RequesterID string  `json:"requesterId"` // Кто запрашивает
	Status      *string `json:"status,omitempty"`
}

// GetBarberAppointmentsRequest запрос на получение записей барбера
type GetBarberAppointmentsRequest struct {
	UserID          string     `json:"userId"`
	BarberID        int64      `json:"barberId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeTerminal bool       `json:"includeTerminal,omitempty"` // Включить завершённые и отменённые записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBarberAppointmentsRequest) ToDomainFilter() (domain.BarberAppointmentsFilter, error) {
	filter := domain.BarberAppointmentsFilter{
		BarberID:        r.BarberID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeTerminal: r.IncludeTerminal,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	CustomerID      string `json:"customerId"`
	BarberID        int64  `json:"barberId"`
	ServiceID       int64  `json:"serviceId"`
	AppointmentDate string `json:"appointmentDate"` // "2026-09-15"
	StartTime       string `json:"startTime"`       // "10:00"
	EndTime         string `json:"endTime"`         // "10:30"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	// Денормализованные данные
	ServiceName      string  `json:"serviceName"`
	ServicePrice     float64 `json:"servicePrice"`
	ConfirmationCode string  `json:"confirmationCode"`
	Notes            *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format
	CompletedAt        *string `json:"completedAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		CustomerID:         a.CustomerID,
		BarberID:           a.BarberID,
		ServiceID:          a.ServiceID,
		AppointmentDate:    a.AppointmentDate.Format(domain.DateFormat),
		StartTime:          a.StartTime.String(),
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		ServiceName:        a.ServiceName,
		ServicePrice:       a.ServicePrice,
		ConfirmationCode:   a.ConfirmationCode,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	// Конец интервала считаем из start + duration
	if end, err := a.EndTime(); err == nil {
		resp.EndTime = end.String()
	}

	// Конвертируем временные метки в строки ISO 8601
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}
	if a.CompletedAt != nil {
		completedStr := a.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completedStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	if appointments == nil {
		return &AppointmentListResponse{
			Appointments: []AppointmentResponse{},
		}
	}

	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, len(appointments)),
	}

	for i, appt := range appointments {
		if apptResp := FromDomainAppointment(appt); apptResp != nil {
			resp.Appointments[i] = *apptResp
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	for _, valid := range domain.AllStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
