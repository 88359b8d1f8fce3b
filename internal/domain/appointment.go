package domain

import (
	"time"

	"github.com/sharpcut/booking-service/pkg/types"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "upcoming"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a booked visit to a barber.
//
// ServiceName, ServicePrice and DurationMinutes are snapshotted from the
// catalog at booking time: later edits to the service must not change
// already-booked appointments.
type Appointment struct {
	ID              int64
	CustomerID      string // Opaque identifier issued by the identity provider
	BarberID        int64
	ServiceID       int64
	AppointmentDate time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Denormalized data for history
	ServiceName      string
	ServicePrice     float64
	ConfirmationCode string
	Notes            *string

	IdempotencyKey *string

	CancellationReason *string
	CancelledAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsUpcoming returns true if the appointment has not reached a terminal state
func (a *Appointment) IsUpcoming() bool {
	return a.Status == StatusUpcoming
}

// IsTerminal returns true if the appointment is completed or cancelled.
// Terminal states admit no further transitions.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// CanBeCancelled returns true if the appointment may transition to cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusUpcoming
}

// CanBeCompleted returns true if the appointment may transition to completed
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusUpcoming
}

// StartsAt returns the full start timestamp (date + wall-clock start time)
func (a *Appointment) StartsAt() (time.Time, error) {
	return a.StartTime.At(a.AppointmentDate)
}

// EndsAt returns the full end timestamp (start + duration)
func (a *Appointment) EndsAt() (time.Time, error) {
	start, err := a.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(a.DurationMinutes) * time.Minute), nil
}

// EndTime returns the wall-clock end time of the occupied interval
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// BarberAppointmentsFilter фильтр для выборки записей барбера
type BarberAppointmentsFilter struct {
	BarberID        int64              // Обязательный параметр
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeTerminal bool               // Включать ли завершённые и отменённые записи
}
