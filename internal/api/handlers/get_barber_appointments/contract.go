package get_barber_appointments

import (
	"context"

	"github.com/sharpcut/booking-service/internal/service/appointments/models"
)

type AppointmentService interface {
	GetBarberAppointments(ctx context.Context, req *models.GetBarberAppointmentsRequest) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
