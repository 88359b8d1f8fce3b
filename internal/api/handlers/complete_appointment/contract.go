package complete_appointment

import (
	"context"

	"github.com/sharpcut/booking-service/internal/service/appointments/models"
)

type AppointmentService interface {
	Complete(ctx context.Context, appointmentID int64, req *models.CompleteAppointmentRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
