package appointments

import (
	"context"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/identityservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByCustomerID(ctx context.Context, customerID string, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	GetByBarberWithFilter(ctx context.Context, filter domain.BarberAppointmentsFilter) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id int64, reason string) error
	Complete(ctx context.Context, id int64) error
}

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetEffective(ctx context.Context, barberID int64) (*domain.BookingPolicy, error)
}

// IdentityServiceClient интерфейс клиента для IdentityService
type IdentityServiceClient interface {
	GetUser(ctx context.Context, userID string) (*identityservice.User, error)
}

// TimeProvider интерфейс для получения текущего времени.
// Вынесен в интерфейс для детерминированных тестов дедлайна отмены.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider возвращает системное время
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
