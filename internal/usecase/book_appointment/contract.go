package book_appointment

import (
	"context"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/internal/integrations/identityservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByIdempotencyKey(ctx context.Context, customerID string, key string) (*domain.Appointment, error)
	GetByBarberWithFilter(ctx context.Context, filter domain.BarberAppointmentsFilter) ([]*domain.Appointment, error)
}

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetEffective(ctx context.Context, barberID int64) (*domain.BookingPolicy, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error)
	GetService(ctx context.Context, barberID, serviceID int64) (*catalogservice.Service, error)
}

// IdentityServiceClient интерфейс клиента для IdentityService
type IdentityServiceClient interface {
	GetUser(ctx context.Context, userID string) (*identityservice.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
