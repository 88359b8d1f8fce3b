package get_available_slots

import (
	"context"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByBarberWithFilter(ctx context.Context, filter domain.BarberAppointmentsFilter) ([]*domain.Appointment, error)
}

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	// GetEffective получает действующую политику с учетом иерархии приоритетов
	GetEffective(ctx context.Context, barberID int64) (*domain.BookingPolicy, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error)
	GetService(ctx context.Context, barberID, serviceID int64) (*catalogservice.Service, error)
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
