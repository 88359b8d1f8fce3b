package policy

import (
	"context"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/internal/integrations/identityservice"
)

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetEffective(ctx context.Context, barberID int64) (*domain.BookingPolicy, error)
	Upsert(ctx context.Context, policy *domain.BookingPolicy) (*domain.BookingPolicy, error)
	Delete(ctx context.Context, barberID *int64) error
}

// IdentityServiceClient интерфейс клиента для IdentityService
type IdentityServiceClient interface {
	GetUser(ctx context.Context, userID string) (*identityservice.User, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
