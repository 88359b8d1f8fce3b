package get_policy

import (
	"context"

	"github.com/sharpcut/booking-service/internal/service/policy/models"
)

type PolicyService interface {
	GetEffective(ctx context.Context, barberID int64) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
