package delete_policy

import "context"

type PolicyService interface {
	Delete(ctx context.Context, barberID int64, userID string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
