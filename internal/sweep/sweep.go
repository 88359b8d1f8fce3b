// Package sweep фоновый процесс, закрывающий прошедшие записи.
// Записи, время которых истекло, переводятся из upcoming в completed,
// чтобы статус в истории не зависел от ручных действий администратора.
package sweep

import (
	"context"
	"time"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper периодически завершает прошедшие записи
type Sweeper struct {
	apptRepo AppointmentRepository
	interval time.Duration
	logger   Logger
}

// New создает новый экземпляр sweeper
func New(apptRepo AppointmentRepository, interval time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		apptRepo: apptRepo,
		interval: interval,
		logger:   logger,
	}
}

// Run запускает цикл обхода и блокируется до отмены контекста.
// Каждая итерация идемпотентна: статусный предикат в UPDATE гарантирует,
// что повторный или конкурентный проход ничего не сломает
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweep: started, interval=%s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Первый проход сразу при старте: закрываем записи, истекшие пока
	// сервис не работал
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep: stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	completed, err := s.apptRepo.CompleteElapsed(ctx, time.Now())
	if err != nil {
		// Следующая итерация попробует снова, падать не нужно
		s.logger.Error("Sweep: failed to complete elapsed appointments: %v", err)
		return
	}

	if completed > 0 {
		s.logger.Info("Sweep: completed %d elapsed appointments", completed)
	}
}
