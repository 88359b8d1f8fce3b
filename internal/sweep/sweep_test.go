package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeApptRepo struct {
	calls     atomic.Int64
	completed int64
	err       error
}

func (f *fakeApptRepo) CompleteElapsed(_ context.Context, _ time.Time) (int64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.completed, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func TestSweep_CompletesElapsed(t *testing.T) {
	repo := &fakeApptRepo{completed: 3}
	s := New(repo, time.Minute, nopLogger{})

	s.sweep(context.Background())
	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestSweep_SurvivesRepositoryError(t *testing.T) {
	repo := &fakeApptRepo{err: errors.New("connection refused")}
	s := New(repo, time.Minute, nopLogger{})

	// Ошибка репозитория не должна приводить к панике
	s.sweep(context.Background())
	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	repo := &fakeApptRepo{}
	s := New(repo, time.Hour, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Первый проход выполняется сразу при старте, не дожидаясь тикера
	assert.Eventually(t, func() bool {
		return repo.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
