package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpcut/booking-service/internal/domain"
	apptRepoStorage "github.com/sharpcut/booking-service/internal/infra/storage/appointment"
	policyRepoStorage "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	"github.com/sharpcut/booking-service/internal/integrations/identityservice"
	"github.com/sharpcut/booking-service/internal/service/appointments/models"
	"github.com/sharpcut/booking-service/pkg/types"
)

const (
	ownerID = "a3f1c882-0d4e-4b7a-9e15-6c2d8f4a1b35"
	adminID = "b7e2d991-1f5a-4c8b-8d26-7d3e9a5b2c46"
	otherID = "c8f3eaa2-2a6b-4d9c-9e37-8e4fab6c3d57"
)

// Фейки для зависимостей сервиса

type fakeApptRepo struct {
	appt    *domain.Appointment
	getErr  error
	list    []*domain.Appointment
	listErr error

	cancelErr       error
	cancelledID     int64
	cancelledReason string
	completeErr     error
	completedID     int64
}

func (f *fakeApptRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.appt, nil
}

func (f *fakeApptRepo) GetByCustomerID(_ context.Context, _ string, _ *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeApptRepo) GetByBarberWithFilter(_ context.Context, _ domain.BarberAppointmentsFilter) ([]*domain.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeApptRepo) Cancel(_ context.Context, id int64, reason string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledID = id
	f.cancelledReason = reason
	return nil
}

func (f *fakeApptRepo) Complete(_ context.Context, id int64) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completedID = id
	return nil
}

type fakePolicyRepo struct {
	policy *domain.BookingPolicy
	err    error
}

func (f *fakePolicyRepo) GetEffective(_ context.Context, _ int64) (*domain.BookingPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.policy, nil
}

// fakeIdentityClient считает администратором только adminID
type fakeIdentityClient struct {
	err error
}

func (f *fakeIdentityClient) GetUser(_ context.Context, userID string) (*identityservice.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &identityservice.User{ID: userID, IsAdministrator: userID == adminID}, nil
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// Вспомогательные конструкторы тестовых данных

// upcomingAppointment запись 2026-09-15 14:00-14:30
func upcomingAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              42,
		CustomerID:      ownerID,
		BarberID:        1,
		ServiceID:       10,
		AppointmentDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("14:00"),
		DurationMinutes: 30,
		Status:          domain.StatusUpcoming,
	}
}

// cutoffPolicy политика с часовым дедлайном отмены
func cutoffPolicy() *domain.BookingPolicy {
	return &domain.BookingPolicy{
		SlotGranularityMinutes:    30,
		CancellationCutoffMinutes: 60,
		MinBookingNoticeMinutes:   30,
	}
}

func newTestService(apptRepo *fakeApptRepo, polRepo *fakePolicyRepo, now time.Time) *Service {
	return NewService(apptRepo, polRepo, &fakeIdentityClient{}, &fakeTimeProvider{now: now}, nopLogger{})
}

// GetByID

func TestGetByID_Owner(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	resp, err := svc.GetByID(context.Background(), 42, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "14:00", resp.StartTime)
	assert.Equal(t, "14:30", resp.EndTime)
}

func TestGetByID_Admin(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	_, err := svc.GetByID(context.Background(), 42, adminID)
	require.NoError(t, err)
}

func TestGetByID_StrangerDenied(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	_, err := svc.GetByID(context.Background(), 42, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{getErr: apptRepoStorage.ErrAppointmentNotFound}, &fakePolicyRepo{}, now)

	_, err := svc.GetByID(context.Background(), 99, ownerID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

// Cancel

func TestCancel_OwnerBeforeDeadline(t *testing.T) {
	// Запись в 14:00, дедлайн отмены 13:00, сейчас 10:00
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{appt: upcomingAppointment()}
	svc := newTestService(apptRepo, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{
		UserID:             ownerID,
		CancellationReason: "не успеваю",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), apptRepo.cancelledID)
	assert.Equal(t, "не успеваю", apptRepo.cancelledReason)
}

func TestCancel_OwnerAfterDeadline(t *testing.T) {
	// Запись в 14:00, дедлайн отмены 13:00, сейчас 13:30
	now := time.Date(2026, 9, 15, 13, 30, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)
}

func TestCancel_AdminBypassesDeadline(t *testing.T) {
	// Сейчас 13:59, владелец уже не может отменить, администратор может
	now := time.Date(2026, 9, 15, 13, 59, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{appt: upcomingAppointment()}
	svc := newTestService(apptRepo, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{UserID: adminID})
	require.NoError(t, err)
	assert.Equal(t, int64(42), apptRepo.cancelledID)
}

func TestCancel_StrangerDenied(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{UserID: otherID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	appt := upcomingAppointment()
	appt.Status = domain.StatusCancelled
	svc := newTestService(&fakeApptRepo{appt: appt}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_DefaultPolicyWhenNoneStored(t *testing.T) {
	// Дефолтный дедлайн 60 минут: отмена в 12:00 на запись в 14:00 проходит
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{appt: upcomingAppointment()}
	svc := newTestService(apptRepo, &fakePolicyRepo{err: policyRepoStorage.ErrPolicyNotFound}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{UserID: ownerID})
	require.NoError(t, err)
}

func TestCancel_RaceOnStatusChange(t *testing.T) {
	// Между чтением и отменой запись перешла в терминальный статус
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{
		appt:      upcomingAppointment(),
		cancelErr: apptRepoStorage.ErrAppointmentNotFound,
	}
	svc := newTestService(apptRepo, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Cancel(context.Background(), 42, &models.CancelAppointmentRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

// Complete

func TestComplete_AdminAfterEnd(t *testing.T) {
	// Запись закончилась в 14:30, сейчас 15:00
	now := time.Date(2026, 9, 15, 15, 0, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{appt: upcomingAppointment()}
	svc := newTestService(apptRepo, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Complete(context.Background(), 42, &models.CompleteAppointmentRequest{UserID: adminID})
	require.NoError(t, err)
	assert.Equal(t, int64(42), apptRepo.completedID)
}

func TestComplete_NotElapsed(t *testing.T) {
	// Запись идёт до 14:30, сейчас 14:15
	now := time.Date(2026, 9, 15, 14, 15, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Complete(context.Background(), 42, &models.CompleteAppointmentRequest{UserID: adminID})
	assert.ErrorIs(t, err, ErrNotElapsed)
}

func TestComplete_NonAdminDenied(t *testing.T) {
	now := time.Date(2026, 9, 15, 15, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{appt: upcomingAppointment()}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	// Даже владелец не может завершить свою запись
	err := svc.Complete(context.Background(), 42, &models.CompleteAppointmentRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestComplete_AfterCancel(t *testing.T) {
	now := time.Date(2026, 9, 15, 15, 0, 0, 0, time.UTC)
	appt := upcomingAppointment()
	appt.Status = domain.StatusCancelled
	svc := newTestService(&fakeApptRepo{appt: appt}, &fakePolicyRepo{policy: cutoffPolicy()}, now)

	err := svc.Complete(context.Background(), 42, &models.CompleteAppointmentRequest{UserID: adminID})
	assert.ErrorIs(t, err, ErrCannotComplete)
}

// GetUserAppointments

func TestGetUserAppointments_OwnHistory(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{list: []*domain.Appointment{upcomingAppointment()}}
	svc := newTestService(apptRepo, &fakePolicyRepo{}, now)

	resp, err := svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{
		UserID:      ownerID,
		RequesterID: ownerID,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
}

func TestGetUserAppointments_OtherUserRequiresAdmin(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{}, &fakePolicyRepo{}, now)

	_, err := svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{
		UserID:      ownerID,
		RequesterID: otherID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{
		UserID:      ownerID,
		RequesterID: adminID,
	})
	require.NoError(t, err)
}

func TestGetUserAppointments_InvalidStatus(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeApptRepo{}, &fakePolicyRepo{}, now)

	badStatus := "pending"
	_, err := svc.GetUserAppointments(context.Background(), &models.GetUserAppointmentsRequest{
		UserID:      ownerID,
		RequesterID: ownerID,
		Status:      &badStatus,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// GetBarberAppointments

func TestGetBarberAppointments_AdminOnly(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	apptRepo := &fakeApptRepo{list: []*domain.Appointment{upcomingAppointment()}}
	svc := newTestService(apptRepo, &fakePolicyRepo{}, now)

	_, err := svc.GetBarberAppointments(context.Background(), &models.GetBarberAppointmentsRequest{
		UserID:   ownerID,
		BarberID: 1,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetBarberAppointments(context.Background(), &models.GetBarberAppointmentsRequest{
		UserID:   adminID,
		BarberID: 1,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
}
