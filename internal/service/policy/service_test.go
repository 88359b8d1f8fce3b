package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpcut/booking-service/internal/domain"
	policyRepoStorage "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/internal/integrations/identityservice"
	"github.com/sharpcut/booking-service/internal/service/policy/models"
	"github.com/sharpcut/booking-service/pkg/ptr"
)

const (
	adminID   = "b7e2d991-1f5a-4c8b-8d26-7d3e9a5b2c46"
	regularID = "a3f1c882-0d4e-4b7a-9e15-6c2d8f4a1b35"
)

// Фейки для зависимостей сервиса

type fakePolicyRepo struct {
	effective    *domain.BookingPolicy
	effectiveErr error
	deleteErr    error

	upserted *domain.BookingPolicy
	deleted  *int64
}

func (f *fakePolicyRepo) GetEffective(_ context.Context, _ int64) (*domain.BookingPolicy, error) {
	if f.effectiveErr != nil {
		return nil, f.effectiveErr
	}
	return f.effective, nil
}

func (f *fakePolicyRepo) Upsert(_ context.Context, policy *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	saved := *policy
	saved.ID = 1
	saved.CreatedAt = time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	saved.UpdatedAt = saved.CreatedAt
	f.upserted = &saved
	return &saved, nil
}

func (f *fakePolicyRepo) Delete(_ context.Context, barberID *int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = barberID
	return nil
}

type fakeCatalogClient struct {
	err error
}

func (f *fakeCatalogClient) GetBarber(_ context.Context, barberID int64) (*catalogservice.Barber, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &catalogservice.Barber{ID: barberID, Name: "Иван"}, nil
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

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestService(repo *fakePolicyRepo) *Service {
	return NewService(repo, &fakeCatalogClient{}, &fakeIdentityClient{}, nopLogger{})
}

// GetEffective

func TestGetEffective_StoredPolicy(t *testing.T) {
	barberID := int64(3)
	repo := &fakePolicyRepo{effective: &domain.BookingPolicy{
		ID:                        1,
		BarberID:                  &barberID,
		SlotGranularityMinutes:    20,
		CancellationCutoffMinutes: 120,
		MinBookingNoticeMinutes:   45,
		AdvanceBookingDays:        30,
		CreatedAt:                 time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:                 time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}}
	svc := newTestService(repo)

	resp, err := svc.GetEffective(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.SlotGranularityMinutes)
	assert.Equal(t, 120, resp.CancellationCutoffMinutes)
	require.NotNil(t, resp.BarberID)
	assert.Equal(t, int64(3), *resp.BarberID)
	assert.NotNil(t, resp.CreatedAt)
}

func TestGetEffective_DefaultsWhenNoneStored(t *testing.T) {
	repo := &fakePolicyRepo{effectiveErr: policyRepoStorage.ErrPolicyNotFound}
	svc := newTestService(repo)

	resp, err := svc.GetEffective(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSlotGranularityMinutes, resp.SlotGranularityMinutes)
	assert.Equal(t, domain.DefaultCancellationCutoffMinutes, resp.CancellationCutoffMinutes)
	assert.Nil(t, resp.BarberID)
	// Дефолтная политика не хранится в БД и не имеет временных меток
	assert.Nil(t, resp.CreatedAt)
}

func TestGetEffective_BarberNotFound(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := NewService(repo, &fakeCatalogClient{err: catalogservice.ErrBarberNotFound}, &fakeIdentityClient{}, nopLogger{})

	_, err := svc.GetEffective(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBarberNotFound)
}

// Update

func TestUpdate_PartialMerge(t *testing.T) {
	// Текущая действующая политика - общая политика салона
	repo := &fakePolicyRepo{effective: &domain.BookingPolicy{
		SlotGranularityMinutes:    30,
		CancellationCutoffMinutes: 90,
		MinBookingNoticeMinutes:   15,
		AdvanceBookingDays:        14,
	}}
	svc := newTestService(repo)

	resp, err := svc.Update(context.Background(), 3, &models.UpdatePolicyRequest{
		UserID:                 adminID,
		SlotGranularityMinutes: ptr.Ptr(20),
	})
	require.NoError(t, err)

	// Указанное поле обновлено, остальные унаследованы от действующей политики
	assert.Equal(t, 20, resp.SlotGranularityMinutes)
	assert.Equal(t, 90, resp.CancellationCutoffMinutes)
	assert.Equal(t, 15, resp.MinBookingNoticeMinutes)
	assert.Equal(t, 14, resp.AdvanceBookingDays)

	// Сохранена персональная политика барбера
	require.NotNil(t, repo.upserted)
	require.NotNil(t, repo.upserted.BarberID)
	assert.Equal(t, int64(3), *repo.upserted.BarberID)
}

func TestUpdate_FromDefaults(t *testing.T) {
	repo := &fakePolicyRepo{effectiveErr: policyRepoStorage.ErrPolicyNotFound}
	svc := newTestService(repo)

	resp, err := svc.Update(context.Background(), 3, &models.UpdatePolicyRequest{
		UserID:             adminID,
		AdvanceBookingDays: ptr.Ptr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.AdvanceBookingDays)
	assert.Equal(t, domain.DefaultSlotGranularityMinutes, resp.SlotGranularityMinutes)
}

func TestUpdate_NonAdminDenied(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), 3, &models.UpdatePolicyRequest{
		UserID:                 regularID,
		SlotGranularityMinutes: ptr.Ptr(20),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Nil(t, repo.upserted)
}

func TestUpdate_ValidationBounds(t *testing.T) {
	repo := &fakePolicyRepo{effectiveErr: policyRepoStorage.ErrPolicyNotFound}
	svc := newTestService(repo)

	cases := []struct {
		name string
		req  *models.UpdatePolicyRequest
	}{
		{"granularity too small", &models.UpdatePolicyRequest{UserID: adminID, SlotGranularityMinutes: ptr.Ptr(domain.MinSlotGranularityMinutes - 1)}},
		{"granularity too large", &models.UpdatePolicyRequest{UserID: adminID, SlotGranularityMinutes: ptr.Ptr(domain.MaxSlotGranularityMinutes + 1)}},
		{"negative cutoff", &models.UpdatePolicyRequest{UserID: adminID, CancellationCutoffMinutes: ptr.Ptr(-1)}},
		{"cutoff too large", &models.UpdatePolicyRequest{UserID: adminID, CancellationCutoffMinutes: ptr.Ptr(domain.MaxCancellationCutoffMinutes + 1)}},
		{"negative notice", &models.UpdatePolicyRequest{UserID: adminID, MinBookingNoticeMinutes: ptr.Ptr(-1)}},
		{"advance days too large", &models.UpdatePolicyRequest{UserID: adminID, AdvanceBookingDays: ptr.Ptr(domain.MaxAdvanceBookingDays + 1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), 3, tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdate_BarberNotFound(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := NewService(repo, &fakeCatalogClient{err: catalogservice.ErrBarberNotFound}, &fakeIdentityClient{}, nopLogger{})

	_, err := svc.Update(context.Background(), 99, &models.UpdatePolicyRequest{
		UserID:                 adminID,
		SlotGranularityMinutes: ptr.Ptr(20),
	})
	assert.ErrorIs(t, err, ErrBarberNotFound)
}

// Delete

func TestDelete_AdminOnly(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 3, regularID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = svc.Delete(context.Background(), 3, adminID)
	require.NoError(t, err)
	require.NotNil(t, repo.deleted)
	assert.Equal(t, int64(3), *repo.deleted)
}

func TestDelete_NotFound(t *testing.T) {
	repo := &fakePolicyRepo{deleteErr: policyRepoStorage.ErrPolicyNotFound}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 3, adminID)
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}
