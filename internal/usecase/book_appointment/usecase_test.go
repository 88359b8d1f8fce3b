package book_appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpcut/booking-service/internal/domain"
	apptRepoStorage "github.com/sharpcut/booking-service/internal/infra/storage/appointment"
	policyRepoStorage "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/internal/integrations/identityservice"
	"github.com/sharpcut/booking-service/pkg/ptr"
	"github.com/sharpcut/booking-service/pkg/types"
)

const testCustomerID = "a3f1c882-0d4e-4b7a-9e15-6c2d8f4a1b35"

// Фейки для зависимостей usecase

type fakeApptRepo struct {
	appointments []*domain.Appointment
	byKey        *domain.Appointment
	byKeyErr     error
	createErr    error

	created     *domain.Appointment
	createCalls int
}

func (f *fakeApptRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *appt
	created.ID = 42
	created.CreatedAt = time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	created.UpdatedAt = created.CreatedAt
	f.created = &created
	return &created, nil
}

func (f *fakeApptRepo) GetByIdempotencyKey(_ context.Context, _ string, _ string) (*domain.Appointment, error) {
	if f.byKey != nil {
		return f.byKey, nil
	}
	if f.byKeyErr != nil {
		return nil, f.byKeyErr
	}
	return nil, apptRepoStorage.ErrAppointmentNotFound
}

func (f *fakeApptRepo) GetByBarberWithFilter(_ context.Context, _ domain.BarberAppointmentsFilter) ([]*domain.Appointment, error) {
	return f.appointments, nil
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

type fakeCatalogClient struct {
	barber     *catalogservice.Barber
	barberErr  error
	service    *catalogservice.Service
	serviceErr error
}

func (f *fakeCatalogClient) GetBarber(_ context.Context, _ int64) (*catalogservice.Barber, error) {
	if f.barberErr != nil {
		return nil, f.barberErr
	}
	return f.barber, nil
}

func (f *fakeCatalogClient) GetService(_ context.Context, _, _ int64) (*catalogservice.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	return f.service, nil
}

type fakeIdentityClient struct {
	err error
}

func (f *fakeIdentityClient) GetUser(_ context.Context, userID string) (*identityservice.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &identityservice.User{ID: userID}, nil
}

// fakeTxManager выполняет функцию без настоящей транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type txCtxKey struct{}

// markingTxManager помечает контекст замыкания: репозиторий-фейк может
// отличить обращение внутри транзакции от обращения снаружи
type markingTxManager struct{}

func (markingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txCtxKey{}, true))
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

func testBarber() *catalogservice.Barber {
	day := catalogservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  ptr.Ptr("09:00"),
		CloseTime: ptr.Ptr("17:00"),
	}
	return &catalogservice.Barber{
		ID:   1,
		Name: "Иван",
		WorkingHours: catalogservice.WeeklySchedule{
			Monday:    day,
			Tuesday:   day,
			Wednesday: day,
			Thursday:  day,
			Friday:    day,
			Saturday:  day,
			Sunday:    catalogservice.DaySchedule{IsOpen: false},
		},
	}
}

func testService() *catalogservice.Service {
	return &catalogservice.Service{
		ID:              10,
		BarberID:        1,
		Name:            "Стрижка",
		Price:           1500,
		DurationMinutes: 30,
	}
}

func testPolicy() *domain.BookingPolicy {
	return &domain.BookingPolicy{
		SlotGranularityMinutes:    30,
		CancellationCutoffMinutes: 60,
		MinBookingNoticeMinutes:   30,
		AdvanceBookingDays:        0,
	}
}

func newTestUseCase(apptRepo *fakeApptRepo, polRepo *fakePolicyRepo, catalog *fakeCatalogClient, identity *fakeIdentityClient, now time.Time) *UseCase {
	uc := NewUseCase(apptRepo, polRepo, catalog, identity, fakeTxManager{}, nopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}
	return uc
}

func validRequest() *Request {
	// 2026-09-15 - вторник
	return &Request{
		CustomerID: testCustomerID,
		BarberID:   1,
		ServiceID:  10,
		Date:       time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  types.TimeString("10:00"),
	}
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	apptRepo := &fakeApptRepo{}
	uc := newTestUseCase(apptRepo, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, testCustomerID, resp.CustomerID)
	assert.Equal(t, string(domain.StatusUpcoming), resp.Status)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("10:30"), resp.EndTime)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.False(t, resp.Replayed)

	// Данные услуги денормализованы на момент бронирования
	assert.Equal(t, "Стрижка", resp.ServiceName)
	assert.Equal(t, 1500.0, resp.ServicePrice)
	assert.NotEmpty(t, resp.ConfirmationCode)

	require.NotNil(t, apptRepo.created)
	assert.Equal(t, domain.StatusUpcoming, apptRepo.created.Status)
}

func TestExecute_SlotTaken(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	// Запись 10:15-10:45 пересекается с запрошенным интервалом 10:00-10:30
	apptRepo := &fakeApptRepo{appointments: []*domain.Appointment{
		{StartTime: types.TimeString("10:15"), DurationMinutes: 30, Status: domain.StatusUpcoming},
	}}
	uc := newTestUseCase(apptRepo, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Zero(t, apptRepo.createCalls)
}

func TestExecute_AdjacentAppointmentDoesNotConflict(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	// Запись 09:30-10:00 заканчивается ровно в начале запрошенного интервала
	apptRepo := &fakeApptRepo{appointments: []*domain.Appointment{
		{StartTime: types.TimeString("09:30"), DurationMinutes: 30, Status: domain.StatusUpcoming},
	}}
	uc := newTestUseCase(apptRepo, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
}

func TestExecute_CancelledAppointmentDoesNotBlock(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	apptRepo := &fakeApptRepo{appointments: []*domain.Appointment{
		{StartTime: types.TimeString("10:00"), DurationMinutes: 30, Status: domain.StatusCancelled},
	}}
	uc := newTestUseCase(apptRepo, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
}

func TestExecute_IdempotencyReplay(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	existing := &domain.Appointment{
		ID:              7,
		CustomerID:      testCustomerID,
		BarberID:        1,
		ServiceID:       10,
		AppointmentDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 30,
		Status:          domain.StatusUpcoming,
	}

	apptRepo := &fakeApptRepo{byKey: existing}
	uc := newTestUseCase(apptRepo, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	req := validRequest()
	req.IdempotencyKey = ptr.Ptr("req-123")

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Повторный запрос возвращает исходную запись без создания дубликата
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(7), resp.ID)
	assert.Zero(t, apptRepo.createCalls)
}

func TestExecute_IdempotencyConflictOnCreate(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	existing := &domain.Appointment{
		ID:              7,
		CustomerID:      testCustomerID,
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 30,
		Status:          domain.StatusUpcoming,
	}

	// GetByIdempotencyKey сначала не находит запись, Create падает на
	// уникальном индексе: конкурентный запрос с тем же ключом успел раньше
	apptRepo := &fakeApptRepo{createErr: apptRepoStorage.ErrDuplicateIdempotencyKey}
	uc := newTestUseCase(apptRepo, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)
	uc.txManager = markingTxManager{}
	uc.apptRepo = &conflictingApptRepo{inner: apptRepo, existing: existing}

	req := validRequest()
	req.IdempotencyKey = ptr.Ptr("req-123")

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(7), resp.ID)
}

// conflictingApptRepo имитирует гонку по idempotency-ключу с семантикой
// PostgreSQL: до Create записи нет, после неудачного INSERT транзакция
// прервана и любое чтение внутри неё падает. Исходную запись видно
// только при чтении вне транзакции
type conflictingApptRepo struct {
	inner       *fakeApptRepo
	existing    *domain.Appointment
	createTried bool
}

func (r *conflictingApptRepo) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.createTried = true
	return r.inner.Create(ctx, appt)
}

func (r *conflictingApptRepo) GetByIdempotencyKey(ctx context.Context, customerID string, key string) (*domain.Appointment, error) {
	inTx := ctx.Value(txCtxKey{}) != nil
	if inTx {
		if r.createTried {
			return nil, fmt.Errorf("%w: GetByIdempotencyKey - execute query: current transaction is aborted (25P02)",
				apptRepoStorage.ErrExecQuery)
		}
		return nil, apptRepoStorage.ErrAppointmentNotFound
	}
	if r.createTried {
		return r.existing, nil
	}
	return nil, apptRepoStorage.ErrAppointmentNotFound
}

func (r *conflictingApptRepo) GetByBarberWithFilter(ctx context.Context, filter domain.BarberAppointmentsFilter) ([]*domain.Appointment, error) {
	return r.inner.GetByBarberWithFilter(ctx, filter)
}

func TestExecute_TooLateToBook(t *testing.T) {
	// Запись на сегодня 10:00 при текущем времени 09:40 и минимальном
	// уведомлении 30 минут
	now := time.Date(2026, 9, 15, 9, 40, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrTooLateToBook)
}

func TestExecute_PastDate(t *testing.T) {
	now := time.Date(2026, 9, 16, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_BarberClosed(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	req := validRequest()
	// 2026-09-20 - воскресенье
	req.Date = time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBarberClosed)
}

func TestExecute_MisalignedStartTime(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	req := validRequest()
	// 10:05 не попадает на 30-минутную сетку от 09:00
	req.StartTime = types.TimeString("10:05")

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_ServiceEndsAfterClose(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	req := validRequest()
	// 16:30 + 30 минут = 17:00 умещается, 17:00 уже нет
	req.StartTime = types.TimeString("17:00")

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_ServiceNotOfferedByBarber(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	service := testService()
	service.BarberID = 2

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: service},
		&fakeIdentityClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceNotOfferedByBarber)
}

func TestExecute_UserNotFound(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{err: identityservice.ErrUserNotFound}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExecute_BarberNotFound(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{policy: testPolicy()},
		&fakeCatalogClient{barberErr: catalogservice.ErrBarberNotFound},
		&fakeIdentityClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBarberNotFound)
}

func TestExecute_DefaultPolicyWhenNoneStored(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{err: policyRepoStorage.ErrPolicyNotFound},
		&fakeCatalogClient{barber: testBarber(), service: testService()},
		&fakeIdentityClient{}, now)

	// Дефолтная сетка 15 минут, 10:00 выровнено от 09:00
	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeApptRepo{}, &fakePolicyRepo{}, &fakeCatalogClient{}, &fakeIdentityClient{}, now)

	req := validRequest()
	req.CustomerID = ""
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.StartTime = types.TimeString("25:99")
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	longNotes := make([]byte, domain.MaxNotesLength+1)
	for i := range longNotes {
		longNotes[i] = 'x'
	}
	req.Notes = ptr.Ptr(string(longNotes))
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.IdempotencyKey = ptr.Ptr("")
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
