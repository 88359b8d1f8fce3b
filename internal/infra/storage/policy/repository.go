package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/pkg/dbmetrics"
	"github.com/sharpcut/booking-service/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var policyColumns = []string{
	"id",
	"barber_id",
	"slot_granularity_minutes",
	"cancellation_cutoff_minutes",
	"min_booking_notice_minutes",
	"advance_booking_days",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с политиками бронирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик бронирования
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBarber получает политику для конкретного барбера (или общую, если barberID nil)
func (r *Repository) GetByBarber(ctx context.Context, barberID *int64) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(policyColumns...).
		From("booking_policies")

	if barberID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"barber_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"barber_id": *barberID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBarber - build select query: %v", ErrBuildQuery, err)
	}

	var policy domain.BookingPolicy
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&policy.ID,
		&policy.BarberID,
		&policy.SlotGranularityMinutes,
		&policy.CancellationCutoffMinutes,
		&policy.MinBookingNoticeMinutes,
		&policy.AdvanceBookingDays,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBarber - scan policy: %w", ErrScanRow, err)
	}

	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return &policy, nil
}

// GetEffective получает действующую политику для барбера с учетом иерархии.
// Приоритет применения:
// 1. Персональная политика барбера (barber_id = barberID)
// 2. Общая политика салона (barber_id IS NULL)
//
// Если политика не найдена ни на одном уровне, возвращает ErrPolicyNotFound;
// вызывающая сторона подставляет domain.DefaultBookingPolicy().
func (r *Repository) GetEffective(ctx context.Context, barberID int64) (*domain.BookingPolicy, error) {
	// 1. Пробуем персональную политику барбера
	policy, err := r.GetByBarber(ctx, &barberID)
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, ErrPolicyNotFound) {
		return nil, fmt.Errorf("%w: GetEffective - barber level: %w", ErrExecQuery, err)
	}

	// 2. Пробуем общую политику салона
	policy, err = r.GetByBarber(ctx, nil)
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, ErrPolicyNotFound) {
		return nil, fmt.Errorf("%w: GetEffective - shop level: %w", ErrExecQuery, err)
	}

	return nil, ErrPolicyNotFound
}

// Upsert создает или обновляет политику для барбера (или общую, если barberID nil)
func (r *Repository) Upsert(ctx context.Context, policy *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// ON CONFLICT работает через частичные уникальные индексы:
	// отдельный для barber_id IS NULL и отдельный для barber_id IS NOT NULL
	conflictTarget := "(barber_id) WHERE barber_id IS NOT NULL"
	if policy.BarberID == nil {
		conflictTarget = "((barber_id IS NULL)) WHERE barber_id IS NULL"
	}

	query, args, err := psqlbuilder.Insert("booking_policies").
		Columns(
			"barber_id",
			"slot_granularity_minutes",
			"cancellation_cutoff_minutes",
			"min_booking_notice_minutes",
			"advance_booking_days",
		).
		Values(
			policy.BarberID,
			policy.SlotGranularityMinutes,
			policy.CancellationCutoffMinutes,
			policy.MinBookingNoticeMinutes,
			policy.AdvanceBookingDays,
		).
		Suffix(fmt.Sprintf(`ON CONFLICT %s DO UPDATE SET
			slot_granularity_minutes = EXCLUDED.slot_granularity_minutes,
			cancellation_cutoff_minutes = EXCLUDED.cancellation_cutoff_minutes,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`, conflictTarget)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&policy.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return policy, nil
}

// Delete удаляет политику барбера (возврат к общей политике салона)
func (r *Repository) Delete(ctx context.Context, barberID *int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete("booking_policies")

	if barberID == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"barber_id": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"barber_id": *barberID})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPolicyNotFound
	}

	return nil
}
