package models

import (
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
)

// Request модели

// UpdatePolicyRequest запрос на обновление политики бронирования
// Все поля опциональны - обновляются только переданные значения
type UpdatePolicyRequest struct {
	UserID                    string `json:"userId"`
	SlotGranularityMinutes    *int   `json:"slotGranularityMinutes,omitempty"`
	CancellationCutoffMinutes *int   `json:"cancellationCutoffMinutes,omitempty"`
	MinBookingNoticeMinutes   *int   `json:"minBookingNoticeMinutes,omitempty"`
	AdvanceBookingDays        *int   `json:"advanceBookingDays,omitempty"`
}

// ApplyToPolicy применяет обновления к существующей политике
// Обновляются только непустые (not nil) поля из request
func (r *UpdatePolicyRequest) ApplyToPolicy(policy *domain.BookingPolicy) {
	if r.SlotGranularityMinutes != nil {
		policy.SlotGranularityMinutes = *r.SlotGranularityMinutes
	}
	if r.CancellationCutoffMinutes != nil {
		policy.CancellationCutoffMinutes = *r.CancellationCutoffMinutes
	}
	if r.MinBookingNoticeMinutes != nil {
		policy.MinBookingNoticeMinutes = *r.MinBookingNoticeMinutes
	}
	if r.AdvanceBookingDays != nil {
		policy.AdvanceBookingDays = *r.AdvanceBookingDays
	}
}

// Response модели

// PolicyResponse ответ с данными политики бронирования
type PolicyResponse struct {
	BarberID                  *int64     `json:"barberId,omitempty"` // nil = общая политика салона
	SlotGranularityMinutes    int        `json:"slotGranularityMinutes"`
	CancellationCutoffMinutes int        `json:"cancellationCutoffMinutes"`
	MinBookingNoticeMinutes   int        `json:"minBookingNoticeMinutes"`
	AdvanceBookingDays        int        `json:"advanceBookingDays"`
	CreatedAt                 *time.Time `json:"createdAt,omitempty"`
	UpdatedAt                 *time.Time `json:"updatedAt,omitempty"`
}

// Методы конвертации

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.BookingPolicy) *PolicyResponse {
	if p == nil {
		return nil
	}

	resp := &PolicyResponse{
		BarberID:                  p.BarberID,
		SlotGranularityMinutes:    p.SlotGranularityMinutes,
		CancellationCutoffMinutes: p.CancellationCutoffMinutes,
		MinBookingNoticeMinutes:   p.MinBookingNoticeMinutes,
		AdvanceBookingDays:        p.AdvanceBookingDays,
	}

	// Дефолтная политика не хранится в БД и не имеет временных меток
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = &p.CreatedAt
		resp.UpdatedAt = &p.UpdatedAt
	}

	return resp
}
