package domain

import "time"

// BookingPolicy represents the scheduling rules applied to a barber's calendar.
// Two levels are supported:
// 1. Barber-specific (barber_id set)
// 2. Shop-wide (barber_id NULL)
// A barber-specific row overrides the shop-wide one; built-in defaults apply
// when neither exists.
type BookingPolicy struct {
	ID                        int64
	BarberID                  *int64 // NULL = shop-wide policy
	SlotGranularityMinutes    int
	CancellationCutoffMinutes int
	MinBookingNoticeMinutes   int
	AdvanceBookingDays        int // 0 = unlimited
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// IsShopWide returns true if this policy applies to every barber
func (p *BookingPolicy) IsShopWide() bool {
	return p.BarberID == nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (p *BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

// DefaultBookingPolicy возвращает политику с дефолтными значениями.
// Применяется, когда в БД нет ни персональной, ни общей политики.
func DefaultBookingPolicy() *BookingPolicy {
	return &BookingPolicy{
		SlotGranularityMinutes:    DefaultSlotGranularityMinutes,
		CancellationCutoffMinutes: DefaultCancellationCutoffMinutes,
		MinBookingNoticeMinutes:   DefaultMinBookingNoticeMinutes,
		AdvanceBookingDays:        DefaultAdvanceBookingDays,
	}
}
