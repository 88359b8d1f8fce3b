package update_policy

import "github.com/sharpcut/booking-service/internal/service/policy/models"

// UpdatePolicyRequest HTTP request model
// Все поля опциональны - обновляются только переданные значения
type UpdatePolicyRequest struct {
	SlotGranularityMinutes    *int `json:"slotGranularityMinutes,omitempty"`
	CancellationCutoffMinutes *int `json:"cancellationCutoffMinutes,omitempty"`
	MinBookingNoticeMinutes   *int `json:"minBookingNoticeMinutes,omitempty"`
	AdvanceBookingDays        *int `json:"advanceBookingDays,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdatePolicyRequest) ToServiceRequest(userID string) *models.UpdatePolicyRequest {
	return &models.UpdatePolicyRequest{
		UserID:                    userID,
		SlotGranularityMinutes:    r.SlotGranularityMinutes,
		CancellationCutoffMinutes: r.CancellationCutoffMinutes,
		MinBookingNoticeMinutes:   r.MinBookingNoticeMinutes,
		AdvanceBookingDays:        r.AdvanceBookingDays,
	}
}
