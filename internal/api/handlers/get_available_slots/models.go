package get_available_slots

import (
	"github.com/sharpcut/booking-service/internal/domain"
	getAvailableSlots "github.com/sharpcut/booking-service/internal/usecase/get_available_slots"
)

// SlotResponse HTTP model одного доступного интервала
type SlotResponse struct {
	StartTime       string `json:"startTime"` // "10:00"
	EndTime         string `json:"endTime"`   // "10:30"
	DurationMinutes int    `json:"durationMinutes"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date      string         `json:"date"` // "2026-09-15"
	BarberID  int64          `json:"barberId"`
	ServiceID int64          `json:"serviceId"`
	Slots     []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = SlotResponse{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			DurationMinutes: slot.DurationMinutes,
		}
	}

	return &AvailableSlotsResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		BarberID:  resp.BarberID,
		ServiceID: resp.ServiceID,
		Slots:     slots,
	}
}
