package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/pkg/ptr"
	"github.com/sharpcut/booking-service/pkg/types"
)

func openDay(open, close string) catalogservice.DaySchedule {
	return catalogservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  ptr.Ptr(open),
		CloseTime: ptr.Ptr(close),
	}
}

func TestGenerateCandidateStarts_FullDay(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	// 09:00-17:00, услуга 60 минут, шаг 60 минут: последний старт 16:00
	starts, err := generateCandidateStarts(openDay("09:00", "17:00"), 60, 60, date, now, 30)
	require.NoError(t, err)

	require.Len(t, starts, 8)
	assert.Equal(t, types.TimeString("09:00"), starts[0])
	assert.Equal(t, types.TimeString("16:00"), starts[7])
}

func TestGenerateCandidateStarts_ServiceMustFitBeforeClose(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	// 09:00-10:00, услуга 45 минут, шаг 15: старты 09:00 и 09:15,
	// с 09:30 услуга уже не помещается до закрытия
	starts, err := generateCandidateStarts(openDay("09:00", "10:00"), 15, 45, date, now, 0)
	require.NoError(t, err)

	require.Len(t, starts, 2)
	assert.Equal(t, types.TimeString("09:00"), starts[0])
	assert.Equal(t, types.TimeString("09:15"), starts[1])
}

func TestGenerateCandidateStarts_PastDate(t *testing.T) {
	date := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	starts, err := generateCandidateStarts(openDay("09:00", "17:00"), 30, 30, date, now, 0)
	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestGenerateCandidateStarts_ClosedDay(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)

	starts, err := generateCandidateStarts(catalogservice.DaySchedule{IsOpen: false}, 30, 30, date, now, 0)
	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestGenerateCandidateStarts_TodayMinNoticeFilter(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	// Сегодня 13:40, минимальное время до записи 30 минут:
	// первый допустимый старт начиная с 14:10
	now := time.Date(2026, 9, 15, 13, 40, 0, 0, time.UTC)

	starts, err := generateCandidateStarts(openDay("09:00", "17:00"), 60, 60, date, now, 30)
	require.NoError(t, err)

	require.Len(t, starts, 2)
	assert.Equal(t, types.TimeString("15:00"), starts[0])
	assert.Equal(t, types.TimeString("16:00"), starts[1])
}

func TestOverlapsAnyAppointment(t *testing.T) {
	appointments := []*domain.Appointment{
		{StartTime: types.TimeString("11:20"), DurationMinutes: 20, Status: domain.StatusUpcoming},
	}

	// Кандидат 11:30-12:00 пересекается с 11:20-11:40
	assert.True(t, overlapsAnyAppointment(types.TimeString("11:30"), 30, appointments))

	// Кандидат 11:40-12:10 граничит с 11:20-11:40: нет пересечения
	assert.False(t, overlapsAnyAppointment(types.TimeString("11:40"), 30, appointments))

	// Кандидат 10:50-11:20 граничит с началом записи: нет пересечения
	assert.False(t, overlapsAnyAppointment(types.TimeString("10:50"), 30, appointments))
}

func TestOverlapsAnyAppointment_TerminalDoesNotBlock(t *testing.T) {
	appointments := []*domain.Appointment{
		{StartTime: types.TimeString("11:00"), DurationMinutes: 60, Status: domain.StatusCancelled},
		{StartTime: types.TimeString("11:00"), DurationMinutes: 60, Status: domain.StatusCompleted},
	}

	assert.False(t, overlapsAnyAppointment(types.TimeString("11:00"), 60, appointments))
}

func TestFilterFreeSlots(t *testing.T) {
	starts := []types.TimeString{"10:00", "10:15", "10:30", "10:45"}
	appointments := []*domain.Appointment{
		{StartTime: types.TimeString("10:15"), DurationMinutes: 30, Status: domain.StatusUpcoming},
	}

	// Занято 10:15-10:45: кандидаты 10:00-10:30 и 10:30-11:00 пересекаются,
	// свободен только 10:45
	slots := filterFreeSlots(starts, 30, appointments)

	require.Len(t, slots, 1)
	assert.Equal(t, types.TimeString("10:45"), slots[0].StartTime)
	assert.Equal(t, types.TimeString("11:15"), slots[0].EndTime)
	assert.Equal(t, 30, slots[0].DurationMinutes)
}
