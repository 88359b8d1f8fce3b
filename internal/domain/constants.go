package domain

// Default booking policy values
const (
	DefaultSlotGranularityMinutes    = 15
	DefaultCancellationCutoffMinutes = 60 // 1 hour before start
	DefaultMinBookingNoticeMinutes   = 30
	DefaultAdvanceBookingDays        = 0 // 0 = unlimited
)

// Business validation constants
const (
	MinSlotGranularityMinutes    = 5
	MaxSlotGranularityMinutes    = 240
	MinCancellationCutoffMinutes = 0
	MaxCancellationCutoffMinutes = 10080 // 1 week
	MinBookingNoticeMinutes      = 0
	MaxBookingNoticeMinutes      = 10080 // 1 week
	MinAdvanceBookingDays        = 0
	MaxAdvanceBookingDays        = 365 // 1 year
	MaxNotesLength               = 500
	MaxCancellationReasonLength  = 500
	MaxIdempotencyKeyLength      = 128
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список терминальных статусов записи.
// Используется при фильтрации занятых интервалов: терминальные записи
// не блокируют слоты.
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
}

// AllStatuses список всех допустимых статусов записи
var AllStatuses = []AppointmentStatus{
	StatusUpcoming,
	StatusCompleted,
	StatusCancelled,
}
