package catalogservice

// Barber модель барбера из CatalogService
type Barber struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Location     string         `json:"location"`
	Specialty    *string        `json:"specialty,omitempty"`
	Rating       *float64       `json:"rating,omitempty"`
	WorkingHours WeeklySchedule `json:"working_hours"`
}

// Service модель услуги из CatalogService
type Service struct {
	ID              int64   `json:"id"`
	BarberID        int64   `json:"barber_id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	IsPopular       bool    `json:"is_popular"`
}

// WeeklySchedule недельное расписание работы барбера
type WeeklySchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// DaySchedule расписание работы на один день недели
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "09:00"
	CloseTime *string `json:"close_time,omitempty"` // "17:00"
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
