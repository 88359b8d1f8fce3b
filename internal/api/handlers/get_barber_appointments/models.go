package get_barber_appointments

import (
	"net/url"
	"strconv"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/service/appointments/models"
)

// ParseQuery собирает запрос сервиса из query-параметров
// Поддерживаемые параметры: date (YYYY-MM-DD, расписание на один день),
// startDate и endDate (период), status, includeTerminal (bool)
func ParseQuery(query url.Values, barberID int64, userID string) (*models.GetBarberAppointmentsRequest, error) {
	req := &models.GetBarberAppointmentsRequest{
		UserID:   userID,
		BarberID: barberID,
	}

	// date - сокращение для периода из одного дня
	if s := query.Get("date"); s != "" {
		date, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
		req.EndDate = &date
	}

	if s := query.Get("startDate"); s != "" {
		startDate, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, err
		}
		req.StartDate = &startDate
	}

	if s := query.Get("endDate"); s != "" {
		endDate, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, err
		}
		req.EndDate = &endDate
	}

	if s := query.Get("status"); s != "" {
		req.Status = &s
	}

	if s := query.Get("includeTerminal"); s != "" {
		includeTerminal, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		req.IncludeTerminal = includeTerminal
	}

	return req, nil
}
