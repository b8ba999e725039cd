package parse

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gocarina/gocsv"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/storage"
)

type CalendarCSV struct {
	ServiceID string `csv:"service_id"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
}

func weekdayBit(day time.Weekday, flag int8) (int8, bool) {
	if flag != 0 && flag != 1 {
		return 0, false
	}
	if flag == 0 {
		return 0, true
	}
	return 1 << day, true
}

// ParseCalendar returns the set of known service IDs.
func ParseCalendar(writer storage.FeedWriter, data io.Reader, log *slog.Logger) (map[string]bool, error) {
	services := map[string]bool{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(c *CalendarCSV) error {
		row++

		if c.ServiceID == "" || services[c.ServiceID] {
			log.Warn("skipping malformed calendar row", "row", row, "reason", "missing or duplicate service_id")
			return nil
		}

		var weekday int8
		for day, flag := range map[time.Weekday]int8{
			time.Monday:    c.Monday,
			time.Tuesday:   c.Tuesday,
			time.Wednesday: c.Wednesday,
			time.Thursday:  c.Thursday,
			time.Friday:    c.Friday,
			time.Saturday:  c.Saturday,
			time.Sunday:    c.Sunday,
		} {
			bit, ok := weekdayBit(day, flag)
			if !ok {
				log.Warn("skipping malformed calendar row", "row", row, "reason", "invalid weekday flag", "service_id", c.ServiceID)
				return nil
			}
			weekday |= bit
		}

		if _, err := time.ParseInLocation("20060102", c.StartDate, time.UTC); err != nil {
			log.Warn("skipping malformed calendar row", "row", row, "reason", "invalid start_date", "service_id", c.ServiceID)
			return nil
		}
		if _, err := time.ParseInLocation("20060102", c.EndDate, time.UTC); err != nil {
			log.Warn("skipping malformed calendar row", "row", row, "reason", "invalid end_date", "service_id", c.ServiceID)
			return nil
		}

		services[c.ServiceID] = true
		if err := writer.WriteCalendar(model.Calendar{
			ServiceID: c.ServiceID,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
			Weekday:   weekday,
		}); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling calendar csv: %w", err)
	}

	return services, nil
}
