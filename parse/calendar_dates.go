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

type CalendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

// ParseCalendarDates returns the set of service IDs touched by at
// least one exception.
func ParseCalendarDates(writer storage.FeedWriter, data io.Reader, log *slog.Logger) (map[string]bool, error) {
	services := map[string]bool{}
	seen := map[string]bool{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(cd *CalendarDateCSV) error {
		row++

		if cd.ExceptionType != int8(model.ExceptionAdded) && cd.ExceptionType != int8(model.ExceptionRemoved) {
			log.Warn("skipping malformed calendar_dates row", "row", row, "reason", "invalid exception_type", "service_id", cd.ServiceID)
			return nil
		}
		if _, err := time.ParseInLocation("20060102", cd.Date, time.UTC); err != nil {
			log.Warn("skipping malformed calendar_dates row", "row", row, "reason", "invalid date", "service_id", cd.ServiceID)
			return nil
		}

		key := cd.Date + "-" + cd.ServiceID
		if seen[key] {
			log.Warn("skipping malformed calendar_dates row", "row", row, "reason", "duplicate service/date", "service_id", cd.ServiceID)
			return nil
		}
		seen[key] = true
		services[cd.ServiceID] = true

		if err := writer.WriteCalendarException(model.CalendarException{
			ServiceID: cd.ServiceID,
			Date:      cd.Date,
			Kind:      model.ExceptionKind(cd.ExceptionType),
		}); err != nil {
			return fmt.Errorf("writing calendar_dates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	return services, nil
}
