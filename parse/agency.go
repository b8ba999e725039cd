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

type AgencyCSV struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
}

// ParseAgency returns the set of known agency IDs. Malformed rows are
// skipped with a logged warning rather than failing the load.
func ParseAgency(writer storage.FeedWriter, data io.Reader, log *slog.Logger) (map[string]bool, error) {
	agencyIDs := map[string]bool{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(a *AgencyCSV) error {
		row++

		if a.Name == "" || a.URL == "" {
			log.Warn("skipping malformed agency row", "row", row, "reason", "missing agency_name or agency_url")
			return nil
		}
		if a.Timezone != "" {
			if _, err := time.LoadLocation(a.Timezone); err != nil {
				log.Warn("skipping malformed agency row", "row", row, "reason", "invalid agency_timezone", "tz", a.Timezone)
				return nil
			}
		}
		if agencyIDs[a.ID] {
			log.Warn("skipping malformed agency row", "row", row, "reason", "duplicate agency_id", "agency_id", a.ID)
			return nil
		}

		agencyIDs[a.ID] = true
		if err := writer.WriteAgency(model.Agency{
			ID:       a.ID,
			Name:     a.Name,
			URL:      a.URL,
			Timezone: a.Timezone,
		}); err != nil {
			return fmt.Errorf("writing agency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling agency csv: %w", err)
	}
	if len(agencyIDs) == 0 {
		return nil, fmt.Errorf("%w: no usable agency record", ErrDatasetIncomplete)
	}

	return agencyIDs, nil
}
