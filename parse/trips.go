package parse

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/storage"
)

type TripCSV struct {
	ID          string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	Headsign    string `csv:"trip_headsign"`
	ShortName   string `csv:"trip_short_name"`
	DirectionID int8   `csv:"direction_id"`
}

// ParseTrips returns the set of known trip IDs. A trip referencing an
// unknown route_id or service_id is skipped — per spec, one missing
// service silently removes its trips from search rather than failing
// the load.
func ParseTrips(writer storage.FeedWriter, data io.Reader, routes map[string]bool, services map[string]bool, log *slog.Logger) (map[string]bool, error) {
	trips := map[string]bool{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(t *TripCSV) error {
		row++

		if t.ID == "" || trips[t.ID] {
			log.Warn("skipping malformed trip row", "row", row, "reason", "missing or duplicate trip_id")
			return nil
		}
		if !routes[t.RouteID] {
			log.Warn("skipping trip row", "row", row, "reason", "unknown route_id", "trip_id", t.ID, "route_id", t.RouteID)
			return nil
		}
		if !services[t.ServiceID] {
			log.Warn("skipping trip row", "row", row, "reason", "unknown service_id", "trip_id", t.ID, "service_id", t.ServiceID)
			return nil
		}
		if t.DirectionID != 0 && t.DirectionID != 1 {
			log.Warn("skipping malformed trip row", "row", row, "reason", "invalid direction_id", "trip_id", t.ID)
			return nil
		}

		trips[t.ID] = true
		if err := writer.WriteTrip(model.Trip{
			ID:          t.ID,
			RouteID:     t.RouteID,
			ServiceID:   t.ServiceID,
			Headsign:    t.Headsign,
			ShortName:   t.ShortName,
			DirectionID: t.DirectionID,
		}); err != nil {
			return fmt.Errorf("writing trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling trips csv: %w", err)
	}

	return trips, nil
}
