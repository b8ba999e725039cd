package parse

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/storage"
)

type StopCSV struct {
	ID            string  `csv:"stop_id"`
	Code          string  `csv:"stop_code"`
	Name          string  `csv:"stop_name"`
	Lat           float64 `csv:"stop_lat"`
	Lon           float64 `csv:"stop_lon"`
	LocationType  int8    `csv:"location_type"`
	ParentStation string  `csv:"parent_station"`
	PlatformCode  string  `csv:"platform_code"`
}

// ParseStops returns the set of known stop IDs. Rows with no stop_id,
// a duplicate stop_id, or (for ordinary stops/stations) a missing
// name/coordinate are skipped with a logged warning.
func ParseStops(writer storage.FeedWriter, data io.Reader, log *slog.Logger) (map[string]bool, error) {
	stopIDs := map[string]bool{}
	parentRef := map[string]string{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(st *StopCSV) error {
		row++

		if st.ID == "" {
			log.Warn("skipping malformed stop row", "row", row, "reason", "empty stop_id")
			return nil
		}
		if stopIDs[st.ID] {
			log.Warn("skipping malformed stop row", "row", row, "reason", "duplicate stop_id", "stop_id", st.ID)
			return nil
		}

		locationType := model.LocationType(st.LocationType)
		if locationType != model.LocationTypeGenericNode && locationType != model.LocationTypeBoardingArea {
			if st.Name == "" {
				log.Warn("skipping malformed stop row", "row", row, "reason", "empty stop_name", "stop_id", st.ID)
				return nil
			}
			if st.Lat == 0 && st.Lon == 0 {
				log.Warn("skipping malformed stop row", "row", row, "reason", "missing coordinates", "stop_id", st.ID)
				return nil
			}
		}

		stopIDs[st.ID] = true
		if st.ParentStation != "" {
			parentRef[st.ID] = st.ParentStation
		}

		if err := writer.WriteStop(model.Stop{
			ID:            st.ID,
			Code:          st.Code,
			Name:          st.Name,
			Lat:           st.Lat,
			Lon:           st.Lon,
			LocationType:  locationType,
			ParentStation: st.ParentStation,
			PlatformCode:  st.PlatformCode,
		}); err != nil {
			return fmt.Errorf("writing stop '%s': %w", st.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling stops csv: %w", err)
	}

	// A stop referencing an unknown parent_station is tolerated: the
	// reference is simply dropped from routing's point of view, it
	// never blocks the load.
	for stopID, parentID := range parentRef {
		if !stopIDs[parentID] {
			log.Warn("stop references unknown parent_station", "stop_id", stopID, "parent_station", parentID)
		}
	}

	if len(stopIDs) == 0 {
		return nil, fmt.Errorf("%w: no usable stop records", ErrDatasetIncomplete)
	}

	return stopIDs, nil
}
