package parse

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/storage"
)

type StopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  uint32 `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	Headsign      string `csv:"stop_headsign"`
}

// parseGTFSTime turns "HH:MM:SS" (hours may exceed 24, for
// after-midnight service on the same service day) into seconds since
// the service day's midnight.
func parseGTFSTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("found %d parts in '%s'", len(parts), s)
	}

	hms := [3]int{}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("non-integer component in '%s'", s)
		}
		hms[i] = v
	}
	if hms[0] < 0 {
		return 0, fmt.Errorf("negative hour in '%s'", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, fmt.Errorf("invalid minute in '%s'", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid second in '%s'", s)
	}

	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}

// ParseStopTimes loads stop_times.txt. A row referencing an unknown
// trip_id or stop_id, or with an unparsable time, is skipped with a
// logged warning; the trip simply ends up with fewer visits. Rows
// that would violate the strictly-increasing stop_sequence invariant
// for their trip are skipped as a group once detected, since a
// corrupted sequence cannot be safely reconstructed.
func ParseStopTimes(writer storage.FeedWriter, data io.Reader, trips map[string]bool, stops map[string]bool, log *slog.Logger) error {
	byTrip := map[string][]model.StopTime{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(st *StopTimeCSV) error {
		row++

		if !trips[st.TripID] {
			log.Warn("skipping stop_time row", "row", row, "reason", "unknown trip_id", "trip_id", st.TripID)
			return nil
		}
		if st.StopID == "" || !stops[st.StopID] {
			log.Warn("skipping stop_time row", "row", row, "reason", "unknown stop_id", "stop_id", st.StopID)
			return nil
		}

		arrival, err := parseGTFSTime(st.ArrivalTime)
		if err != nil {
			log.Warn("skipping malformed stop_time row", "row", row, "reason", errors.Wrap(err, "parsing arrival_time").Error())
			return nil
		}
		departure, err := parseGTFSTime(st.DepartureTime)
		if err != nil {
			log.Warn("skipping malformed stop_time row", "row", row, "reason", errors.Wrap(err, "parsing departure_time").Error())
			return nil
		}
		if departure < arrival {
			log.Warn("skipping malformed stop_time row", "row", row, "reason", "departure precedes arrival", "trip_id", st.TripID)
			return nil
		}

		byTrip[st.TripID] = append(byTrip[st.TripID], model.StopTime{
			TripID:       st.TripID,
			StopID:       st.StopID,
			Headsign:     st.Headsign,
			StopSequence: st.StopSequence,
			Arrival:      arrival,
			Departure:    departure,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("unmarshaling stop_times csv: %w", err)
	}

	for tripID, visits := range byTrip {
		sort.Slice(visits, func(i, j int) bool {
			return visits[i].StopSequence < visits[j].StopSequence
		})

		seen := map[uint32]bool{}
		ok := true
		prevTime := -1
		for _, v := range visits {
			if seen[v.StopSequence] {
				ok = false
				break
			}
			seen[v.StopSequence] = true
			if v.Arrival < prevTime {
				ok = false
				break
			}
			prevTime = v.Departure
		}
		if !ok {
			log.Warn("dropping trip with corrupted stop_times sequence", "trip_id", tripID)
			continue
		}

		for _, v := range visits {
			if err := writer.WriteStopTime(v); err != nil {
				return fmt.Errorf("writing stop_time for trip '%s': %w", tripID, err)
			}
		}
	}

	return nil
}
