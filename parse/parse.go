// Package parse loads one mode's static feed — a directory of the
// canonical GTFS-style tabular files — into a storage.FeedWriter.
//
// Required files (agency.txt, routes.txt, stops.txt, trips.txt,
// stop_times.txt, and at least one of calendar.txt/calendar_dates.txt)
// missing entirely fail the whole load with ErrDatasetIncomplete.
// Individual malformed rows within a present file are skipped with a
// logged warning and do not fail the load: public feeds routinely
// carry a handful of bad rows and the planner must stay queryable.
package parse

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"tidbyt.dev/transit/storage"
)

// ErrDatasetIncomplete is returned when a required static feed file is
// absent from the directory.
var ErrDatasetIncomplete = errors.New("dataset incomplete")

func init() {
	// LazyCSVReader survives sloppy quoting in the wild; bom.NewReader
	// strips a leading UTF-8 BOM if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})
}

// ParseStatic parses one mode's feed directory into writer. log
// receives one warning per skipped row; pass slog.Default() if the
// caller has no preference.
func ParseStatic(dir string, writer storage.FeedWriter, log *slog.Logger) error {
	log = log.With("component", "parse", "dir", dir)

	required := map[string]bool{
		"agency.txt":     true,
		"routes.txt":     true,
		"stops.txt":      true,
		"trips.txt":      true,
		"stop_times.txt": true,
	}
	for name := range required {
		if !fileExists(filepath.Join(dir, name)) {
			return fmt.Errorf("%w: missing %s in %s", ErrDatasetIncomplete, name, dir)
		}
	}
	hasCalendar := fileExists(filepath.Join(dir, "calendar.txt"))
	hasCalendarDates := fileExists(filepath.Join(dir, "calendar_dates.txt"))
	if !hasCalendar && !hasCalendarDates {
		return fmt.Errorf("%w: missing calendar.txt and calendar_dates.txt in %s", ErrDatasetIncomplete, dir)
	}

	agencyIDs, err := open(dir, "agency.txt", func(r io.Reader) (map[string]bool, error) {
		return ParseAgency(writer, r, log)
	})
	if err != nil {
		return fmt.Errorf("agency.txt: %w", err)
	}

	routeIDs, err := open(dir, "routes.txt", func(r io.Reader) (map[string]bool, error) {
		return ParseRoutes(writer, r, agencyIDs, log)
	})
	if err != nil {
		return fmt.Errorf("routes.txt: %w", err)
	}

	services := map[string]bool{}
	if hasCalendar {
		services, err = open(dir, "calendar.txt", func(r io.Reader) (map[string]bool, error) {
			return ParseCalendar(writer, r, log)
		})
		if err != nil {
			return fmt.Errorf("calendar.txt: %w", err)
		}
	}
	if hasCalendarDates {
		cdServices, err := open(dir, "calendar_dates.txt", func(r io.Reader) (map[string]bool, error) {
			return ParseCalendarDates(writer, r, log)
		})
		if err != nil {
			return fmt.Errorf("calendar_dates.txt: %w", err)
		}
		for id := range cdServices {
			services[id] = true
		}
	}

	tripIDs, err := open(dir, "trips.txt", func(r io.Reader) (map[string]bool, error) {
		return ParseTrips(writer, r, routeIDs, services, log)
	})
	if err != nil {
		return fmt.Errorf("trips.txt: %w", err)
	}

	stopIDs, err := open(dir, "stops.txt", func(r io.Reader) (map[string]bool, error) {
		return ParseStops(writer, r, log)
	})
	if err != nil {
		return fmt.Errorf("stops.txt: %w", err)
	}

	if err := writer.BeginStopTimes(); err != nil {
		return fmt.Errorf("beginning stop_times: %w", err)
	}
	_, err = open(dir, "stop_times.txt", func(r io.Reader) (map[string]bool, error) {
		return nil, ParseStopTimes(writer, r, tripIDs, stopIDs, log)
	})
	if err != nil {
		return fmt.Errorf("stop_times.txt: %w", err)
	}
	if err := writer.EndStopTimes(); err != nil {
		return fmt.Errorf("ending stop_times: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func open(dir, name string, parseFn func(io.Reader) (map[string]bool, error)) (map[string]bool, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseFn(f)
}
