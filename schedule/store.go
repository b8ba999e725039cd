// Package schedule implements the Schedule Store (C1): it loads one
// mode's static feed directory into a storage.FeedReader and exposes
// the typed lookups the rest of the planner needs.
package schedule

import (
	"log/slog"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/parse"
	"tidbyt.dev/transit/storage"
)

// Store answers stop/trip/route/calendar lookups for a single mode.
// Once Load returns, a Store is frozen: every method is safe for
// concurrent readers without further synchronization.
type Store struct {
	Mode   model.Mode
	reader storage.FeedReader
}

// Load parses dir (one mode's feed directory) and returns a frozen
// Store. Missing required files surface parse.ErrDatasetIncomplete;
// malformed individual rows are skipped and logged by the parser.
func Load(mode model.Mode, dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	feed := storage.NewMemoryFeed()
	if err := parse.ParseStatic(dir, feed, log.With("mode", string(mode))); err != nil {
		return nil, err
	}
	return &Store{Mode: mode, reader: feed}, nil
}

func (s *Store) GetStop(id string) (model.Stop, bool) { return s.reader.GetStop(id) }
func (s *Store) GetTrip(id string) (model.Trip, bool) { return s.reader.GetTrip(id) }
func (s *Store) GetRoute(id string) (model.Route, bool) {
	return s.reader.GetRoute(id)
}

// GetTripStopTimes returns a trip's visits sorted by stop_sequence.
func (s *Store) GetTripStopTimes(tripID string) []model.StopTime {
	return s.reader.GetTripStopTimes(tripID)
}

func (s *Store) Stops() []model.Stop   { return s.reader.Stops() }
func (s *Store) Routes() []model.Route { return s.reader.Routes() }
func (s *Store) Trips() []model.Trip   { return s.reader.Trips() }

func (s *Store) Calendars() []model.Calendar { return s.reader.Calendars() }
func (s *Store) CalendarExceptions() []model.CalendarException {
	return s.reader.CalendarExceptions()
}
