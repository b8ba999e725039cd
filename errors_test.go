package transit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transit "tidbyt.dev/transit"
	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/reload"
	"tidbyt.dev/transit/schedule/scheduletest"
)

func TestFindBestItineraryUnreachableReturnsErrNoRouteFound(t *testing.T) {
	dir := t.TempDir()
	scheduletest.WriteDir(t, dir, scheduletest.Feed{
		Stops:     []scheduletest.Stop{{ID: "a", Name: "A", Lat: 1, Lon: 1}, {ID: "b", Name: "B", Lat: 2, Lon: 2}, {ID: "c", Name: "C", Lat: 3, Lon: 3}},
		Routes:    []scheduletest.Route{{ID: "r1", ShortName: "R1", Type: 3}},
		Trips:     []scheduletest.Trip{{ID: "t1", RouteID: "r1", ServiceID: "everyday"}},
		StopTimes: []scheduletest.StopTime{{TripID: "t1", StopID: "a", Seq: 1, Arrival: "08:00:00", Departure: "08:00:00"}, {TripID: "t1", StopID: "b", Seq: 2, Arrival: "08:10:00", Departure: "08:10:00"}},
		Calendars: []scheduletest.Calendar{{ServiceID: "everyday", Start: "20260101", End: "20261231"}},
	})

	coordinator, err := reload.New(context.Background(), reload.Config{
		Sources:   []reload.ModeSource{{Mode: model.ModeBus, Dir: dir}},
		ModeOrder: []model.Mode{model.ModeBus},
	})
	require.NoError(t, err)

	planner := transit.NewPlanner(coordinator, nil)
	_, err = planner.FindBestItinerary(context.Background(), "a", "c", 0, "20260729", 4)
	assert.ErrorIs(t, err, transit.ErrNoRouteFound)
}

func TestReloadDatasetTranslatesDatasetIncomplete(t *testing.T) {
	dir := t.TempDir()
	scheduletest.WriteDir(t, dir, scheduletest.Feed{
		Stops:     []scheduletest.Stop{{ID: "a", Name: "A", Lat: 1, Lon: 1}},
		Routes:    []scheduletest.Route{{ID: "r1", ShortName: "R1", Type: 3}},
		Trips:     []scheduletest.Trip{{ID: "t1", RouteID: "r1", ServiceID: "everyday"}},
		StopTimes: []scheduletest.StopTime{{TripID: "t1", StopID: "a", Seq: 1, Arrival: "08:00:00", Departure: "08:00:00"}},
		Calendars: []scheduletest.Calendar{{ServiceID: "everyday", Start: "20260101", End: "20261231"}},
	})

	coordinator, err := reload.New(context.Background(), reload.Config{
		Sources:   []reload.ModeSource{{Mode: model.ModeBus, Dir: dir}},
		ModeOrder: []model.Mode{model.ModeBus},
	})
	require.NoError(t, err)

	// Corrupt the feed directory so the next reload fails.
	require.NoError(t, os.Remove(filepath.Join(dir, "stops.txt")))

	planner := transit.NewPlanner(coordinator, nil)
	err = planner.ReloadDataset(context.Background())
	assert.ErrorIs(t, err, transit.ErrDatasetIncomplete)
}
