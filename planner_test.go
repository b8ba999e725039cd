package transit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transit "tidbyt.dev/transit"
	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/reload"
	"tidbyt.dev/transit/schedule/scheduletest"
)

func buildCoordinator(t *testing.T) *reload.Coordinator {
	t.Helper()

	railDir := t.TempDir()
	scheduletest.WriteDir(t, railDir, scheduletest.Feed{
		Stops:     []scheduletest.Stop{{ID: "origin", Name: "Origin", Lat: 51.0, Lon: -0.5}, {ID: "hub-rail", Name: "Hub", Lat: 51.5000, Lon: -0.1000}},
		Routes:    []scheduletest.Route{{ID: "r-rail", ShortName: "R1", Type: 2}},
		Trips:     []scheduletest.Trip{{ID: "t-rail", RouteID: "r-rail", ServiceID: "everyday"}},
		StopTimes: []scheduletest.StopTime{{TripID: "t-rail", StopID: "origin", Seq: 1, Arrival: "08:00:00", Departure: "08:00:00"}, {TripID: "t-rail", StopID: "hub-rail", Seq: 2, Arrival: "08:10:00", Departure: "08:10:00"}},
		Calendars: []scheduletest.Calendar{{ServiceID: "everyday", Start: "20260101", End: "20261231"}},
	})

	busDir := t.TempDir()
	scheduletest.WriteDir(t, busDir, scheduletest.Feed{
		Stops:     []scheduletest.Stop{{ID: "hub-bus", Name: "Hub", Lat: 51.5000, Lon: -0.1000}, {ID: "destination", Name: "Destination", Lat: 52.0, Lon: -0.7}},
		Routes:    []scheduletest.Route{{ID: "r-bus", ShortName: "B1", Type: 3}},
		Trips:     []scheduletest.Trip{{ID: "t-bus", RouteID: "r-bus", ServiceID: "everyday"}},
		StopTimes: []scheduletest.StopTime{{TripID: "t-bus", StopID: "hub-bus", Seq: 1, Arrival: "08:25:00", Departure: "08:25:00"}, {TripID: "t-bus", StopID: "destination", Seq: 2, Arrival: "08:40:00", Departure: "08:40:00"}},
		Calendars: []scheduletest.Calendar{{ServiceID: "everyday", Start: "20260101", End: "20261231"}},
	})

	c, err := reload.New(context.Background(), reload.Config{
		Sources: []reload.ModeSource{
			{Mode: model.ModeRegionalRail, Dir: railDir},
			{Mode: model.ModeBus, Dir: busDir},
		},
		ModeOrder: []model.Mode{model.ModeRegionalRail, model.ModeBus},
	})
	require.NoError(t, err)
	return c
}

func TestFindBestItineraryAcrossModes(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	it, err := planner.FindBestItinerary(context.Background(), "origin", "destination", 0, "20260729", 4)
	require.NoError(t, err)
	assert.Equal(t, 8*3600, it.DepartureTime)
	assert.Equal(t, 8*3600+40*60, it.ArrivalTime)
}

func TestFindBestItineraryUnknownStopReturnsErrStopNotFound(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	_, err := planner.FindBestItinerary(context.Background(), "nowhere", "destination", 0, "20260729", 4)
	assert.ErrorIs(t, err, transit.ErrStopNotFound)
}

func TestFindKItinerariesReturnsAtLeastOne(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	its, err := planner.FindKItineraries(context.Background(), "origin", "destination", 0, "20260729", 3, 4)
	require.NoError(t, err)
	assert.NotEmpty(t, its)
}

func TestApplyRealtimeWithNilFetcherReturnsUnchanged(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	it, err := planner.FindBestItinerary(context.Background(), "origin", "destination", 0, "20260729", 4)
	require.NoError(t, err)

	out, err := planner.ApplyRealtime(context.Background(), it, model.ModeRegionalRail)
	require.NoError(t, err)
	assert.Equal(t, it.DepartureTime, out.DepartureTime)
	for _, leg := range out.Legs {
		assert.False(t, leg.HasRealtimeData)
	}
}

func TestGetVehiclePositionsWithNoFetcherReturnsRealtimeUnavailable(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	_, err := planner.GetVehiclePositions(context.Background(), model.ModeBus)
	assert.ErrorIs(t, err, transit.ErrRealtimeUnavailable)
}

func TestGetAlertsForModeWithoutAlertsReturnsEmpty(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	alerts, err := planner.GetAlerts(context.Background(), model.ModeBus)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestFindStopFuzzyFindsOriginByPartialTokenOverlap(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	// "origin stop" shares one of its two tokens with "Origin": score 50.
	matches := planner.FindStopFuzzy("Origin stop", 5, 10)
	require.NotEmpty(t, matches)
}

func TestReloadDatasetSucceeds(t *testing.T) {
	coordinator := buildCoordinator(t)
	planner := transit.NewPlanner(coordinator, nil)

	assert.NoError(t, planner.ReloadDataset(context.Background()))
}
