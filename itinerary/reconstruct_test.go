package itinerary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/transit/aggregator"
	"tidbyt.dev/transit/graph"
	"tidbyt.dev/transit/itinerary"
	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/router"
	"tidbyt.dev/transit/schedule"
	"tidbyt.dev/transit/schedule/scheduletest"
)

type alwaysActive struct{}

func (alwaysActive) ActiveOn(string, string) bool { return true }

func buildDataset(t *testing.T) (*graph.Index, *aggregator.Aggregator) {
	t.Helper()

	rail := scheduletest.BuildStore(t, model.ModeRegionalRail, scheduletest.Feed{
		Stops:     []scheduletest.Stop{{ID: "origin", Name: "Origin", Lat: 51.0, Lon: -0.5}, {ID: "hub-rail", Name: "Hub", Lat: 51.5000, Lon: -0.1000}},
		Routes:    []scheduletest.Route{{ID: "r-rail", ShortName: "R1", Type: 2}},
		Trips:     []scheduletest.Trip{{ID: "t-rail", RouteID: "r-rail", ServiceID: "everyday"}},
		StopTimes: []scheduletest.StopTime{{TripID: "t-rail", StopID: "origin", Seq: 1, Arrival: "08:00:00", Departure: "08:00:00"}, {TripID: "t-rail", StopID: "hub-rail", Seq: 2, Arrival: "08:10:00", Departure: "08:10:00"}},
		Calendars: []scheduletest.Calendar{{ServiceID: "everyday", Start: "20260101", End: "20261231"}},
	})

	bus := scheduletest.BuildStore(t, model.ModeBus, scheduletest.Feed{
		Stops:     []scheduletest.Stop{{ID: "hub-bus", Name: "Hub", Lat: 51.5000, Lon: -0.1000}, {ID: "destination", Name: "Destination", Lat: 52.0, Lon: -0.7}},
		Routes:    []scheduletest.Route{{ID: "r-bus", ShortName: "B1", Type: 3}},
		Trips:     []scheduletest.Trip{{ID: "t-bus", RouteID: "r-bus", ServiceID: "everyday"}},
		StopTimes: []scheduletest.StopTime{{TripID: "t-bus", StopID: "hub-bus", Seq: 1, Arrival: "08:25:00", Departure: "08:25:00"}, {TripID: "t-bus", StopID: "destination", Seq: 2, Arrival: "08:40:00", Departure: "08:40:00"}},
		Calendars: []scheduletest.Calendar{{ServiceID: "everyday", Start: "20260101", End: "20261231"}},
	})

	agg := aggregator.New(
		map[model.Mode]*schedule.Store{model.ModeRegionalRail: rail, model.ModeBus: bus},
		[]model.Mode{model.ModeRegionalRail, model.ModeBus},
	)
	return graph.Build(agg), agg
}

func TestReconstructBuildsLegsAndSummary(t *testing.T) {
	idx, agg := buildDataset(t)

	req := router.Request{
		Origin:            "origin",
		Destination:       "destination",
		EarliestDeparture: 0,
		Date:              "20260729",
		MaxTransfers:      4,
	}
	result, err := router.FindPath(context.Background(), idx, alwaysActive{}, req)
	require.NoError(t, err)

	it, err := itinerary.Reconstruct(result, agg)
	require.NoError(t, err)

	assert.Equal(t, "origin", it.OriginStopID)
	assert.Equal(t, "destination", it.DestinationStopID)
	assert.True(t, it.IsValid)
	assert.Equal(t, 8*3600, it.DepartureTime)
	assert.Equal(t, 8*3600+40*60, it.ArrivalTime)
	assert.Equal(t, 40, it.DurationMinutes)

	// Expect a rail leg, a transfer leg, then a bus leg.
	require.Len(t, it.Legs, 3)
	assert.False(t, it.Legs[0].IsTransfer)
	assert.Equal(t, "t-rail", it.Legs[0].TripID)
	assert.True(t, it.Legs[1].IsTransfer)
	assert.False(t, it.Legs[2].IsTransfer)
	assert.Equal(t, "t-bus", it.Legs[2].TripID)

	assert.ElementsMatch(t, []model.Mode{model.ModeRegionalRail, model.ModeBus}, it.ModesUsed)
	assert.Equal(t, 1, it.NumTransfers)
}

func TestReconstructUnreachedResultFails(t *testing.T) {
	_, agg := buildDataset(t)
	result := &router.Result{Destination: "destination", Reached: false}

	_, err := itinerary.Reconstruct(result, agg)
	assert.ErrorIs(t, err, itinerary.ErrNoPredecessor)
}
