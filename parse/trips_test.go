package parse_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/transit/parse"
	"tidbyt.dev/transit/storage"
)

func TestParseTripsLoadsValidRow(t *testing.T) {
	csv := "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id\n" +
		"t1,r1,svc1,Downtown,T1,0\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseTrips(feed, strings.NewReader(csv), map[string]bool{"r1": true}, map[string]bool{"svc1": true}, slog.Default())
	require.NoError(t, err)
	assert.True(t, ids["t1"])
}

func TestParseTripsRejectsUnknownRoute(t *testing.T) {
	csv := "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id\n" +
		"t1,unknown,svc1,Downtown,T1,0\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseTrips(feed, strings.NewReader(csv), map[string]bool{"r1": true}, map[string]bool{"svc1": true}, slog.Default())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseTripsRejectsUnknownService(t *testing.T) {
	csv := "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id\n" +
		"t1,r1,unknown,Downtown,T1,0\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseTrips(feed, strings.NewReader(csv), map[string]bool{"r1": true}, map[string]bool{"svc1": true}, slog.Default())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseTripsRejectsInvalidDirectionID(t *testing.T) {
	csv := "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id\n" +
		"t1,r1,svc1,Downtown,T1,2\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseTrips(feed, strings.NewReader(csv), map[string]bool{"r1": true}, map[string]bool{"svc1": true}, slog.Default())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
