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

func TestParseStopsLoadsValidRow(t *testing.T) {
	csv := "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code\n" +
		"s1,,Main St,1.0,2.0,0,,\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseStops(feed, strings.NewReader(csv), slog.Default())
	require.NoError(t, err)
	assert.True(t, ids["s1"])
}

func TestParseStopsRejectsMissingCoordinates(t *testing.T) {
	csv := "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code\n" +
		"s1,,Main St,0,0,0,,\n"

	feed := storage.NewMemoryFeed()
	_, err := parse.ParseStops(feed, strings.NewReader(csv), slog.Default())
	assert.ErrorIs(t, err, parse.ErrDatasetIncomplete)
}

func TestParseStopsAllowsGenericNodeWithoutNameOrCoords(t *testing.T) {
	csv := "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code\n" +
		"s1,,,0,0,3,,\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseStops(feed, strings.NewReader(csv), slog.Default())
	require.NoError(t, err)
	assert.True(t, ids["s1"])
}

func TestParseStopsWarnsOnUnknownParentStationButStillLoads(t *testing.T) {
	csv := "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code\n" +
		"s1,,Main St,1.0,2.0,0,missing-parent,\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseStops(feed, strings.NewReader(csv), slog.Default())
	require.NoError(t, err)
	assert.True(t, ids["s1"])
}
