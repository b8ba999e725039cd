package parse_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/transit/parse"
	"tidbyt.dev/transit/storage"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseStaticLoadsCompleteFeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agency.txt", "agency_id,agency_name,agency_url,agency_timezone\na1,Example,https://example.test,America/New_York\n")
	writeFile(t, dir, "routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color\nr1,a1,B1,Bus One,3,,\n")
	writeFile(t, dir, "stops.txt", "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code\ns1,,Stop One,1.0,1.0,0,,\ns2,,Stop Two,1.01,1.01,0,,\n")
	writeFile(t, dir, "trips.txt", "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id\nt1,r1,svc,,,0\n")
	writeFile(t, dir, "stop_times.txt", "trip_id,stop_id,stop_sequence,arrival_time,departure_time,stop_headsign\nt1,s1,1,08:00:00,08:00:00,\nt1,s2,2,08:10:00,08:10:00,\n")
	writeFile(t, dir, "calendar.txt", "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\nsvc,20260101,20261231,1,1,1,1,1,1,1\n")

	feed := storage.NewMemoryFeed()
	err := parse.ParseStatic(dir, feed, slog.Default())
	require.NoError(t, err)

	assert.Len(t, feed.Stops(), 2)
	assert.Len(t, feed.Trips(), 1)
	assert.Len(t, feed.GetTripStopTimes("t1"), 2)
}

func TestParseStaticFailsWhenRequiredFileMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agency.txt", "agency_id,agency_name,agency_url,agency_timezone\na1,Example,https://example.test,America/New_York\n")

	feed := storage.NewMemoryFeed()
	err := parse.ParseStatic(dir, feed, slog.Default())
	assert.ErrorIs(t, err, parse.ErrDatasetIncomplete)
}

func TestParseStaticFailsWithNeitherCalendarFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agency.txt", "agency_id,agency_name,agency_url,agency_timezone\na1,Example,https://example.test,America/New_York\n")
	writeFile(t, dir, "routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color\nr1,a1,B1,Bus One,3,,\n")
	writeFile(t, dir, "stops.txt", "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code\ns1,,Stop One,1.0,1.0,0,,\n")
	writeFile(t, dir, "trips.txt", "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id\nt1,r1,svc,,,0\n")
	writeFile(t, dir, "stop_times.txt", "trip_id,stop_id,stop_sequence,arrival_time,departure_time,stop_headsign\nt1,s1,1,08:00:00,08:00:00,\n")

	feed := storage.NewMemoryFeed()
	err := parse.ParseStatic(dir, feed, slog.Default())
	assert.ErrorIs(t, err, parse.ErrDatasetIncomplete)
}
