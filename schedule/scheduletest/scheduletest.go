// Package scheduletest builds small synthetic GTFS feed directories
// for tests, in place of a shared root-level fixtures directory. Each
// test writes just the rows its scenario needs and loads them through
// the real schedule.Load/parse.ParseStatic path, so tests exercise the
// same code a production feed does.
package scheduletest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/schedule"
)

// Stop is a minimal stops.txt row.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Route is a minimal routes.txt row.
type Route struct {
	ID        string
	ShortName string
	Type      int
}

// Trip is a minimal trips.txt row.
type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
}

// StopTime is a minimal stop_times.txt row. Arrival/Departure use
// GTFS "HH:MM:SS" wall-clock text, matching the on-disk format.
type StopTime struct {
	TripID    string
	StopID    string
	Seq       int
	Arrival   string
	Departure string
}

// Calendar is a minimal calendar.txt row spanning every weekday.
type Calendar struct {
	ServiceID string
	Start     string
	End       string
}

// Feed is the full set of rows one synthetic mode directory holds.
// A single fixed agency is always written; routes come only from Routes.
type Feed struct {
	Stops     []Stop
	Routes    []Route
	Trips     []Trip
	StopTimes []StopTime
	Calendars []Calendar
}

// WriteDir renders f as a GTFS feed directory under dir, failing the
// test on any I/O error.
func WriteDir(t *testing.T, dir string, f Feed) {
	t.Helper()

	write(t, dir, "agency.txt", "agency_id,agency_name,agency_url,agency_timezone",
		[]string{"agency-1,Test Agency,https://example.test,UTC"})

	routeLines := make([]string, 0, len(f.Routes))
	for _, r := range f.Routes {
		routeLines = append(routeLines, fmt.Sprintf("%s,agency-1,%s,%s,%d,,", r.ID, r.ShortName, r.ShortName, r.Type))
	}
	write(t, dir, "routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color", routeLines)

	stopLines := make([]string, 0, len(f.Stops))
	for _, s := range f.Stops {
		stopLines = append(stopLines, fmt.Sprintf("%s,,%s,%f,%f,0,,", s.ID, s.Name, s.Lat, s.Lon))
	}
	write(t, dir, "stops.txt", "stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,platform_code", stopLines)

	tripLines := make([]string, 0, len(f.Trips))
	for _, tr := range f.Trips {
		tripLines = append(tripLines, fmt.Sprintf("%s,%s,%s,,,0", tr.ID, tr.RouteID, tr.ServiceID))
	}
	write(t, dir, "trips.txt", "trip_id,route_id,service_id,trip_headsign,trip_short_name,direction_id", tripLines)

	stLines := make([]string, 0, len(f.StopTimes))
	for _, st := range f.StopTimes {
		stLines = append(stLines, fmt.Sprintf("%s,%s,%d,%s,%s,", st.TripID, st.StopID, st.Seq, st.Arrival, st.Departure))
	}
	write(t, dir, "stop_times.txt", "trip_id,stop_id,stop_sequence,arrival_time,departure_time,stop_headsign", stLines)

	calLines := make([]string, 0, len(f.Calendars))
	for _, c := range f.Calendars {
		calLines = append(calLines, fmt.Sprintf("%s,1,1,1,1,1,1,1,%s,%s", c.ServiceID, c.Start, c.End))
	}
	write(t, dir, "calendar.txt", "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date", calLines)
}

func write(t *testing.T, dir, name, header string, lines []string) {
	t.Helper()
	content := header + "\n"
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// BuildStore writes f to a fresh temp directory and loads it as a
// schedule.Store for mode.
func BuildStore(t *testing.T, mode model.Mode, f Feed) *schedule.Store {
	t.Helper()
	dir := t.TempDir()
	WriteDir(t, dir, f)
	store, err := schedule.Load(mode, dir, slog.Default())
	if err != nil {
		t.Fatalf("loading synthetic store: %v", err)
	}
	return store
}
