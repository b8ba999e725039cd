package storage

import (
	"sort"

	"tidbyt.dev/transit/model"
)

// MemoryFeed is the only FeedReader/FeedWriter backend this module
// ships: a single mode's static feed held entirely in memory, the way
// the feed tooling this is descended from holds a parsed feed before
// handing it to a SQL-backed store. Pack datasets are small enough
// (a handful of megabytes per mode) that a SQL-backed FeedReader adds
// operational cost without buying anything: no reload mixes stores,
// every reload replaces a mode's MemoryFeed wholesale.
type MemoryFeed struct {
	agency map[string]model.Agency
	stops  map[string]model.Stop
	routes map[string]model.Route
	trips  map[string]model.Trip

	stopTimesByTrip map[string][]model.StopTime

	calendar   map[string]model.Calendar
	calendarEx map[string][]model.CalendarException
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		agency:          map[string]model.Agency{},
		stops:           map[string]model.Stop{},
		routes:          map[string]model.Route{},
		trips:           map[string]model.Trip{},
		stopTimesByTrip: map[string][]model.StopTime{},
		calendar:        map[string]model.Calendar{},
		calendarEx:      map[string][]model.CalendarException{},
	}
}

func (f *MemoryFeed) WriteAgency(a model.Agency) error {
	f.agency[a.ID] = a
	return nil
}

func (f *MemoryFeed) WriteStop(s model.Stop) error {
	f.stops[s.ID] = s
	return nil
}

func (f *MemoryFeed) WriteRoute(r model.Route) error {
	f.routes[r.ID] = r
	return nil
}

func (f *MemoryFeed) WriteTrip(t model.Trip) error {
	f.trips[t.ID] = t
	return nil
}

func (f *MemoryFeed) WriteCalendar(c model.Calendar) error {
	f.calendar[c.ServiceID] = c
	return nil
}

func (f *MemoryFeed) WriteCalendarException(ce model.CalendarException) error {
	f.calendarEx[ce.ServiceID] = append(f.calendarEx[ce.ServiceID], ce)
	return nil
}

func (f *MemoryFeed) BeginStopTimes() error { return nil }

func (f *MemoryFeed) WriteStopTime(st model.StopTime) error {
	f.stopTimesByTrip[st.TripID] = append(f.stopTimesByTrip[st.TripID], st)
	return nil
}

func (f *MemoryFeed) EndStopTimes() error {
	for tripID, sts := range f.stopTimesByTrip {
		sorted := make([]model.StopTime, len(sts))
		copy(sorted, sts)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].StopSequence < sorted[j].StopSequence
		})
		f.stopTimesByTrip[tripID] = sorted
	}
	return nil
}

func (f *MemoryFeed) Agencies() []model.Agency {
	out := make([]model.Agency, 0, len(f.agency))
	for _, v := range f.agency {
		out = append(out, v)
	}
	return out
}

func (f *MemoryFeed) Stops() []model.Stop {
	out := make([]model.Stop, 0, len(f.stops))
	for _, v := range f.stops {
		out = append(out, v)
	}
	return out
}

func (f *MemoryFeed) Routes() []model.Route {
	out := make([]model.Route, 0, len(f.routes))
	for _, v := range f.routes {
		out = append(out, v)
	}
	return out
}

func (f *MemoryFeed) Trips() []model.Trip {
	out := make([]model.Trip, 0, len(f.trips))
	for _, v := range f.trips {
		out = append(out, v)
	}
	return out
}

func (f *MemoryFeed) GetStop(id string) (model.Stop, bool) {
	s, ok := f.stops[id]
	return s, ok
}

func (f *MemoryFeed) GetTrip(id string) (model.Trip, bool) {
	t, ok := f.trips[id]
	return t, ok
}

func (f *MemoryFeed) GetRoute(id string) (model.Route, bool) {
	r, ok := f.routes[id]
	return r, ok
}

func (f *MemoryFeed) GetTripStopTimes(tripID string) []model.StopTime {
	return f.stopTimesByTrip[tripID]
}

func (f *MemoryFeed) Calendars() []model.Calendar {
	out := make([]model.Calendar, 0, len(f.calendar))
	for _, v := range f.calendar {
		out = append(out, v)
	}
	return out
}

func (f *MemoryFeed) CalendarExceptions() []model.CalendarException {
	out := []model.CalendarException{}
	for _, ces := range f.calendarEx {
		out = append(out, ces...)
	}
	return out
}
