// Package aggregator implements the Multimodal Aggregator (C2): it
// composes N schedule.Store values (one per mode), tracks which mode
// owns each stop, and exposes a merged stop view. Trips are never
// merged across stores — each trip keeps its originating mode.
package aggregator

import (
	"sort"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/schedule"
)

type Aggregator struct {
	stores     map[model.Mode]*schedule.Store
	modeOfStop map[string]model.Mode
	stops      map[string]model.Stop
}

// New composes the given stores. If two stores assign the same
// stop_id, the later store in modeOrder wins for both the merged stop
// map and mode-of-stop lookup, per spec: hubs are modelled by
// proximity, not by id-sharing.
func New(stores map[model.Mode]*schedule.Store, modeOrder []model.Mode) *Aggregator {
	a := &Aggregator{
		stores:     stores,
		modeOfStop: map[string]model.Mode{},
		stops:      map[string]model.Stop{},
	}
	for _, mode := range modeOrder {
		store, ok := stores[mode]
		if !ok {
			continue
		}
		for _, stop := range store.Stops() {
			a.stops[stop.ID] = stop
			a.modeOfStop[stop.ID] = mode
		}
	}
	return a
}

func (a *Aggregator) Modes() []model.Mode {
	modes := make([]model.Mode, 0, len(a.stores))
	for m := range a.stores {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

func (a *Aggregator) Store(mode model.Mode) (*schedule.Store, bool) {
	s, ok := a.stores[mode]
	return s, ok
}

func (a *Aggregator) ModeOfStop(stopID string) (model.Mode, bool) {
	m, ok := a.modeOfStop[stopID]
	return m, ok
}

// Stops returns the merged stop view across all modes.
func (a *Aggregator) Stops() []model.Stop {
	out := make([]model.Stop, 0, len(a.stops))
	for _, s := range a.stops {
		out = append(out, s)
	}
	return out
}

func (a *Aggregator) GetStop(id string) (model.Stop, bool) {
	s, ok := a.stops[id]
	return s, ok
}

// GetTrip looks up a trip, searching every store (a trip_id is only
// unique within its own mode's feed).
func (a *Aggregator) GetTrip(id string) (model.Trip, model.Mode, bool) {
	for mode, store := range a.stores {
		if t, ok := store.GetTrip(id); ok {
			return t, mode, true
		}
	}
	return model.Trip{}, "", false
}

func (a *Aggregator) GetRoute(id string, mode model.Mode) (model.Route, bool) {
	store, ok := a.stores[mode]
	if !ok {
		return model.Route{}, false
	}
	return store.GetRoute(id)
}
