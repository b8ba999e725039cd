// Package graph implements the Unified Graph Builder (C4): it emits
// the flat, chronologically sorted ConnectionIndex, detects transfer
// hubs across modes, and synthesizes walking-transfer connections
// between them. The algorithm is grounded on
// original_source/src/graph/unified_transit_graph.py's
// _identify_transfer_hubs/_add_intermode_transfers.
package graph

import (
	"regexp"
	"sort"
	"strings"

	"tidbyt.dev/transit/aggregator"
	"tidbyt.dev/transit/geo"
	"tidbyt.dev/transit/model"
)

// Index is the immutable product of a Build: the sorted Connection
// array, the discovered transfer hubs, and the mode-of-stop map
// inherited from the aggregator. A dataset reload builds a brand new
// Index and the caller swaps it in atomically; nothing here is ever
// mutated after Build returns.
type Index struct {
	Connections []model.Connection
	Hubs        []model.TransferHub
	Agg         *aggregator.Aggregator

	// byFromStop indexes Connections by FromStopID, each slice kept
	// in the same relative (departure_time, ¬is_transfer) order as
	// Connections, exposed through ConnectionsFrom.
	byFromStop map[string][]int
}

// Build runs the full C4 algorithm over an aggregator's composed
// stores.
func Build(agg *aggregator.Aggregator) *Index {
	idx := &Index{Agg: agg}

	for _, mode := range agg.Modes() {
		store, _ := agg.Store(mode)
		for _, trip := range store.Trips() {
			visits := store.GetTripStopTimes(trip.ID)
			for i := 0; i+1 < len(visits); i++ {
				from, to := visits[i], visits[i+1]
				travel := to.Arrival - from.Departure
				if travel < 0 {
					travel += 86400
				}
				route, _ := store.GetRoute(trip.RouteID)
				idx.Connections = append(idx.Connections, model.Connection{
					FromStopID:        from.StopID,
					ToStopID:          to.StopID,
					TripID:            trip.ID,
					RouteID:           trip.RouteID,
					RouteType:         route.Type,
					DepartureTime:     from.Departure,
					ArrivalTime:       to.Arrival,
					TravelTimeSeconds: travel,
					IsTransfer:        false,
					ServiceID:         trip.ServiceID,
				})
			}
		}
	}

	idx.Hubs = discoverHubs(agg)
	idx.Connections = append(idx.Connections, synthesizeTransfers(agg, idx.Hubs)...)

	// Sort key (departure_time, ¬is_transfer): transfers sort before
	// scheduled connections at the same departure second.
	sort.SliceStable(idx.Connections, func(i, j int) bool {
		a, b := idx.Connections[i], idx.Connections[j]
		if a.DepartureTime != b.DepartureTime {
			return a.DepartureTime < b.DepartureTime
		}
		return a.IsTransfer && !b.IsTransfer
	})

	idx.byFromStop = map[string][]int{}
	for i, c := range idx.Connections {
		idx.byFromStop[c.FromStopID] = append(idx.byFromStop[c.FromStopID], i)
	}

	return idx
}

// ConnectionsFrom returns the indices (into Connections, in sorted
// order) of every connection departing stopID.
func (idx *Index) ConnectionsFrom(stopID string) []int {
	return idx.byFromStop[stopID]
}

var (
	stationSuffixes = []string{" railway station", " station", " platform"}
	trailingDigits  = regexp.MustCompile(`\s*\d+\s*$`)
	parenQualifier  = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// normalizeHubName mirrors the original implementation's
// _normalize_stop_name: strip known station/platform suffixes,
// trailing platform numbers and parenthetical qualifiers, then
// collapse whitespace and lowercase.
func normalizeHubName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = parenQualifier.ReplaceAllString(n, " ")
	n = trailingDigits.ReplaceAllString(n, "")
	for _, suffix := range stationSuffixes {
		n = strings.TrimSuffix(n, suffix)
	}
	n = whitespaceRun.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

func discoverHubs(agg *aggregator.Aggregator) []model.TransferHub {
	stops := agg.Stops()

	hubsByName := map[string]*model.TransferHub{}

	// (a) group by normalized name; a group spanning >=2 modes is a
	// hub.
	byName := map[string][]model.Stop{}
	for _, s := range stops {
		byName[normalizeHubName(s.Name)] = append(byName[normalizeHubName(s.Name)], s)
	}
	for name, group := range byName {
		if name == "" {
			continue
		}
		modes := map[model.Mode]bool{}
		for _, s := range group {
			if m, ok := agg.ModeOfStop(s.ID); ok {
				modes[m] = true
			}
		}
		if len(modes) < 2 {
			continue
		}
		hub := &model.TransferHub{Name: name, Members: map[string]bool{}}
		for _, s := range group {
			hub.Members[s.ID] = true
		}
		hubsByName[name] = hub
	}

	// (b) proximity clustering across modes, merged into an existing
	// same-name hub when one already covers the stop.
	for i, a := range stops {
		var nearby []model.Stop
		for j, b := range stops {
			if i == j {
				continue
			}
			if geo.AreStopsNearby(a.Lat, a.Lon, b.Lat, b.Lon, 100) {
				nearby = append(nearby, b)
			}
		}
		if len(nearby) == 0 {
			continue
		}
		cluster := append([]model.Stop{a}, nearby...)
		modes := map[model.Mode]bool{}
		for _, s := range cluster {
			if m, ok := agg.ModeOfStop(s.ID); ok {
				modes[m] = true
			}
		}
		if len(modes) < 2 {
			continue
		}

		key := normalizeHubName(a.Name)
		hub, exists := hubsByName[key]
		if !exists {
			hub = &model.TransferHub{Name: key, Members: map[string]bool{}}
			hubsByName[key] = hub
		}
		for _, s := range cluster {
			hub.Members[s.ID] = true
		}
	}

	hubs := make([]model.TransferHub, 0, len(hubsByName))
	for _, h := range hubsByName {
		if len(h.Members) < 2 {
			continue
		}
		hubs = append(hubs, *h)
	}
	sort.Slice(hubs, func(i, j int) bool { return hubs[i].Name < hubs[j].Name })
	return hubs
}

func synthesizeTransfers(agg *aggregator.Aggregator, hubs []model.TransferHub) []model.Connection {
	var out []model.Connection

	for _, hub := range hubs {
		members := make([]string, 0, len(hub.Members))
		for id := range hub.Members {
			members = append(members, id)
		}
		sort.Strings(members)

		for i := 0; i < len(members); i++ {
			for j := 0; j < len(members); j++ {
				if i == j {
					continue
				}
				a, aok := agg.GetStop(members[i])
				b, bok := agg.GetStop(members[j])
				if !aok || !bok {
					continue
				}
				travel := geo.WalkingTimeSeconds(a.Lat, a.Lon, b.Lat, b.Lon)
				out = append(out, model.Connection{
					FromStopID:        a.ID,
					ToStopID:          b.ID,
					DepartureTime:     0,
					ArrivalTime:       travel,
					TravelTimeSeconds: travel,
					IsTransfer:        true,
				})
			}
		}
	}

	return out
}
