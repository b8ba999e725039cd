// Package itinerary implements the Itinerary Reconstructor (C6):
// back-tracing the router's predecessor chain into an ordered list of
// legs, grouping consecutive same-trip connections into one leg each.
// Grounded on
// original_source/src/routing/journey_planner.py's
// _reconstruct_journey/_create_leg.
package itinerary

import (
	"errors"

	"tidbyt.dev/transit/aggregator"
	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/router"
)

var ErrNoPredecessor = errors.New("destination has no predecessor")

// Reconstruct turns a router.Result into a model.Itinerary.
func Reconstruct(result *router.Result, agg *aggregator.Aggregator) (*model.Itinerary, error) {
	if !result.Reached {
		return nil, ErrNoPredecessor
	}

	// Back-trace destination -> origin, then reverse.
	var chain []model.Connection
	stop := result.Destination
	origin := stop
	for {
		c, ok := result.Predecessor[stop]
		if !ok {
			origin = stop
			break
		}
		chain = append(chain, c)
		stop = c.FromStopID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	if len(chain) == 0 {
		return nil, ErrNoPredecessor
	}

	legs := groupLegs(chain, agg)

	it := &model.Itinerary{
		OriginStopID:      origin,
		DestinationStopID: result.Destination,
		Legs:              legs,
	}

	firstNonTransfer, lastNonTransfer := -1, -1
	for i, l := range legs {
		if !l.IsTransfer {
			if firstNonTransfer == -1 {
				firstNonTransfer = i
			}
			lastNonTransfer = i
		}
	}
	if firstNonTransfer == -1 {
		// Every leg is a transfer — should not occur per spec, but
		// fall back to the first/last leg rather than panic.
		firstNonTransfer, lastNonTransfer = 0, len(legs)-1
	}

	it.DepartureTime = legs[firstNonTransfer].DepartureTime
	it.ArrivalTime = legs[lastNonTransfer].ArrivalTime
	it.DurationMinutes = (it.ArrivalTime - it.DepartureTime) / 60

	modes := map[model.Mode]bool{}
	transfers := 0
	for i, l := range legs {
		if l.IsTransfer {
			transfers++
			continue
		}
		if m, ok := agg.ModeOfStop(l.FromStopID); ok {
			modes[m] = true
		}
		if i > 0 && !legs[i-1].IsTransfer && legs[i-1].TripID != l.TripID {
			transfers++
		}
	}
	it.NumTransfers = transfers
	for m := range modes {
		it.ModesUsed = append(it.ModesUsed, m)
	}
	it.IsValid = true

	return it, nil
}

// groupLegs sweeps left-to-right, grouping consecutive connections
// sharing a trip_id into a single leg. A transfer connection always
// forms a singleton leg.
func groupLegs(chain []model.Connection, agg *aggregator.Aggregator) []model.Leg {
	var legs []model.Leg

	i := 0
	for i < len(chain) {
		c := chain[i]
		if c.IsTransfer {
			legs = append(legs, legFromGroup(chain[i:i+1], agg))
			i++
			continue
		}

		j := i + 1
		for j < len(chain) && !chain[j].IsTransfer && chain[j].TripID == c.TripID {
			j++
		}
		legs = append(legs, legFromGroup(chain[i:j], agg))
		i = j
	}

	return legs
}

func stopName(agg *aggregator.Aggregator, id string) string {
	if s, ok := agg.GetStop(id); ok {
		return s.Name
	}
	return ""
}

func legFromGroup(group []model.Connection, agg *aggregator.Aggregator) model.Leg {
	first, last := group[0], group[len(group)-1]

	leg := model.Leg{
		FromStopID:    first.FromStopID,
		FromStopName:  stopName(agg, first.FromStopID),
		ToStopID:      last.ToStopID,
		ToStopName:    stopName(agg, last.ToStopID),
		DepartureTime: first.DepartureTime,
		ArrivalTime:   last.ArrivalTime,
		TripID:        first.TripID,
		RouteID:       first.RouteID,
		RouteType:     first.RouteType,
		IsTransfer:    first.IsTransfer,
		NumStops:      len(group) + 1,
	}

	if route, ok := agg.GetRoute(first.RouteID, modeOf(agg, first.FromStopID)); ok {
		leg.RouteName = route.LongName
		if leg.RouteName == "" {
			leg.RouteName = route.ShortName
		}
	}

	for k := 0; k < len(group)-1; k++ {
		stopID := group[k].ToStopID
		s, ok := agg.GetStop(stopID)
		if !ok {
			continue
		}
		leg.Intermediate = append(leg.Intermediate, model.IntermediateStop{
			StopID: s.ID,
			Name:   s.Name,
			Lat:    s.Lat,
			Lon:    s.Lon,
		})
	}

	return leg
}

func modeOf(agg *aggregator.Aggregator, stopID string) model.Mode {
	m, _ := agg.ModeOfStop(stopID)
	return m
}
