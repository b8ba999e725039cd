package realtime

import (
	"fmt"

	"tidbyt.dev/transit/model"
)

// DefaultMinTransferSeconds is the transfer-revalidation margin spec
// §4.7 step 3 requires when the caller doesn't specify one.
const DefaultMinTransferSeconds = 120

// ApplyTripUpdates overlays trip updates onto an itinerary, returning
// a new Itinerary rather than mutating the one passed in (spec §4.7 /
// REDESIGN FLAGS: realtime state is per-query and never mutates core
// data). Cancelled legs and transfer violations set IsValid = false
// with an explanatory message; a trip update feed with no entries
// matching any leg's trip_id leaves the itinerary equal to the
// original (minus HasRealtimeData, which starts false either way).
func ApplyTripUpdates(it *model.Itinerary, updates map[string]*TripUpdateInfo, minTransferSeconds int) *model.Itinerary {
	if minTransferSeconds <= 0 {
		minTransferSeconds = DefaultMinTransferSeconds
	}

	out := *it
	out.Legs = make([]model.Leg, len(it.Legs))
	copy(out.Legs, it.Legs)
	out.IsValid = true
	out.ValidityMessage = ""

	for i := range out.Legs {
		leg := out.Legs[i]
		if leg.IsTransfer {
			out.Legs[i] = leg
			continue
		}

		info, ok := updates[leg.TripID]
		if !ok {
			out.Legs[i] = leg
			continue
		}

		leg.HasRealtimeData = true
		leg.ScheduledDeparture = leg.DepartureTime
		leg.ScheduledArrival = leg.ArrivalTime

		if info.IsCancelled {
			leg.IsCancelled = true
			leg.ActualDeparture = leg.ScheduledDeparture
			leg.ActualArrival = leg.ScheduledArrival
			out.Legs[i] = leg
			continue
		}

		depDelay, arrDelay := 0, 0
		if u, ok := info.byStopID(leg.FromStopID); ok && !u.Skipped {
			depDelay = u.DepDelaySeconds
		}
		if u, ok := info.byStopID(leg.ToStopID); ok {
			if u.Skipped {
				leg.IsCancelled = true
			} else {
				arrDelay = u.ArrDelaySeconds
				if u.Platform != "" {
					leg.Platform = u.Platform
				}
			}
		}

		leg.ActualDeparture = leg.ScheduledDeparture + depDelay
		leg.ActualArrival = leg.ScheduledArrival + arrDelay

		out.Legs[i] = leg
	}

	var cancelled []string
	for _, leg := range out.Legs {
		if leg.IsCancelled {
			cancelled = append(cancelled, leg.FromStopName)
		}
	}
	if len(cancelled) > 0 {
		out.IsValid = false
		out.ValidityMessage = fmt.Sprintf("trip cancelled departing %s", cancelled[0])
		return &out
	}

	for i := 0; i < len(out.Legs)-1; i++ {
		a, b := out.Legs[i], out.Legs[i+1]
		if a.IsTransfer || b.IsTransfer || !a.HasRealtimeData && !b.HasRealtimeData {
			continue
		}

		actualArrival := a.ActualArrival
		if actualArrival == 0 {
			actualArrival = a.ArrivalTime
		}
		actualDeparture := b.ActualDeparture
		if actualDeparture == 0 {
			actualDeparture = b.DepartureTime
		}

		if actualArrival+minTransferSeconds > actualDeparture {
			out.IsValid = false
			out.ValidityMessage = fmt.Sprintf("insufficient transfer time at %s", a.ToStopName)
			return &out
		}
	}

	return &out
}
