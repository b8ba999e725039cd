package router

import (
	"context"

	"tidbyt.dev/transit/graph"
	"tidbyt.dev/transit/model"
)

// PathResult pairs a Result with the stop set it visits, used for the
// Jaccard-overlap uniqueness check.
type PathResult struct {
	Result *Result
	Stops  map[string]bool
}

// FindKPaths repeats FindPath with a growing ban list, seeded from
// each successful result's longest leg, keeping only itineraries
// whose stop-set Jaccard overlap with every already-kept result is
// <= 0.8. Grounded on
// original_source/src/routing/journey_planner.py's
// find_multiple_journeys/_get_critical_connections/_is_unique_journey.
func FindKPaths(ctx context.Context, idx *graph.Index, cal CalendarView, req Request, k int) ([]*Result, error) {
	var kept []PathResult
	banned := append([]BannedConnection{}, req.BannedConnections...)

	maxAttempts := k * 2
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts && len(kept) < k; attempt++ {
		attemptReq := req
		attemptReq.BannedConnections = banned

		result, err := FindPath(ctx, idx, cal, attemptReq)
		if err != nil {
			break
		}

		stops := stopSet(result)
		if isUnique(stops, kept) {
			kept = append(kept, PathResult{Result: result, Stops: stops})
		}

		banned = append(banned, criticalConnections(result)...)
	}

	out := make([]*Result, 0, len(kept))
	for _, pr := range kept {
		out = append(out, pr.Result)
	}
	return out, nil
}

func stopSet(r *Result) map[string]bool {
	set := map[string]bool{r.Destination: true}
	stop := r.Destination
	for {
		c, ok := r.Predecessor[stop]
		if !ok {
			break
		}
		set[c.FromStopID] = true
		stop = c.FromStopID
	}
	return set
}

func isUnique(stops map[string]bool, kept []PathResult) bool {
	for _, pr := range kept {
		if jaccard(stops, pr.Stops) > 0.8 {
			return false
		}
	}
	return true
}

func jaccard(a, b map[string]bool) float64 {
	inter, union := 0, map[string]bool{}
	for s := range a {
		union[s] = true
		if b[s] {
			inter++
		}
	}
	for s := range b {
		union[s] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}

// criticalConnections identifies the longest leg of a result (by
// travel time) and bans its (from, to, trip_id) triple so the next
// attempt is forced off that segment.
func criticalConnections(r *Result) []BannedConnection {
	var longest model.Connection
	longestDuration := -1

	stop := r.Destination
	for {
		c, ok := r.Predecessor[stop]
		if !ok {
			break
		}
		duration := c.ArrivalTime - c.DepartureTime
		if duration > longestDuration {
			longestDuration = duration
			longest = c
		}
		stop = c.FromStopID
	}

	if longestDuration < 0 {
		return nil
	}
	return []BannedConnection{{FromStopID: longest.FromStopID, ToStopID: longest.ToStopID, TripID: longest.TripID}}
}
