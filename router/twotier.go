package router

import (
	"context"

	"tidbyt.dev/transit/graph"
)

// FindBestPath is the top-level entry point for a single best
// itinerary: it first attempts a bounded search restricted to
// same-mode connections (a latency optimization for the common direct
// journey), and falls back to the full multimodal slice if that
// fails. This never changes correctness, only which slice is scanned
// first.
func FindBestPath(ctx context.Context, idx *graph.Index, cal CalendarView, req Request) (*Result, error) {
	if mode, ok := idx.Agg.ModeOfStop(req.Origin); ok {
		sameModeReq := req
		sameModeReq.SameModeOnly = true
		sameModeReq.Mode = mode

		if result, err := FindPath(ctx, idx, cal, sameModeReq); err == nil {
			return result, nil
		}
	}

	return FindPath(ctx, idx, cal, req)
}
