package transit

import "errors"

// Error taxonomy surfaced at the query-surface boundary (spec §6/§7).
// Structural/input errors (StopNotFound, and NoRouteFound once a
// search has actually run) are returned verbatim and are never
// retried by the planner itself.
var (
	ErrStopNotFound        = errors.New("stop not found")
	ErrNoRouteFound        = errors.New("no route found")
	ErrDatasetIncomplete   = errors.New("dataset incomplete")
	ErrRealtimeUnavailable = errors.New("realtime data unavailable")
	ErrRateLimited         = errors.New("rate limited")
	ErrTransportError      = errors.New("transport error")
	ErrCancelled           = errors.New("cancelled")
)
