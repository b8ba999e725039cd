// Package transit is the query surface (§6) composing every other
// component: schedule loading (C1), multimodal aggregation (C2), stop
// lookup (C3), the connection graph (C4), the CSA router (C5),
// itinerary reconstruction (C6), live-feed overlays (C7), caching and
// rate limiting (C8), geodesy (C9) and reload glue (C10). Grounded on
// the teacher's top-level gtfs package (Static/Realtime/Manager),
// reshaped around a single immutable Dataset swapped by reload.Coordinator
// instead of a URL-keyed multi-feed store.
package transit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"tidbyt.dev/transit/itinerary"
	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/parse"
	"tidbyt.dev/transit/realtime"
	"tidbyt.dev/transit/reload"
	"tidbyt.dev/transit/router"
	"tidbyt.dev/transit/stopindex"
)

// DefaultMaxTransfers is the query-surface default spec §6 names for
// find_best_itinerary.
const DefaultMaxTransfers = 4

// Planner is the top-level entry point. It is safe for concurrent
// use: every method reads a single Dataset snapshot from its
// Coordinator and never mutates it.
type Planner struct {
	coordinator        *reload.Coordinator
	fetcher            *realtime.Fetcher
	minTransferSeconds int
	log                *slog.Logger
}

// NewPlanner composes a Coordinator (which owns the swappable
// Dataset) with an optional Fetcher (nil disables every live-feed
// method, which then behave as if every fetch failed transiently).
func NewPlanner(coordinator *reload.Coordinator, fetcher *realtime.Fetcher) *Planner {
	return &Planner{
		coordinator:        coordinator,
		fetcher:            fetcher,
		minTransferSeconds: realtime.DefaultMinTransferSeconds,
		log:                slog.Default(),
	}
}

// SetLogger replaces the Planner's structured logger, used to tag
// query trace IDs in route-query log lines.
func (p *Planner) SetLogger(log *slog.Logger) {
	p.log = log
}

// FindBestItinerary runs the CSA router and reconstructs the single
// earliest-arrival itinerary. maxTransfers 0 allows no transfers; a
// negative maxTransfers uses DefaultMaxTransfers.
func (p *Planner) FindBestItinerary(ctx context.Context, origin, destination string, earliestDeparture int, date string, maxTransfers int) (*model.Itinerary, error) {
	traceID := uuid.NewString()
	log := p.log.With("trace_id", traceID, "origin", origin, "destination", destination)

	ds := p.coordinator.Current()

	if _, ok := ds.Aggregator.GetStop(origin); !ok {
		return nil, fmt.Errorf("%w: %s", ErrStopNotFound, origin)
	}
	if _, ok := ds.Aggregator.GetStop(destination); !ok {
		return nil, fmt.Errorf("%w: %s", ErrStopNotFound, destination)
	}

	date, earliestDeparture = normalizeWhen(date, earliestDeparture)
	req := router.Request{
		Origin:            origin,
		Destination:       destination,
		EarliestDeparture: earliestDeparture,
		Date:              date,
		MaxTransfers:      maxTransfers,
	}

	result, err := router.FindBestPath(ctx, ds.Graph, ds.Calendar, req)
	if err != nil {
		log.Debug("route query failed", "error", err)
		return nil, translateRouterErr(err)
	}

	it, err := itinerary.Reconstruct(result, ds.Aggregator)
	if err != nil {
		log.Debug("itinerary reconstruction failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNoRouteFound, err)
	}
	log.Debug("route query resolved", "duration_minutes", it.DurationMinutes, "transfers", it.NumTransfers)
	return it, nil
}

// FindKItineraries runs k-alternative search and reconstructs each
// surviving result.
func (p *Planner) FindKItineraries(ctx context.Context, origin, destination string, earliestDeparture int, date string, k int, maxTransfers int) ([]*model.Itinerary, error) {
	traceID := uuid.NewString()
	log := p.log.With("trace_id", traceID, "origin", origin, "destination", destination, "k", k)

	ds := p.coordinator.Current()

	if _, ok := ds.Aggregator.GetStop(origin); !ok {
		return nil, fmt.Errorf("%w: %s", ErrStopNotFound, origin)
	}
	if _, ok := ds.Aggregator.GetStop(destination); !ok {
		return nil, fmt.Errorf("%w: %s", ErrStopNotFound, destination)
	}

	date, earliestDeparture = normalizeWhen(date, earliestDeparture)
	req := router.Request{
		Origin:            origin,
		Destination:       destination,
		EarliestDeparture: earliestDeparture,
		Date:              date,
		MaxTransfers:      maxTransfers,
	}

	results, err := router.FindKPaths(ctx, ds.Graph, ds.Calendar, req, k)
	if err != nil {
		log.Debug("k-alternative query failed", "error", err)
		return nil, translateRouterErr(err)
	}
	if len(results) == 0 {
		log.Debug("k-alternative query found no routes")
		return nil, ErrNoRouteFound
	}

	itineraries := make([]*model.Itinerary, 0, len(results))
	for _, r := range results {
		it, err := itinerary.Reconstruct(r, ds.Aggregator)
		if err != nil {
			continue
		}
		itineraries = append(itineraries, it)
	}
	sort.Slice(itineraries, func(i, j int) bool {
		return itineraries[i].DurationMinutes < itineraries[j].DurationMinutes
	})
	log.Debug("k-alternative query resolved", "found", len(itineraries))
	return itineraries, nil
}

// ApplyRealtime overlays trip updates for mode onto it, returning a
// new Itinerary. Per spec §4.7/§7: a transient fetch failure never
// fails the call — it returns the original itinerary unchanged with
// has_realtime_data left false on every leg.
func (p *Planner) ApplyRealtime(ctx context.Context, it *model.Itinerary, mode model.Mode) (*model.Itinerary, error) {
	if p.fetcher == nil {
		unchanged := *it
		return &unchanged, nil
	}

	data, err := p.fetcher.Fetch(ctx, mode, realtime.FeedTripUpdates)
	if err != nil {
		unchanged := *it
		return &unchanged, nil
	}
	if data == nil {
		unchanged := *it
		return &unchanged, nil
	}

	updates, err := realtime.ParseTripUpdates(data)
	if err != nil {
		unchanged := *it
		return &unchanged, nil
	}

	return realtime.ApplyTripUpdates(it, updates, p.minTransferSeconds), nil
}

// FindStopFuzzy exposes the stop index's fuzzy name lookup.
func (p *Planner) FindStopFuzzy(query string, limit, minScore int) []stopindex.Match {
	ds := p.coordinator.Current()
	return ds.StopIndex.FindFuzzy(query, limit, minScore)
}

// GetVehiclePositions fetches and parses a mode's vehicle position
// feed.
func (p *Planner) GetVehiclePositions(ctx context.Context, mode model.Mode) ([]model.VehiclePosition, error) {
	data, err := p.fetch(ctx, mode, realtime.FeedVehiclePositions)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return realtime.ParseVehiclePositions(data)
}

// GetAlerts fetches and parses a mode's service alert feed. Modes
// that don't publish alerts (spec §4.7: only metro and tram do)
// return an empty, error-free list.
func (p *Planner) GetAlerts(ctx context.Context, mode model.Mode) ([]model.Alert, error) {
	if !realtime.ModeHasAlerts(mode) {
		return nil, nil
	}
	data, err := p.fetch(ctx, mode, realtime.FeedServiceAlerts)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return realtime.ParseAlerts(data)
}

// GetAlertsForRoute filters GetAlerts to those informing routeID.
func (p *Planner) GetAlertsForRoute(ctx context.Context, routeID string, mode model.Mode) ([]model.Alert, error) {
	alerts, err := p.GetAlerts(ctx, mode)
	if err != nil {
		return nil, err
	}
	return filterAlerts(alerts, func(ie model.InformedEntity) bool { return ie.RouteID == routeID }), nil
}

// GetAlertsForStop filters GetAlerts to those informing stopID.
func (p *Planner) GetAlertsForStop(ctx context.Context, stopID string, mode model.Mode) ([]model.Alert, error) {
	alerts, err := p.GetAlerts(ctx, mode)
	if err != nil {
		return nil, err
	}
	return filterAlerts(alerts, func(ie model.InformedEntity) bool { return ie.StopID == stopID }), nil
}

// ReloadDataset atomically rebuilds the schedule/graph/index chain
// and swaps it in. Concurrent reloads serialize inside the
// Coordinator.
func (p *Planner) ReloadDataset(ctx context.Context) error {
	if err := p.coordinator.Reload(ctx); err != nil {
		if errors.Is(err, parse.ErrDatasetIncomplete) {
			return fmt.Errorf("%w: %v", ErrDatasetIncomplete, err)
		}
		return fmt.Errorf("%w: %v", ErrTransportError, err)
	}
	return nil
}

func (p *Planner) fetch(ctx context.Context, mode model.Mode, kind realtime.FeedKind) ([]byte, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("%w: no live-feed fetcher configured", ErrRealtimeUnavailable)
	}
	data, err := p.fetcher.Fetch(ctx, mode, kind)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTransportError, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRealtimeUnavailable, err)
	}
	return data, nil
}

func filterAlerts(alerts []model.Alert, match func(model.InformedEntity) bool) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		for _, ie := range a.InformedEntities {
			if match(ie) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func translateRouterErr(err error) error {
	if errors.Is(err, router.ErrCancelled) {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	if errors.Is(err, router.ErrNoRouteFound) {
		return fmt.Errorf("%w: %v", ErrNoRouteFound, err)
	}
	return err
}

// normalizeWhen fills in an unset date/earliestDeparture pair from the
// current wall-clock time (UTC; the dataset carries no single
// canonical timezone across modes to anchor "now" more precisely
// against). A caller-supplied date with earliestDeparture <= 0 is
// treated as "start of that date's search window".
func normalizeWhen(date string, earliestDeparture int) (string, int) {
	if date == "" {
		now := time.Now().UTC()
		date = now.Format("20060102")
		if earliestDeparture <= 0 {
			earliestDeparture = now.Hour()*3600 + now.Minute()*60 + now.Second()
		}
	}
	return date, earliestDeparture
}
