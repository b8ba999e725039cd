// Package router implements the Connection Scan Router (C5): the
// calendar-filtered, time-windowed Connection Scan Algorithm, its
// multi-round transfer relaxation, and k-alternative search by
// connection banning. Grounded directly on
// original_source/src/routing/journey_planner.py.
package router

import (
	"context"
	"errors"
	"time"

	"tidbyt.dev/transit/graph"
	"tidbyt.dev/transit/model"
)

// ErrNoRouteFound is returned when the destination is unreachable
// within the query's constraints.
var ErrNoRouteFound = errors.New("no route found")

// ErrCancelled is returned when ctx is cancelled mid-scan.
var ErrCancelled = errors.New("cancelled")

const (
	defaultSearchWindow = 4 * time.Hour
	farFutureDays       = 7
	farFutureCap        = 1000
)

// CalendarView answers "is this service_id active on this date"
// queries. The router never reads raw Calendar/CalendarException rows
// itself; schedule.Calendar is the implementation built from the
// loaded schedule.Stores.
type CalendarView interface {
	// ActiveOn returns whether serviceID operates on date (YYYYMMDD).
	ActiveOn(serviceID string, date string) bool
}

// BannedConnection identifies a connection to exclude from the scan,
// used by k-alternative search.
type BannedConnection struct {
	FromStopID string
	ToStopID   string
	TripID     string
}

// Request is one routing query.
type Request struct {
	Origin              string
	Destination         string
	EarliestDeparture   int    // seconds since midnight of Date
	Date                string // YYYYMMDD, wall-clock date of EarliestDeparture
	MaxTransfers        int
	BannedConnections   []BannedConnection
	SameModeOnly        bool // restrict the scan to a single mode's connections
	Mode                model.Mode
}

// Result is the router's raw output: per-stop earliest arrival and
// the predecessor chain, handed to package itinerary for
// reconstruction.
type Result struct {
	Destination      string
	EarliestArrival   map[string]int
	Predecessor      map[string]model.Connection
	Reached          bool
}

type label struct {
	arrival      int
	currentTrip  string
	transfersUsed int
}

// FindPath runs the full C5 algorithm: calendar-filtered slice
// selection, Phase 1 scan, Phase 2 transfer-relaxation rounds.
func FindPath(ctx context.Context, idx *graph.Index, cal CalendarView, req Request) (*Result, error) {
	if req.MaxTransfers < 0 {
		req.MaxTransfers = 4
	}

	banned := map[BannedConnection]bool{}
	for _, b := range req.BannedConnections {
		banned[b] = true
	}

	slice, err := selectSlice(idx, cal, req)
	if err != nil {
		return nil, err
	}

	labels := map[string]*label{}
	labels[req.Origin] = &label{arrival: req.EarliestDeparture, currentTrip: ""}
	predecessor := map[string]model.Connection{}

	rounds := req.MaxTransfers + 1
	if rounds > 3 {
		rounds = 3
	}

	if err := scan(ctx, slice, banned, labels, predecessor, req); err != nil {
		return nil, err
	}

	for round := 0; round < rounds; round++ {
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}

		improved := relaxTransfers(idx, banned, labels, predecessor, req)
		if err := scan(ctx, slice, banned, labels, predecessor, req); err != nil {
			return nil, err
		}
		if !improved {
			break
		}
	}

	result := &Result{
		Destination:     req.Destination,
		EarliestArrival: map[string]int{},
		Predecessor:     predecessor,
	}
	for stop, l := range labels {
		result.EarliestArrival[stop] = l.arrival
	}
	if _, ok := labels[req.Destination]; ok {
		result.Reached = true
	}
	if !result.Reached {
		return result, ErrNoRouteFound
	}

	return result, nil
}

// scan is Phase 1 (and is re-run after every Phase 2 round): iterate
// the filtered, sorted slice once, relaxing earliest-arrival labels.
func scan(ctx context.Context, slice []model.Connection, banned map[BannedConnection]bool, labels map[string]*label, predecessor map[string]model.Connection, req Request) error {
	destLabel, destReached := labels[req.Destination]

	for i, c := range slice {
		if i%4096 == 0 {
			select {
			case <-ctx.Done():
				return ErrCancelled
			default:
			}
		}

		if banned[BannedConnection{c.FromStopID, c.ToStopID, c.TripID}] {
			continue
		}

		fromLabel, ok := labels[c.FromStopID]
		if !ok || c.DepartureTime < fromLabel.arrival {
			continue
		}

		if destReached && c.DepartureTime > destLabel.arrival {
			break
		}

		toLabel, ok := labels[c.ToStopID]
		if ok && c.ArrivalTime >= toLabel.arrival {
			continue
		}

		transfersUsed := fromLabel.transfersUsed
		isTripChange := fromLabel.currentTrip != "" && fromLabel.currentTrip != c.TripID
		if isTripChange || (c.IsTransfer && fromLabel.currentTrip != "") {
			transfersUsed++
		}
		if transfersUsed > req.MaxTransfers {
			continue
		}

		labels[c.ToStopID] = &label{
			arrival:       c.ArrivalTime,
			currentTrip:   c.TripID,
			transfersUsed: transfersUsed,
		}
		predecessor[c.ToStopID] = c

		if c.ToStopID == req.Destination {
			destLabel = labels[c.ToStopID]
			destReached = true
		}
	}

	return nil
}

// relaxTransfers is Phase 2: propose arrivals via every transfer
// connection reachable from a finite label, independent of the
// chronological slice. Returns whether any label improved.
func relaxTransfers(idx *graph.Index, banned map[BannedConnection]bool, labels map[string]*label, predecessor map[string]model.Connection, req Request) bool {
	improved := false

	for _, c := range idx.Connections {
		if !c.IsTransfer {
			continue
		}
		if banned[BannedConnection{c.FromStopID, c.ToStopID, c.TripID}] {
			continue
		}

		fromLabel, ok := labels[c.FromStopID]
		if !ok {
			continue
		}

		proposedArrival := fromLabel.arrival + c.TravelTimeSeconds

		toLabel, reached := labels[c.ToStopID]
		if reached && proposedArrival >= toLabel.arrival {
			continue
		}

		transfersUsed := fromLabel.transfersUsed + 1
		if transfersUsed > req.MaxTransfers {
			continue
		}

		labels[c.ToStopID] = &label{
			arrival:       proposedArrival,
			currentTrip:   "",
			transfersUsed: transfersUsed,
		}
		predecessor[c.ToStopID] = model.Connection{
			FromStopID:        c.FromStopID,
			ToStopID:          c.ToStopID,
			DepartureTime:     fromLabel.arrival,
			ArrivalTime:       proposedArrival,
			TravelTimeSeconds: c.TravelTimeSeconds,
			IsTransfer:        true,
		}
		improved = true
	}

	return improved
}

// selectSlice implements the three-tier calendar/time-window
// selection spec.md §4.5 describes: today's window, overnight
// rollover, then a 7-day-ahead far-future fallback capped at 1000
// connections. The tiers are tried in strict sequence; the cap
// applies only to the far-future tier.
func selectSlice(idx *graph.Index, cal CalendarView, req Request) ([]model.Connection, error) {
	horizon := int(defaultSearchWindow.Seconds())

	today, todayScheduled := filterConnections(idx, cal, req, req.Date, req.EarliestDeparture, 86400)
	if todayScheduled > 0 {
		return today, nil
	}

	if req.EarliestDeparture+horizon > 86400 {
		tomorrow := addDays(req.Date, 1)
		rolloverEnd := (req.EarliestDeparture + horizon) - 86400
		overnight, overnightScheduled := filterConnections(idx, cal, req, tomorrow, 0, rolloverEnd)
		if overnightScheduled > 0 {
			return overnight, nil
		}
	}

	for d := 1; d <= farFutureDays; d++ {
		date := addDays(req.Date, d)
		day, dayScheduled := filterConnections(idx, cal, req, date, 0, 86400)
		if dayScheduled > 0 {
			if len(day) > farFutureCap {
				day = day[:farFutureCap]
			}
			return day, nil
		}
	}

	return nil, ErrNoRouteFound
}

func addDays(date string, days int) string {
	t, err := time.ParseInLocation("20060102", date, time.UTC)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format("20060102")
}

// filterConnections returns the connections kept for (date, start, end)
// together with how many of them are scheduled (non-transfer)
// connections. Transfer connections are always kept (Phase 2 needs
// them regardless of date), so the scheduled count — not len(out) — is
// what tells selectSlice whether this tier actually has any service.
func filterConnections(idx *graph.Index, cal CalendarView, req Request, date string, start, end int) ([]model.Connection, int) {
	out := make([]model.Connection, 0)
	scheduled := 0
	for _, c := range idx.Connections {
		if req.SameModeOnly {
			if mode, ok := idx.Agg.ModeOfStop(c.FromStopID); !ok || mode != req.Mode {
				continue
			}
		}
		if c.IsTransfer {
			out = append(out, c)
			continue
		}
		if c.DepartureTime < start || c.DepartureTime >= end {
			continue
		}
		if !cal.ActiveOn(c.ServiceID, date) {
			continue
		}
		out = append(out, c)
		scheduled++
	}
	return out, scheduled
}
