package parse

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gocarina/gocsv"

	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/storage"
)

type RouteCSV struct {
	ID        string `csv:"route_id"`
	AgencyID  string `csv:"agency_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Type      string `csv:"route_type"`
	Color     string `csv:"route_color"`
	TextColor string `csv:"route_text_color"`
}

func legalRouteType(t model.RouteType) bool {
	return (t >= 0 && t <= 7) || (t >= 11 && t <= 12)
}

func validRouteColor(color string) bool {
	if len(color) != 6 {
		return false
	}
	_, err := hex.DecodeString(color)
	return err == nil
}

// ParseRoutes returns the set of known route IDs.
func ParseRoutes(writer storage.FeedWriter, data io.Reader, agency map[string]bool, log *slog.Logger) (map[string]bool, error) {
	routes := map[string]bool{}

	row := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(r *RouteCSV) error {
		row++

		if r.ID == "" || routes[r.ID] {
			log.Warn("skipping malformed route row", "row", row, "reason", "missing or duplicate route_id")
			return nil
		}
		if len(agency) > 1 && r.AgencyID == "" {
			log.Warn("skipping malformed route row", "row", row, "reason", "missing agency_id in multi-agency feed", "route_id", r.ID)
			return nil
		}
		if r.AgencyID != "" && !agency[r.AgencyID] {
			log.Warn("skipping malformed route row", "row", row, "reason", "unknown agency_id", "route_id", r.ID)
			return nil
		}
		if r.ShortName == "" && r.LongName == "" {
			log.Warn("skipping malformed route row", "row", row, "reason", "no short_name or long_name", "route_id", r.ID)
			return nil
		}
		routeType, err := strconv.Atoi(r.Type)
		if err != nil || !legalRouteType(model.RouteType(routeType)) {
			log.Warn("skipping malformed route row", "row", row, "reason", "invalid route_type", "route_id", r.ID, "route_type", r.Type)
			return nil
		}

		if r.Color == "" {
			r.Color = "FFFFFF"
		} else if !validRouteColor(r.Color) {
			log.Warn("skipping malformed route row", "row", row, "reason", "invalid route_color", "route_id", r.ID)
			return nil
		}
		if r.TextColor == "" {
			r.TextColor = "000000"
		} else if !validRouteColor(r.TextColor) {
			log.Warn("skipping malformed route row", "row", row, "reason", "invalid route_text_color", "route_id", r.ID)
			return nil
		}

		routes[r.ID] = true
		if err := writer.WriteRoute(model.Route{
			ID:        r.ID,
			AgencyID:  r.AgencyID,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Type:      model.RouteType(routeType),
			Color:     r.Color,
			TextColor: r.TextColor,
		}); err != nil {
			return fmt.Errorf("writing route: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling routes csv: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no usable route records", ErrDatasetIncomplete)
	}

	return routes, nil
}
