package realtime

import (
	"fmt"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"tidbyt.dev/transit/model"
)

var occupancyNames = map[gtfsproto.VehiclePosition_OccupancyStatus]string{
	gtfsproto.VehiclePosition_EMPTY:                      "empty",
	gtfsproto.VehiclePosition_MANY_SEATS_AVAILABLE:       "many_seats_available",
	gtfsproto.VehiclePosition_FEW_SEATS_AVAILABLE:        "few_seats_available",
	gtfsproto.VehiclePosition_STANDING_ROOM_ONLY:         "standing_room_only",
	gtfsproto.VehiclePosition_CRUSHED_STANDING_ROOM_ONLY: "crushed_standing_room_only",
	gtfsproto.VehiclePosition_FULL:                       "full",
	gtfsproto.VehiclePosition_NOT_ACCEPTING_PASSENGERS:   "not_accepting_passengers",
	gtfsproto.VehiclePosition_NO_DATA_AVAILABLE:          "no_data_available",
	gtfsproto.VehiclePosition_NOT_BOARDABLE:              "not_boardable",
}

// ParseVehiclePositions decodes a GTFS-Realtime FeedMessage of
// VehiclePosition entities. Grounded on
// original_source/src/realtime/vehicle_positions.py's
// _parse_vehicle_entity, dropping its proprietary
// congestion_level/odometer fields since spec §4.7 doesn't name them.
func ParseVehiclePositions(data []byte) ([]model.VehiclePosition, error) {
	f := &gtfsproto.FeedMessage{}
	if err := proto.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("unmarshaling vehicle position feed: %w", err)
	}

	var out []model.VehiclePosition

	for _, entity := range f.GetEntity() {
		v := entity.GetVehicle()
		if v == nil {
			continue
		}

		pos := v.GetPosition()
		if pos == nil {
			continue
		}

		vehicleID := entity.GetId()
		if desc := v.GetVehicle(); desc != nil {
			if desc.GetId() != "" {
				vehicleID = desc.GetId()
			} else if desc.GetLabel() != "" {
				vehicleID = desc.GetLabel()
			}
		}

		vp := model.VehiclePosition{
			VehicleID:           vehicleID,
			Lat:                 float64(pos.GetLatitude()),
			Lon:                 float64(pos.GetLongitude()),
			Bearing:             float64(pos.GetBearing()),
			Speed:               float64(pos.GetSpeed()),
			CurrentStopSequence: v.GetCurrentStopSequence(),
			StopID:              v.GetStopId(),
			Timestamp:           v.GetTimestamp(),
			OccupancyStatus:     occupancyNames[v.GetOccupancyStatus()],
		}

		if trip := v.GetTrip(); trip != nil {
			vp.TripID = trip.GetTripId()
			vp.RouteID = trip.GetRouteId()
			vp.DirectionID = int8(trip.GetDirectionId())
		}

		out = append(out, vp)
	}

	return out, nil
}
