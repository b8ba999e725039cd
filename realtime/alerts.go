package realtime

import (
	"fmt"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"tidbyt.dev/transit/model"
)

var causeNames = map[gtfsproto.Alert_Cause]model.AlertCause{
	gtfsproto.Alert_UNKNOWN_CAUSE:     model.AlertCauseUnknown,
	gtfsproto.Alert_OTHER_CAUSE:       model.AlertCauseOther,
	gtfsproto.Alert_TECHNICAL_PROBLEM: model.AlertCauseTechnical,
	gtfsproto.Alert_STRIKE:            model.AlertCauseStrike,
	gtfsproto.Alert_DEMONSTRATION:     model.AlertCauseDemonstration,
	gtfsproto.Alert_ACCIDENT:          model.AlertCauseAccident,
	gtfsproto.Alert_HOLIDAY:           model.AlertCauseHoliday,
	gtfsproto.Alert_WEATHER:           model.AlertCauseWeather,
	gtfsproto.Alert_MAINTENANCE:       model.AlertCauseMaintenance,
	gtfsproto.Alert_CONSTRUCTION:      model.AlertCauseConstruction,
	gtfsproto.Alert_POLICE_ACTIVITY:   model.AlertCausePoliceActivity,
	gtfsproto.Alert_MEDICAL_EMERGENCY: model.AlertCauseMedicalEmergency,
}

var effectNames = map[gtfsproto.Alert_Effect]model.AlertEffect{
	gtfsproto.Alert_NO_SERVICE:          model.AlertEffectNoService,
	gtfsproto.Alert_REDUCED_SERVICE:     model.AlertEffectReducedService,
	gtfsproto.Alert_SIGNIFICANT_DELAYS:  model.AlertEffectSignificantDelays,
	gtfsproto.Alert_DETOUR:              model.AlertEffectDetour,
	gtfsproto.Alert_ADDITIONAL_SERVICE:  model.AlertEffectAdditionalService,
	gtfsproto.Alert_MODIFIED_SERVICE:    model.AlertEffectModifiedService,
	gtfsproto.Alert_OTHER_EFFECT:        model.AlertEffectOther,
	gtfsproto.Alert_UNKNOWN_EFFECT:      model.AlertEffectUnknown,
	gtfsproto.Alert_STOP_MOVED:          model.AlertEffectStopMoved,
	gtfsproto.Alert_NO_EFFECT:           model.AlertEffectNoEffect,
	gtfsproto.Alert_ACCESSIBILITY_ISSUE: model.AlertEffectAccessibilityIssue,
}

var severityNames = map[gtfsproto.Alert_SeverityLevel]model.AlertSeverity{
	gtfsproto.Alert_UNKNOWN_SEVERITY: model.AlertSeverityUnknown,
	gtfsproto.Alert_INFO:             model.AlertSeverityInfo,
	gtfsproto.Alert_WARNING:          model.AlertSeverityWarning,
	gtfsproto.Alert_SEVERE:           model.AlertSeveritySevere,
}

// alertModes is the set of modes spec §4.7 says actually serve
// alerts; the other two must report an empty list, not an error.
var alertModes = map[model.Mode]bool{
	model.ModeMetro: true,
	model.ModeTram:  true,
}

// ModeHasAlerts reports whether mode publishes a service alerts feed.
func ModeHasAlerts(mode model.Mode) bool {
	return alertModes[mode]
}

// ParseAlerts decodes a GTFS-Realtime FeedMessage of Alert entities.
// Grounded on original_source/src/realtime/service_alerts.py's
// _parse_alert_entity and its CAUSE_MAP/EFFECT_MAP/SEVERITY_MAP.
func ParseAlerts(data []byte) ([]model.Alert, error) {
	f := &gtfsproto.FeedMessage{}
	if err := proto.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("unmarshaling alert feed: %w", err)
	}

	var out []model.Alert

	for _, entity := range f.GetEntity() {
		a := entity.GetAlert()
		if a == nil {
			continue
		}

		alert := model.Alert{
			ID:       entity.GetId(),
			Cause:    causeNames[a.GetCause()],
			Effect:   effectNames[a.GetEffect()],
			Severity: severityNames[a.GetSeverityLevel()],
			URL:      firstTranslation(a.GetUrl()),
			HeaderText:      firstTranslation(a.GetHeaderText()),
			DescriptionText: firstTranslation(a.GetDescriptionText()),
		}

		for _, p := range a.GetActivePeriod() {
			alert.ActivePeriods = append(alert.ActivePeriods, model.ActivePeriod{
				Start: int64(p.GetStart()),
				End:   int64(p.GetEnd()),
			})
		}

		for _, ie := range a.GetInformedEntity() {
			informed := model.InformedEntity{
				AgencyID: ie.GetAgencyId(),
				RouteID:  ie.GetRouteId(),
				StopID:   ie.GetStopId(),
			}
			if ie.RouteType != nil {
				rt := model.RouteType(ie.GetRouteType())
				informed.RouteType = &rt
			}
			if trip := ie.GetTrip(); trip != nil {
				informed.TripID = trip.GetTripId()
				if trip.DirectionId != nil {
					d := int8(trip.GetDirectionId())
					informed.DirectionID = &d
				}
			}
			alert.InformedEntities = append(alert.InformedEntities, informed)
		}

		out = append(out, alert)
	}

	return out, nil
}

func firstTranslation(ts *gtfsproto.TranslatedString) string {
	if ts == nil || len(ts.GetTranslation()) == 0 {
		return ""
	}
	return ts.GetTranslation()[0].GetText()
}
