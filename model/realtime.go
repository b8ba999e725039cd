package model

// VehiclePosition is a presentational snapshot of one vehicle as
// reported by a GTFS-Realtime VehiclePosition feed. Unlike Connection
// or Leg, it never feeds back into routing.
type VehiclePosition struct {
	VehicleID           string
	TripID              string
	RouteID             string
	DirectionID         int8
	Lat, Lon            float64
	Bearing             float64
	Speed               float64
	CurrentStopSequence uint32
	StopID              string
	OccupancyStatus     string
	Timestamp           uint64
}

type AlertCause string

const (
	AlertCauseUnknown         AlertCause = "unknown_cause"
	AlertCauseOther           AlertCause = "other_cause"
	AlertCauseTechnical       AlertCause = "technical_problem"
	AlertCauseStrike          AlertCause = "strike"
	AlertCauseDemonstration   AlertCause = "demonstration"
	AlertCauseAccident        AlertCause = "accident"
	AlertCauseHoliday         AlertCause = "holiday"
	AlertCauseWeather         AlertCause = "weather"
	AlertCauseMaintenance     AlertCause = "maintenance"
	AlertCauseConstruction    AlertCause = "construction"
	AlertCausePoliceActivity  AlertCause = "police_activity"
	AlertCauseMedicalEmergency AlertCause = "medical_emergency"
)

type AlertEffect string

const (
	AlertEffectNoService          AlertEffect = "no_service"
	AlertEffectReducedService     AlertEffect = "reduced_service"
	AlertEffectSignificantDelays  AlertEffect = "significant_delays"
	AlertEffectDetour             AlertEffect = "detour"
	AlertEffectAdditionalService  AlertEffect = "additional_service"
	AlertEffectModifiedService    AlertEffect = "modified_service"
	AlertEffectOther              AlertEffect = "other_effect"
	AlertEffectUnknown            AlertEffect = "unknown_effect"
	AlertEffectStopMoved          AlertEffect = "stop_moved"
	AlertEffectNoEffect           AlertEffect = "no_effect"
	AlertEffectAccessibilityIssue AlertEffect = "accessibility_issue"
)

type AlertSeverity string

const (
	AlertSeverityUnknown AlertSeverity = "unknown_severity"
	AlertSeverityInfo    AlertSeverity = "info"
	AlertSeverityWarning AlertSeverity = "warning"
	AlertSeveritySevere  AlertSeverity = "severe"
)

// ActivePeriod is a [Start, End) unix-second window during which an
// alert applies. A zero End means "until further notice".
type ActivePeriod struct {
	Start int64
	End    int64
}

// InformedEntity names one route/stop/trip an alert applies to. GTFS
// allows any combination of these to be set; an empty string means
// unset.
type InformedEntity struct {
	AgencyID    string
	RouteID     string
	RouteType   *RouteType
	StopID      string
	TripID      string
	DirectionID *int8
}

type Alert struct {
	ID               string
	Cause            AlertCause
	Effect           AlertEffect
	Severity         AlertSeverity
	HeaderText       string
	DescriptionText  string
	URL              string
	ActivePeriods    []ActivePeriod
	InformedEntities []InformedEntity
}
