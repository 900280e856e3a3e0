package domain

const (
	PresenceOnline  = "ONLINE"
	PresenceOffline = "OFFLINE"
	PresenceBusy    = "BUSY"
)

// Radar socket message types.
const (
	MsgHeading      = "heading"
	MsgMagnetometer = "magnetometer"
	MsgLocation     = "location"
	MsgOptions      = "options"
	MsgNearby       = "nearby"
	MsgError        = "error"
)

// Error codes returned next to the human readable message.
const (
	CodeLocationUnavailable = "LOCATION_UNAVAILABLE"
	CodePoolUnavailable     = "CANDIDATE_POOL_UNAVAILABLE"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeStaleLocation       = "STALE_LOCATION"
	CodeInternal            = "INTERNAL"
)

// Search radius presets in meters offered to clients.
var SearchRadiusMeters = []float64{500, 1000, 2000, 5000, 10000}
