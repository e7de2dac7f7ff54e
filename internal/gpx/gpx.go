// Package gpx computes route geometry and renders waypoint sequences as
// GPX 1.1 documents. Everything in this package is a pure function of its
// input: no state, no I/O, safe to call from concurrent request handlers.
package gpx

// Waypoint is a single geographic point along a route. Lat and Lng are
// decimal degrees (WGS84). Elevation is optional and unit-preserving: the
// package never converts between meters and feet.
type Waypoint struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Elevation   *float64 `json:"elevation,omitempty"`
	Name        string   `json:"name,omitempty"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Route is an ordered waypoint sequence plus document metadata. The waypoint
// order defines travel direction and is never reordered by this package.
type Route struct {
	Name         string
	Description  string
	Author       string
	Waypoints    []Waypoint
	IncludeTrack bool
}

// Waypoint type tags recognized by the symbol table. The set is open:
// unrecognized tags are passed through as plain text and mapped to the
// default symbol.
const (
	TypeStart     = "start"
	TypeEnd       = "end"
	TypeWaypoint  = "waypoint"
	TypeCampsite  = "campsite"
	TypeWater     = "water"
	TypeFuel      = "fuel"
	TypeHazard    = "hazard"
	TypeViewpoint = "viewpoint"
)

// defaultSymbol is emitted for waypoints whose type has no table entry.
const defaultSymbol = "Waypoint"

// waypointSymbols maps waypoint type tags to the Garmin-compatible symbol
// names consumers expect in <sym> elements.
var waypointSymbols = map[string]string{
	TypeStart:     "Flag, Green",
	TypeEnd:       "Flag, Red",
	TypeCampsite:  "Campground",
	TypeWater:     "Water Source",
	TypeFuel:      "Gas Station",
	TypeHazard:    "Danger Area",
	TypeViewpoint: "Scenic Area",
}

// SymbolFor returns the GPX symbol name for a waypoint type tag.
func SymbolFor(waypointType string) string {
	if sym, ok := waypointSymbols[waypointType]; ok {
		return sym
	}
	return defaultSymbol
}
