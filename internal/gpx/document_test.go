package gpx

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsedGPX mirrors the subset of the GPX schema the tests assert on.
type parsedGPX struct {
	XMLName  xml.Name `xml:"gpx"`
	Version  string   `xml:"version,attr"`
	Creator  string   `xml:"creator,attr"`
	Metadata struct {
		Name   string `xml:"name"`
		Desc   string `xml:"desc"`
		Author struct {
			Name string `xml:"name"`
		} `xml:"author"`
		Time string `xml:"time"`
	} `xml:"metadata"`
	Waypoints []struct {
		Lat  float64 `xml:"lat,attr"`
		Lon  float64 `xml:"lon,attr"`
		Name string  `xml:"name"`
		Sym  string  `xml:"sym"`
	} `xml:"wpt"`
	Routes []struct {
		Name   string `xml:"name"`
		Points []struct {
			Lat  float64  `xml:"lat,attr"`
			Lon  float64  `xml:"lon,attr"`
			Ele  *float64 `xml:"ele"`
			Name string   `xml:"name"`
		} `xml:"rtept"`
	} `xml:"rte"`
	Tracks []struct {
		Name     string `xml:"name"`
		Segments []struct {
			Points []struct {
				Lat float64  `xml:"lat,attr"`
				Lon float64  `xml:"lon,attr"`
				Ele *float64 `xml:"ele"`
			} `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

func parseOutput(t *testing.T, out string) parsedGPX {
	t.Helper()
	var doc parsedGPX
	require.NoError(t, xml.Unmarshal([]byte(out), &doc), "output must be well-formed XML")
	return doc
}

func testRoute() Route {
	return Route{
		Name:         "Test Loop",
		Description:  "Short test route",
		IncludeTrack: true,
		Waypoints: []Waypoint{
			{Lat: 38.0, Lng: -109.0, Elevation: elev(1000), Name: "Trailhead", Type: TypeStart},
			{Lat: 38.01, Lng: -109.0, Elevation: elev(1100)},
			{Lat: 38.02, Lng: -109.01, Elevation: elev(1150), Name: "Overlook", Type: TypeViewpoint},
		},
	}
}

func TestGenerate_DocumentShape(t *testing.T) {
	out, err := Generate(testRoute())
	require.NoError(t, err)

	doc := parseOutput(t, out)
	assert.Equal(t, "1.1", doc.Version)
	assert.Equal(t, "TrailBlazer AI", doc.Creator)
	assert.Equal(t, "Test Loop", doc.Metadata.Name)
	assert.Equal(t, "Short test route", doc.Metadata.Desc)
	assert.Equal(t, DefaultAuthor, doc.Metadata.Author.Name)
	assert.NotEmpty(t, doc.Metadata.Time)

	require.Len(t, doc.Routes, 1)
	assert.Equal(t, "Test Loop", doc.Routes[0].Name)
}

func TestGenerate_RoutePointsPreserveOrder(t *testing.T) {
	route := testRoute()
	out, err := Generate(route)
	require.NoError(t, err)

	doc := parseOutput(t, out)
	require.Len(t, doc.Routes, 1)
	require.Len(t, doc.Routes[0].Points, len(route.Waypoints))

	for i, w := range route.Waypoints {
		assert.Equal(t, w.Lat, doc.Routes[0].Points[i].Lat)
		assert.Equal(t, w.Lng, doc.Routes[0].Points[i].Lon)
	}
}

func TestGenerate_WaypointFiltering(t *testing.T) {
	out, err := Generate(testRoute())
	require.NoError(t, err)

	// The unnamed, untyped middle waypoint is excluded from <wpt> but still
	// present in <rte> and <trk>.
	doc := parseOutput(t, out)
	require.Len(t, doc.Waypoints, 2)
	assert.Equal(t, "Trailhead", doc.Waypoints[0].Name)
	assert.Equal(t, "Flag, Green", doc.Waypoints[0].Sym)
	assert.Equal(t, "Overlook", doc.Waypoints[1].Name)
	assert.Equal(t, "Scenic Area", doc.Waypoints[1].Sym)

	assert.Len(t, doc.Routes[0].Points, 3)
	require.Len(t, doc.Tracks, 1)
	assert.Len(t, doc.Tracks[0].Segments[0].Points, 3)
}

func TestGenerate_UnrecognizedTypeMapsToDefaultSymbol(t *testing.T) {
	route := Route{
		Name: "Odd Types",
		Waypoints: []Waypoint{
			{Lat: 1, Lng: 2, Name: "A", Type: "mine-shaft"},
		},
	}
	out, err := Generate(route)
	require.NoError(t, err)

	doc := parseOutput(t, out)
	require.Len(t, doc.Waypoints, 1)
	assert.Equal(t, "Waypoint", doc.Waypoints[0].Sym)
}

func TestGenerate_TrackToggle(t *testing.T) {
	route := testRoute()

	route.IncludeTrack = false
	out, err := Generate(route)
	require.NoError(t, err)
	assert.Empty(t, parseOutput(t, out).Tracks)

	route.IncludeTrack = true
	out, err = Generate(route)
	require.NoError(t, err)

	doc := parseOutput(t, out)
	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, "Test Loop", doc.Tracks[0].Name)
	require.Len(t, doc.Tracks[0].Segments, 1)

	// Track points carry elevation only, never names.
	seg := out[strings.Index(out, "<trkseg>"):]
	assert.NotContains(t, seg, "<name>")
}

func TestGenerate_EscapesUserText(t *testing.T) {
	route := Route{
		Name:         `Moab <Rim> & "Chutes"`,
		Description:  "steep & <loose>",
		Author:       `O'Brien <dev>`,
		IncludeTrack: true,
		Waypoints: []Waypoint{
			{Lat: 38.0, Lng: -109.0, Name: `Ledge <3> & "drop"`, Type: TypeHazard, Description: "rock & <sand>"},
		},
	}

	out, err := Generate(route)
	require.NoError(t, err)

	assert.NotContains(t, out, "<Rim>")
	assert.NotContains(t, out, "<loose>")
	assert.NotContains(t, out, "<3>")
	assert.NotContains(t, out, "<dev>")

	doc := parseOutput(t, out)
	assert.Equal(t, `Moab <Rim> & "Chutes"`, doc.Metadata.Name)
	assert.Equal(t, `O'Brien <dev>`, doc.Metadata.Author.Name)
	require.Len(t, doc.Waypoints, 1)
	assert.Equal(t, `Ledge <3> & "drop"`, doc.Waypoints[0].Name)

	// The duplicated name sites in rte and trk are escaped independently.
	assert.Equal(t, `Moab <Rim> & "Chutes"`, doc.Routes[0].Name)
	assert.Equal(t, `Moab <Rim> & "Chutes"`, doc.Tracks[0].Name)
}

func TestGenerate_EmptyRouteStillValid(t *testing.T) {
	out, err := Generate(Route{Name: "Empty"})
	require.NoError(t, err)

	doc := parseOutput(t, out)
	assert.Empty(t, doc.Waypoints)
	require.Len(t, doc.Routes, 1)
	assert.Empty(t, doc.Routes[0].Points)
	assert.Empty(t, doc.Tracks)
	assert.True(t, strings.HasPrefix(out, xml.Header))
}

func TestGenerate_ExplicitAuthor(t *testing.T) {
	out, err := Generate(Route{Name: "Named", Author: "Ranger Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Ranger Bob", parseOutput(t, out).Metadata.Author.Name)
}

func TestGenerate_OmitsMissingElevation(t *testing.T) {
	route := Route{
		Name:         "Partial Elevation",
		IncludeTrack: true,
		Waypoints: []Waypoint{
			{Lat: 38.0, Lng: -109.0, Elevation: elev(1200)},
			{Lat: 38.01, Lng: -109.0},
		},
	}
	out, err := Generate(route)
	require.NoError(t, err)

	doc := parseOutput(t, out)
	points := doc.Routes[0].Points
	require.Len(t, points, 2)
	require.NotNil(t, points[0].Ele)
	assert.Equal(t, 1200.0, *points[0].Ele)
	assert.Nil(t, points[1].Ele)
}
