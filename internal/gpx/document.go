package gpx

import (
	"encoding/xml"
	"fmt"
	"time"
)

const (
	gpxNamespace      = "http://www.topografix.com/GPX/1/1"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	gpxSchemaLocation = "http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd"

	// creatorName is stamped into the gpx creator attribute and used as the
	// metadata author when the route does not name one.
	creatorName = "TrailBlazer AI"
)

// DefaultAuthor is the author recorded in GPX metadata when a route carries
// no explicit author.
const DefaultAuthor = creatorName

// document is the serialized shape of a GPX 1.1 file. Element order follows
// the GPX schema: metadata, wpt*, rte, trk.
type document struct {
	XMLName        xml.Name   `xml:"gpx"`
	Version        string     `xml:"version,attr"`
	Creator        string     `xml:"creator,attr"`
	Namespace      string     `xml:"xmlns,attr"`
	XSINamespace   string     `xml:"xmlns:xsi,attr"`
	SchemaLocation string     `xml:"xsi:schemaLocation,attr"`
	Metadata       metadata   `xml:"metadata"`
	Waypoints      []wptEntry `xml:"wpt"`
	Route          rteEntry   `xml:"rte"`
	Track          *trkEntry  `xml:"trk,omitempty"`
}

type metadata struct {
	Name   string     `xml:"name"`
	Desc   string     `xml:"desc,omitempty"`
	Author authorInfo `xml:"author"`
	Time   string     `xml:"time"`
}

type authorInfo struct {
	Name string `xml:"name"`
}

type wptEntry struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele,omitempty"`
	Name string   `xml:"name,omitempty"`
	Desc string   `xml:"desc,omitempty"`
	Sym  string   `xml:"sym"`
}

type rteEntry struct {
	Name   string     `xml:"name"`
	Points []rtePoint `xml:"rtept"`
}

type rtePoint struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele,omitempty"`
	Name string   `xml:"name,omitempty"`
}

type trkEntry struct {
	Name    string     `xml:"name"`
	Segment trkSegment `xml:"trkseg"`
}

type trkSegment struct {
	Points []trkPoint `xml:"trkpt"`
}

type trkPoint struct {
	Lat float64  `xml:"lat,attr"`
	Lon float64  `xml:"lon,attr"`
	Ele *float64 `xml:"ele,omitempty"`
}

// Generate renders the route as a GPX 1.1 document string.
//
// Every waypoint appears as an <rtept> in sequence order; waypoints carrying
// a name or type additionally appear as standalone <wpt> markers with a
// symbol from the type table. When IncludeTrack is set, the same sequence is
// duplicated as a single <trk>/<trkseg> because downstream tools disagree on
// whether they import routes or tracks. All user-supplied text passes
// through the XML encoder, which escapes it at every insertion site.
//
// An empty waypoint list produces a structurally valid document with an
// empty route; signaling that condition is the caller's concern.
func Generate(route Route) (string, error) {
	author := route.Author
	if author == "" {
		author = DefaultAuthor
	}

	doc := document{
		Version:        "1.1",
		Creator:        creatorName,
		Namespace:      gpxNamespace,
		XSINamespace:   xsiNamespace,
		SchemaLocation: gpxSchemaLocation,
		Metadata: metadata{
			Name:   route.Name,
			Desc:   route.Description,
			Author: authorInfo{Name: author},
			Time:   time.Now().UTC().Format(time.RFC3339),
		},
		Route: rteEntry{Name: route.Name},
	}

	for _, w := range route.Waypoints {
		if w.Name != "" || w.Type != "" {
			doc.Waypoints = append(doc.Waypoints, wptEntry{
				Lat:  w.Lat,
				Lon:  w.Lng,
				Ele:  w.Elevation,
				Name: w.Name,
				Desc: w.Description,
				Sym:  SymbolFor(w.Type),
			})
		}

		doc.Route.Points = append(doc.Route.Points, rtePoint{
			Lat:  w.Lat,
			Lon:  w.Lng,
			Ele:  w.Elevation,
			Name: w.Name,
		})
	}

	if route.IncludeTrack {
		track := &trkEntry{Name: route.Name}
		for _, w := range route.Waypoints {
			track.Segment.Points = append(track.Segment.Points, trkPoint{
				Lat: w.Lat,
				Lon: w.Lng,
				Ele: w.Elevation,
			})
		}
		doc.Track = track
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal GPX document: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}
