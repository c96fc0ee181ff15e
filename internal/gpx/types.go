package gpx

import (
	"encoding/xml"
	"strings"
)

// Namespaces written into every exported document.
const (
	NamespaceGPX   = "http://www.topografix.com/GPX/1/1"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceTPX   = "http://www.garmin.com/xmlschemas/TrackPointExtension/v1"
	NamespaceGPXX  = "http://www.garmin.com/xmlschemas/GpxExtensions/v3"
	SchemaLocation = NamespaceGPX + " http://www.topografix.com/GPX/1/1/gpx.xsd " + NamespaceGPXX + " http://www.garmin.com/xmlschemas/GpxExtensionsv3.xsd " + NamespaceTPX + " http://www.garmin.com/xmlschemas/TrackPointExtensionv1.xsd"
	DefaultCreator = "gpxtotal"
	DefaultVersion = "1.1"
)

// Point represents a GPS track or route point as it appears in the file.
// Optional children stay as pointers so that "absent" and "zero" differ.
type Point struct {
	Lat       float64  `xml:"lat,attr"`
	Lon       float64  `xml:"lon,attr"`
	Elevation *float64 `xml:"ele"`
	Time      string   `xml:"time"`

	Extensions PointExtensions `xml:"extensions"`
}

// PointExtensions holds the Garmin TrackPointExtension block. Element names
// match on local name so any namespace prefix is accepted.
type PointExtensions struct {
	TrackPoint TrackPointExtension `xml:"TrackPointExtension"`
}

// TrackPointExtension carries per-point sensor readings.
type TrackPointExtension struct {
	HR    *float64 `xml:"hr"`
	ATemp *float64 `xml:"atemp"`
	Cad   *float64 `xml:"cad"`
}

// Waypoint is a named point of interest.
type Waypoint struct {
	Lat         float64  `xml:"lat,attr"`
	Lon         float64  `xml:"lon,attr"`
	Elevation   *float64 `xml:"ele"`
	Name        string   `xml:"name"`
	Description string   `xml:"desc"`
	Comment     string   `xml:"cmt"`
	Symbol      string   `xml:"sym"`
}

// Track represents a GPX track with segments
type Track struct {
	Name     string         `xml:"name"`
	Segments []TrackSegment `xml:"trkseg"`
}

// TrackSegment represents a track segment
type TrackSegment struct {
	Points []Point `xml:"trkpt"`
}

// Route is read as a single point sequence.
type Route struct {
	Name   string  `xml:"name"`
	Points []Point `xml:"rtept"`
}

// FileExtensions is the top-level extensions block. gpx.studio style files
// store the trace color here.
type FileExtensions struct {
	Color string `xml:"color,omitempty"`
}

// GPX represents the full GPX file structure
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`

	Metadata   Metadata       `xml:"metadata"`
	Waypoints  []Waypoint     `xml:"wpt"`
	Routes     []Route        `xml:"rte"`
	Tracks     []Track        `xml:"trk"`
	Extensions FileExtensions `xml:"extensions"`
}

// Metadata represents GPX metadata
type Metadata struct {
	Name        string `xml:"name"`
	Description string `xml:"desc"`
}

// Title returns the first non-empty name found in the file.
func (g *GPX) Title() string {
	if name := strings.TrimSpace(g.Metadata.Name); name != "" {
		return name
	}
	for _, trk := range g.Tracks {
		if name := strings.TrimSpace(trk.Name); name != "" {
			return name
		}
	}
	for _, rte := range g.Routes {
		if name := strings.TrimSpace(rte.Name); name != "" {
			return name
		}
	}
	return ""
}
