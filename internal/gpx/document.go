package gpx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EncodeString escapes the five XML special characters using named entities.
// It is escape-only: already escaped text gets escaped again.
func EncodeString(value string) string {
	return escaper.Replace(value)
}

// EscapedText is written through EncodeString instead of the encoder's own
// escaping, which would produce numeric entities for quotes.
type EscapedText string

func (t EscapedText) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	type inner struct {
		Content string `xml:",innerxml"`
	}

	return e.EncodeElement(inner{Content: EncodeString(string(t))}, start)
}

// Document is an exported GPX 1.1 file. Element order follows the gpx.studio
// layout: metadata, one track, waypoints, then the optional color block.
type Document struct {
	XMLName  xml.Name `xml:"gpx"`
	XMLNSXSI string   `xml:"xmlns:xsi,attr"`
	XMLNS    string   `xml:"xmlns,attr"`
	XSI      string   `xml:"xsi:schemaLocation,attr"`

	XMLNSGPXTPX string `xml:"xmlns:gpxtpx,attr"`
	XMLNSGPXX   string `xml:"xmlns:gpxx,attr"`

	Version string `xml:"version,attr"`
	Creator string `xml:"creator,attr"`

	Metadata   DocumentMetadata `xml:"metadata"`
	Track      DocumentTrack    `xml:"trk"`
	Waypoints  []DocumentWpt    `xml:"wpt"`
	Extensions *FileExtensions  `xml:"extensions,omitempty"`
}

// DocumentMetadata names the activity.
type DocumentMetadata struct {
	Name   string `xml:"name"`
	Author string `xml:"author"`
	Type   string `xml:"type"`
	Link   Link   `xml:"link"`
}

// Link is a GPX linkType.
type Link struct {
	Href string `xml:"href,attr"`
}

// DocumentTrack wraps every exported segment.
type DocumentTrack struct {
	Segments []DocumentSegment `xml:"trkseg"`
}

// DocumentSegment is one exported layer.
type DocumentSegment struct {
	Points []DocumentPoint `xml:"trkpt"`
}

// DocumentPoint holds preformatted values so precision is fixed on output.
type DocumentPoint struct {
	Lat        string              `xml:"lat,attr"`
	Lon        string              `xml:"lon,attr"`
	Elevation  string              `xml:"ele,omitempty"`
	Time       string              `xml:"time,omitempty"`
	Extensions *DocumentExtensions `xml:"extensions,omitempty"`
}

// DocumentExtensions is the per-point Garmin block.
type DocumentExtensions struct {
	TrackPoint DocumentTrackPoint `xml:"gpxtpx:TrackPointExtension"`
}

// DocumentTrackPoint carries sensor values already formatted.
type DocumentTrackPoint struct {
	HR    string `xml:"gpxtpx:hr,omitempty"`
	ATemp string `xml:"gpxtpx:atemp,omitempty"`
	Cad   string `xml:"gpxtpx:cad,omitempty"`
}

// DocumentWpt is an exported waypoint.
type DocumentWpt struct {
	Lat         string      `xml:"lat,attr"`
	Lon         string      `xml:"lon,attr"`
	Elevation   string      `xml:"ele,omitempty"`
	Name        EscapedText `xml:"name"`
	Description EscapedText `xml:"desc"`
	Comment     EscapedText `xml:"cmt"`
	Symbol      EscapedText `xml:"sym"`
}

// NewDocument returns a document with the fixed envelope filled in.
func NewDocument(activityType, link string) *Document {
	return &Document{
		XMLNSXSI:    NamespaceXSI,
		XMLNS:       NamespaceGPX,
		XSI:         SchemaLocation,
		XMLNSGPXTPX: NamespaceTPX,
		XMLNSGPXX:   NamespaceGPXX,
		Version:     DefaultVersion,
		Creator:     DefaultCreator,
		Metadata: DocumentMetadata{
			Name:   "Activity",
			Author: DefaultCreator,
			Type:   activityType,
			Link:   Link{Href: link},
		},
	}
}

// WriteToWriter writes the document to an io.Writer
func (d *Document) WriteToWriter(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "    ")

	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode GPX: %w", err)
	}

	return nil
}

// Text renders the document to a string.
func (d *Document) Text() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteToWriter(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
