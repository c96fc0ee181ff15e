// Package export renders trace collections as GPX 1.1 documents.
package export

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/planbiir/gpxtotal/internal/gpx"
	"github.com/planbiir/gpxtotal/internal/trace"
)

// ErrTraceIndex is returned when a single-trace export names a trace that
// does not exist.
var ErrTraceIndex = errors.New("trace index out of range")

// MergedName is the file name of the merged document.
const MergedName = "track.gpx"

// Activity types written into the metadata block.
const (
	Cycling = "Cycling"
	Running = "Running"
)

const (
	timeLayout  = "2006-01-02T15:04:05.000Z"
	projectLink = "https://github.com/planbiir/gpxtotal"
)

// Source is the part of a trace the serializer reads.
type Source interface {
	Name() string
	Color() (string, bool)
	Layers() []trace.Layer
	Waypoints() []trace.Waypoint
	CachedAdditionalData() trace.SensorData
}

// Options selects what is written and how output is partitioned.
type Options struct {
	// Merge concatenates all traces into one document when there is more
	// than one trace and no single trace is selected.
	Merge bool

	IncludeTime  bool
	IncludeHR    bool
	IncludeATemp bool
	IncludeCad   bool

	// Trace limits the export to one trace.
	Trace *int

	// Activity is Cycling or Running.
	Activity string

	// Fallback is the collection-wide sensor average, used for points and
	// traces lacking a reading.
	Fallback trace.SensorData

	Logger zerolog.Logger
}

// Document is one rendered file.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Render serializes sources into one document per trace, or a single merged
// document.
func Render(sources []Source, opts Options) ([]Document, error) {
	first, last := 0, len(sources)
	if opts.Trace != nil {
		k := *opts.Trace
		if k < 0 || k >= len(sources) {
			return nil, fmt.Errorf("%w: %d of %d", ErrTraceIndex, k, len(sources))
		}
		first, last = k, k+1
	}
	activity := opts.Activity
	if activity == "" {
		activity = Cycling
	}

	merged := opts.Merge && len(sources) > 1 && opts.Trace == nil

	var output []Document
	doc := gpx.NewDocument(activity, projectLink)
	for i := first; i < last; i++ {
		src := sources[i]
		appendTrace(doc, src, opts)

		if merged {
			continue
		}
		if color, ok := src.Color(); ok {
			doc.Extensions = &gpx.FileExtensions{Color: color}
		}
		text, err := doc.Text()
		if err != nil {
			return nil, fmt.Errorf("render %q: %w", src.Name(), err)
		}
		output = append(output, Document{Name: src.Name() + ".gpx", Text: text})
		doc = gpx.NewDocument(activity, projectLink)
	}

	if merged {
		text, err := doc.Text()
		if err != nil {
			return nil, fmt.Errorf("render merged track: %w", err)
		}
		output = append(output, Document{Name: MergedName, Text: text})
	}

	opts.Logger.Debug().
		Int("documents", len(output)).
		Bool("merged", merged).
		Bool("time", opts.IncludeTime).
		Msg("rendered GPX")

	return output, nil
}

func appendTrace(doc *gpx.Document, src Source, opts Options) {
	avg := src.CachedAdditionalData()

	for _, layer := range src.Layers() {
		if !layer.HasPoints() {
			continue
		}
		seg := gpx.DocumentSegment{Points: make([]gpx.DocumentPoint, 0, len(layer.Points))}
		for i := range layer.Points {
			seg.Points = append(seg.Points, renderPoint(&layer.Points[i], avg, opts))
		}
		doc.Track.Segments = append(doc.Track.Segments, seg)
	}

	for _, w := range src.Waypoints() {
		doc.Waypoints = append(doc.Waypoints, renderWaypoint(w))
	}
}

func renderPoint(p *trace.Point, avg trace.SensorData, opts Options) gpx.DocumentPoint {
	out := gpx.DocumentPoint{
		Lat: formatCoord(p.Lat),
		Lon: formatCoord(p.Lon),
	}
	if p.Ele != nil {
		out.Elevation = formatElevation(*p.Ele)
	}
	if opts.IncludeTime && p.Time != nil {
		out.Time = p.Time.UTC().Format(timeLayout)
	}

	var ext gpx.DocumentTrackPoint
	if opts.IncludeHR {
		ext.HR = formatSensor(Resolve(intValue(p.HR), avg.HR, opts.Fallback.HR))
	}
	if opts.IncludeATemp {
		ext.ATemp = formatSensor(Resolve(p.ATemp, avg.ATemp, opts.Fallback.ATemp))
	}
	if opts.IncludeCad {
		ext.Cad = formatSensor(Resolve(intValue(p.Cad), avg.Cad, opts.Fallback.Cad))
	}
	if ext != (gpx.DocumentTrackPoint{}) {
		out.Extensions = &gpx.DocumentExtensions{TrackPoint: ext}
	}
	return out
}

func renderWaypoint(w trace.Waypoint) gpx.DocumentWpt {
	out := gpx.DocumentWpt{
		Lat:         formatCoord(w.Lat),
		Lon:         formatCoord(w.Lon),
		Name:        gpx.EscapedText(w.Name),
		Description: gpx.EscapedText(w.Description),
		Comment:     gpx.EscapedText(w.Comment),
		Symbol:      gpx.EscapedText(w.Symbol),
	}
	switch {
	case w.Anchor != nil && w.Anchor.Ele != nil:
		out.Elevation = formatElevation(*w.Anchor.Ele)
	case w.Ele != nil && *w.Ele >= 0:
		out.Elevation = formatElevation(*w.Ele)
	}
	return out
}

// Resolve returns the first present reading: the point's own value, then the
// trace average, then the collection average.
func Resolve(point, traceAvg, total *float64) *float64 {
	switch {
	case point != nil:
		return point
	case traceAvg != nil:
		return traceAvg
	default:
		return total
	}
}

func intValue(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatElevation(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatSensor(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
