package trace

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/planbiir/gpxtotal/internal/geo"
	"github.com/planbiir/gpxtotal/internal/gpx"
)

// Trace is one independently recorded GPS track.
type Trace struct {
	id        uuid.UUID
	name      string
	index     int
	color     string
	colorSet  bool
	layers    []Layer
	waypoints []Waypoint
	opts      Options

	avg SensorData
}

// New builds a trace from layers and waypoints. At least one layer must carry
// points.
func New(name string, layers []Layer, waypoints []Waypoint, opts Options) (*Trace, error) {
	hasPoints := false
	for _, l := range layers {
		if l.HasPoints() {
			hasPoints = true
			break
		}
	}
	if !hasPoints {
		return nil, ErrNoPoints
	}

	t := &Trace{
		id:        uuid.New(),
		name:      name,
		layers:    layers,
		waypoints: waypoints,
		opts:      opts,
	}
	t.anchorWaypoints()
	t.AverageAdditionalData()
	return t, nil
}

// Load parses a GPX stream into a trace. An empty name falls back to the
// name stored in the file.
func Load(r io.Reader, name string, opts Options) (*Trace, error) {
	doc, err := gpx.ParseReader(r)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, name, opts)
}

// LoadFile parses the GPX file at path. An empty name falls back to the file
// base name without extension.
func LoadFile(path, name string, opts Options) (*Trace, error) {
	doc, err := gpx.Parse(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return fromDocument(doc, name, opts)
}

func fromDocument(doc *gpx.GPX, name string, opts Options) (*Trace, error) {
	if name == "" {
		name = doc.Title()
	}
	if name == "" {
		name = "track"
	}

	var layers []Layer
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			layers = append(layers, Layer{Points: convertPoints(seg.Points)})
		}
	}
	for _, rte := range doc.Routes {
		layers = append(layers, Layer{Points: convertPoints(rte.Points)})
	}

	waypoints := make([]Waypoint, 0, len(doc.Waypoints))
	for _, w := range doc.Waypoints {
		waypoints = append(waypoints, Waypoint{
			Lat:         w.Lat,
			Lon:         w.Lon,
			Ele:         w.Elevation,
			Name:        w.Name,
			Description: w.Description,
			Comment:     w.Comment,
			Symbol:      w.Symbol,
		})
	}

	t, err := New(name, layers, waypoints, opts)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	if doc.Extensions.Color != "" {
		t.SetColor(doc.Extensions.Color)
	}
	return t, nil
}

func convertPoints(src []gpx.Point) []Point {
	points := make([]Point, len(src))
	for i, p := range src {
		pt := Point{Lat: p.Lat, Lon: p.Lon, Ele: p.Elevation}
		if ts, ok := gpx.ParseTime(p.Time); ok {
			pt.Time = &ts
		}
		ext := p.Extensions.TrackPoint
		if ext.HR != nil {
			v := int(math.Round(*ext.HR))
			pt.HR = &v
		}
		if ext.ATemp != nil {
			v := *ext.ATemp
			pt.ATemp = &v
		}
		if ext.Cad != nil {
			v := int(math.Round(*ext.Cad))
			pt.Cad = &v
		}
		points[i] = pt
	}
	return points
}

// anchorWaypoints snaps each waypoint to its nearest track point carrying an
// elevation, when one lies within the anchor radius.
func (t *Trace) anchorWaypoints() {
	if t.opts.AnchorRadius <= 0 || len(t.waypoints) == 0 {
		return
	}
	points := t.Points()
	for i := range t.waypoints {
		w := &t.waypoints[i]
		best := -1
		bestDist := t.opts.AnchorRadius
		for j, p := range points {
			if p.Ele == nil {
				continue
			}
			if d := geo.Distance(w.Lat, w.Lon, p.Lat, p.Lon); d <= bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			w.Anchor = points[best]
		}
	}
}

// ID is stable for the lifetime of the trace, unlike Index.
func (t *Trace) ID() uuid.UUID { return t.id }

// Name is used for the exported file name.
func (t *Trace) Name() string { return t.name }

// Index is the trace position in its collection.
func (t *Trace) Index() int { return t.index }

// SetIndex is called by the owning collection on every structural change.
func (t *Trace) SetIndex(i int) { t.index = i }

// Color returns the display color and whether it was set explicitly.
func (t *Trace) Color() (string, bool) { return t.color, t.colorSet }

// SetColor marks the color as explicitly chosen.
func (t *Trace) SetColor(color string) {
	t.color = color
	t.colorSet = true
}

// AssignColor sets an allocator-issued color without marking it explicit.
func (t *Trace) AssignColor(color string) {
	t.color = color
}

// Layers returns the trace segments.
func (t *Trace) Layers() []Layer { return t.layers }

// Waypoints returns the trace markers.
func (t *Trace) Waypoints() []Waypoint { return t.waypoints }

// Points returns pointers to every point across all layers, in order.
// Writes through the returned pointers modify the trace.
func (t *Trace) Points() []*Point {
	n := 0
	for _, l := range t.layers {
		n += len(l.Points)
	}
	points := make([]*Point, 0, n)
	for li := range t.layers {
		for pi := range t.layers[li].Points {
			points = append(points, &t.layers[li].Points[pi])
		}
	}
	return points
}

// Bounds returns the lon/lat envelope of all points.
func (t *Trace) Bounds() (geom.Envelope, error) {
	points := t.Points()
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i], lons[i] = p.Lat, p.Lon
	}
	return geo.Envelope(lats, lons)
}

// FirstTimeData returns the index in Points of the first timestamped point,
// or -1 when the trace carries no time data.
func (t *Trace) FirstTimeData() int {
	for i, p := range t.Points() {
		if p.Time != nil {
			return i
		}
	}
	return -1
}

// ChangeTimeData rewrites every timestamp as start plus the time needed to
// cover the cumulative distance at speedKmh. A non-positive speed puts every
// point at start.
func (t *Trace) ChangeTimeData(start time.Time, speedKmh float64) {
	start = start.UTC()
	cumulative := 0.0
	for li := range t.layers {
		points := t.layers[li].Points
		for pi := range points {
			if pi > 0 {
				cumulative += stepDistance(points[pi-1], points[pi])
			}
			ts := start.Add(TravelTime(cumulative, speedKmh))
			points[pi].Time = &ts
		}
	}
}

// TimeConsistency clamps timestamps that go backwards to the previous
// timestamped point.
func (t *Trace) TimeConsistency() {
	var last *time.Time
	for _, p := range t.Points() {
		if p.Time == nil {
			continue
		}
		if last != nil && p.Time.Before(*last) {
			ts := *last
			p.Time = &ts
		}
		last = p.Time
	}
}

// TravelTime returns the duration needed to cover meters at speedKmh, or 0
// for a non-positive speed.
func TravelTime(meters, speedKmh float64) time.Duration {
	if speedKmh <= 0 || meters <= 0 {
		return 0
	}
	hours := meters / 1000 / speedKmh
	return time.Duration(hours * float64(time.Hour))
}

func stepDistance(a, b Point) float64 {
	return geo.Distance(a.Lat, a.Lon, b.Lat, b.Lon)
}
