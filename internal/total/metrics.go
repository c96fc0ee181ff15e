package total

import (
	"fmt"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gonum.org/v1/gonum/stat"

	"github.com/planbiir/gpxtotal/internal/geo"
	"github.com/planbiir/gpxtotal/internal/trace"
)

// Distance is the summed path length in the configured unit's
// meter-equivalent.
func (a *Aggregator) Distance() float64 {
	var tot float64
	for _, t := range a.traces {
		tot += t.Distance(false)
	}
	return tot
}

// MovingDistance sums the traces' moving distances, in meters when raw.
func (a *Aggregator) MovingDistance(raw bool) float64 {
	var tot float64
	for _, t := range a.traces {
		tot += t.MovingDistance(raw)
	}
	return tot
}

// Elevation is the summed elevation gain in meters.
func (a *Aggregator) Elevation() float64 {
	var tot float64
	for _, t := range a.traces {
		tot += t.Elevation()
	}
	return tot
}

// MovingTime is the summed moving time.
func (a *Aggregator) MovingTime() time.Duration {
	var tot time.Duration
	for _, t := range a.traces {
		tot += t.MovingTime()
	}
	return tot
}

// MovingSpeed is km/h (mi/h for imperial unless raw), 0 without moving time.
func (a *Aggregator) MovingSpeed(raw bool) float64 {
	d := a.MovingTime()
	if d == 0 {
		return 0
	}
	return a.MovingDistance(raw) / 1000 / d.Hours()
}

// MovingPace is the moving time per km (or mile), 0 without moving distance.
func (a *Aggregator) MovingPace() time.Duration {
	dist := a.MovingDistance(false)
	if dist == 0 {
		return 0
	}
	return time.Duration(float64(a.MovingTime()) / (dist / 1000))
}

// AverageAdditionalData averages each sensor across traces, weighted by
// each trace's moving time. Traces without the sensor do not count. The
// result is cached as the export fallback.
func (a *Aggregator) AverageAdditionalData() trace.SensorData {
	var hr, atemp, cad weighted
	for _, t := range a.traces {
		data := t.AverageAdditionalData()
		w := t.MovingTime().Seconds()
		hr.add(data.HR, w)
		atemp.add(data.ATemp, w)
		cad.add(data.Cad, w)
	}
	a.avg = trace.SensorData{
		HR:    hr.mean(),
		ATemp: atemp.mean(),
		Cad:   cad.mean(),
	}
	return a.avg
}

// CachedAdditionalData returns the result of the last AverageAdditionalData
// call.
func (a *Aggregator) CachedAdditionalData() trace.SensorData { return a.avg }

type weighted struct {
	values, weights []float64
}

func (s *weighted) add(v *float64, w float64) {
	if v == nil || w <= 0 {
		return
	}
	s.values = append(s.values, *v)
	s.weights = append(s.weights, w)
}

func (s *weighted) mean() *float64 {
	if len(s.values) == 0 {
		return nil
	}
	m := trace.Round1(stat.Mean(s.values, s.weights))
	return &m
}

// Bounds returns the envelope of every trace, padded north and south the
// way the map frames a collection.
func (a *Aggregator) Bounds() (geom.Envelope, error) {
	var env geom.Envelope
	for _, t := range a.traces {
		b, err := t.Bounds()
		if err != nil {
			return geom.Envelope{}, fmt.Errorf("trace %d: %w", t.Index(), err)
		}
		env = env.ExpandToIncludeEnvelope(b)
	}
	return geo.PadLatitude(env, 0.10, 0.45)
}

// Summary is a snapshot of the aggregate metrics.
type Summary struct {
	Traces         int              `json:"traces"`
	Activity       string           `json:"activity"`
	Units          string           `json:"units"`
	Distance       float64          `json:"distance"`
	MovingDistance float64          `json:"movingDistance"`
	Elevation      float64          `json:"elevation"`
	MovingTimeMs   int64            `json:"movingTimeMs"`
	MovingTime     string           `json:"movingTime"`
	MovingSpeed    float64          `json:"movingSpeed"`
	MovingPace     string           `json:"movingPace"`
	Sensors        trace.SensorData `json:"sensors"`
	Bounds         *BoundingBox     `json:"bounds"`
	Entries        []TraceSummary   `json:"entries"`
}

// BoundingBox is a padded lat/lon frame. Nil in a Summary without points.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// TraceSummary describes one trace of the collection.
type TraceSummary struct {
	ID           string  `json:"id"`
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	Distance     float64 `json:"distance"`
	MovingTimeMs int64   `json:"movingTimeMs"`
}

// Summary computes every aggregate metric. Sensor averages are recomputed
// and cached.
func (a *Aggregator) Summary() (Summary, error) {
	env, err := a.Bounds()
	if err != nil {
		return Summary{}, fmt.Errorf("summary bounds: %w", err)
	}

	mt := a.MovingTime()
	s := Summary{
		Traces:         len(a.traces),
		Activity:       a.activity,
		Units:          a.traceOpts.Units.String(),
		Distance:       a.Distance(),
		MovingDistance: a.MovingDistance(false),
		Elevation:      a.Elevation(),
		MovingTimeMs:   mt.Milliseconds(),
		MovingTime:     FormatDuration(mt),
		MovingSpeed:    a.MovingSpeed(false),
		MovingPace:     FormatPace(a.MovingPace()),
		Sensors:        a.AverageAdditionalData(),
		Entries:        make([]TraceSummary, 0, len(a.traces)),
	}
	if lo, hi, ok := env.MinMaxXYs(); ok {
		s.Bounds = &BoundingBox{MinLat: lo.Y, MinLon: lo.X, MaxLat: hi.Y, MaxLon: hi.X}
	}
	for _, t := range a.traces {
		color, _ := t.Color()
		s.Entries = append(s.Entries, TraceSummary{
			ID:           t.ID().String(),
			Index:        t.Index(),
			Name:         t.Name(),
			Color:        color,
			Distance:     t.Distance(false),
			MovingTimeMs: t.MovingTime().Milliseconds(),
		})
	}
	return s, nil
}

// FormatDuration renders hours and minutes, e.g. "1h05".
func FormatDuration(d time.Duration) string {
	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	return fmt.Sprintf("%dh%02d", hours, minutes)
}

// FormatPace renders minutes and seconds, e.g. "5:07".
func FormatPace(d time.Duration) string {
	minutes := int64(d / time.Minute)
	seconds := int64(d/time.Second) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
