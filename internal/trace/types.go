package trace

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoPoints is returned when a trace would have no track or route points.
var ErrNoPoints = errors.New("trace has no points")

// Units selects how non-raw distances are reported.
type Units int

const (
	Metric Units = iota
	Imperial
)

const metersToMiles = 0.621371

// ErrUnknownUnits is returned by ParseUnits.
var ErrUnknownUnits = errors.New("unknown units")

// ParseUnits accepts "metric" or "imperial" (or "km"/"mi"). Empty is metric.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric", "km":
		return Metric, nil
	case "imperial", "mi":
		return Imperial, nil
	default:
		return Metric, fmt.Errorf("%w: %q", ErrUnknownUnits, s)
	}
}

func (u Units) String() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}

// Point is a trace point. Optional values are nil when the recording did not
// carry them.
type Point struct {
	Lat, Lon float64
	Ele      *float64
	Time     *time.Time
	HR       *int
	ATemp    *float64
	Cad      *int
}

// Layer is a contiguous point sequence (a track segment). A layer may carry
// no point data at all.
type Layer struct {
	Points []Point
}

// HasPoints reports whether the layer carries point data.
func (l Layer) HasPoints() bool {
	return len(l.Points) > 0
}

// Waypoint is a named marker attached to a trace.
type Waypoint struct {
	Lat, Lon    float64
	Ele         *float64
	Name        string
	Description string
	Comment     string
	Symbol      string

	// Anchor is the track point the waypoint was snapped to, if any. Its
	// elevation takes priority over Ele on export.
	Anchor *Point
}

// SensorData holds averaged sensor readings. A nil field means no point
// carried that sensor.
type SensorData struct {
	HR    *float64 `json:"hr"`
	ATemp *float64 `json:"atemp"`
	Cad   *float64 `json:"cad"`
}

// Options controls how derived metrics are computed.
type Options struct {
	Units Units

	// StopSpeedKmh is the speed below which a step counts as stopped.
	StopSpeedKmh float64

	// MaxStepGap excludes longer steps from moving time (device paused).
	MaxStepGap time.Duration

	// ElevationWindow is the median filter window for elevation gain.
	ElevationWindow int

	// AnchorRadius is how far a waypoint may be from a track point and still
	// be snapped to it, in meters. Zero disables snapping.
	AnchorRadius float64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Units:           Metric,
		StopSpeedKmh:    1.0,
		MaxStepGap:      5 * time.Minute,
		ElevationWindow: 7,
		AnchorRadius:    50,
	}
}
