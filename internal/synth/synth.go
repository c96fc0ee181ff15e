// Package synth makes trace timestamps present and mutually consistent
// before a collection is exported.
package synth

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/planbiir/gpxtotal/internal/geo"
	"github.com/planbiir/gpxtotal/internal/trace"
)

// Track is the part of a trace the synthesizer reads and rewrites.
type Track interface {
	Points() []*trace.Point
	FirstTimeData() int
	ChangeTimeData(start time.Time, speedKmh float64)
	TimeConsistency()
	Distance(raw bool) float64
	MovingDistance(raw bool) float64
	MovingTime() time.Duration
	MovingSpeed(raw bool) float64
}

// Config controls how synthesis behaves.
type Config struct {
	// Merge is true when the tracks are exported as one continuous track.
	// Only then are the gaps between tracks travelled and is time precedence
	// across tracks enforced.
	Merge bool

	// Now is the start time used when an untimed track has no timed
	// neighbour to anchor to. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Stats reports what happened during synthesis.
type Stats struct {
	ReferenceSpeedKmh float64
	Synthesized       int
	Shifted           int
}

// Run rewrites timestamps in place. Every track without time data gets
// synthetic timestamps, and when merging, a track starting before its
// predecessor ends is shifted after it.
func Run(tracks []Track, cfg Config) Stats {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger

	for _, tr := range tracks {
		tr.TimeConsistency()
	}

	avg := ReferenceSpeed(tracks)
	stats := Stats{ReferenceSpeedKmh: avg}

	var lastPoints []*trace.Point
	for i, tr := range tracks {
		points := tr.Points()
		if len(points) == 0 {
			continue
		}

		if tr.FirstTimeData() == -1 {
			start := startTime(tracks, i, points, lastPoints, avg, cfg)
			tr.ChangeTimeData(start, avg)
			stats.Synthesized++
			log.Debug().
				Int("trace", i).
				Time("start", start).
				Float64("speed_kmh", avg).
				Msg("synthesized timestamps")
		} else if cfg.Merge && lastPoints != nil {
			prev := lastTime(lastPoints)
			first := points[tr.FirstTimeData()].Time
			if prev != nil && first.Before(*prev) {
				gap := gapDistance(lastPoints[len(lastPoints)-1], points[0])
				start := prev.Add(trace.TravelTime(gap, avg))
				speed := tr.MovingSpeed(true)
				if speed <= 0 {
					speed = avg
				}
				tr.ChangeTimeData(start, speed)
				stats.Shifted++
				log.Debug().
					Int("trace", i).
					Time("was", *first).
					Time("start", start).
					Float64("speed_kmh", speed).
					Msg("shifted timestamps after previous trace")
			}
		}

		lastPoints = points
	}

	return stats
}

// ReferenceSpeed is the moving speed of the whole collection in km/h, ignoring
// unit conversion. Zero when nothing was recorded moving.
func ReferenceSpeed(tracks []Track) float64 {
	var dist float64
	var d time.Duration
	for _, tr := range tracks {
		dist += tr.MovingDistance(true)
		d += tr.MovingTime()
	}
	if d <= 0 {
		return 0
	}
	return dist / 1000 / d.Hours()
}

// startTime picks the start of an untimed track: right after the previous
// track when there is one, otherwise early enough to reach the next timed
// track in time.
func startTime(tracks []Track, i int, points, lastPoints []*trace.Point, avg float64, cfg Config) time.Time {
	if lastPoints != nil {
		if prev := lastTime(lastPoints); prev != nil {
			gap := 0.0
			if cfg.Merge {
				gap = gapDistance(lastPoints[len(lastPoints)-1], points[0])
			}
			return prev.Add(trace.TravelTime(gap, avg))
		}
	}

	a := points[len(points)-1]
	dist := tracks[i].Distance(true)
	for j := i + 1; j < len(tracks); j++ {
		next := tracks[j].Points()
		if len(next) == 0 {
			continue
		}
		if cfg.Merge {
			dist += gapDistance(a, next[0])
		}
		if k := tracks[j].FirstTimeData(); k >= 0 {
			return next[k].Time.Add(-trace.TravelTime(dist, avg))
		}
		dist += tracks[j].Distance(true)
		a = next[len(next)-1]
	}

	return cfg.Now().UTC()
}

func lastTime(points []*trace.Point) *time.Time {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Time != nil {
			return points[i].Time
		}
	}
	return nil
}

func gapDistance(a, b *trace.Point) float64 {
	return geo.Distance(a.Lat, a.Lon, b.Lat, b.Lon)
}
