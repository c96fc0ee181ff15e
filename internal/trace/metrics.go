package trace

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distance returns the path length in meters when raw, otherwise in the
// meter-equivalent of the configured unit.
func (t *Trace) Distance(raw bool) float64 {
	total := 0.0
	for _, l := range t.layers {
		for i := 1; i < len(l.Points); i++ {
			total += stepDistance(l.Points[i-1], l.Points[i])
		}
	}
	return t.convert(total, raw)
}

// MovingDistance is the distance covered while moving. Only steps with
// timestamps on both ends can count as moving.
func (t *Trace) MovingDistance(raw bool) float64 {
	dist, _ := t.moving()
	return t.convert(dist, raw)
}

// MovingTime sums the durations of moving steps.
func (t *Trace) MovingTime() time.Duration {
	_, d := t.moving()
	return d
}

// MovingSpeed returns km/h (or mi/h) over moving steps, 0 without moving time.
func (t *Trace) MovingSpeed(raw bool) float64 {
	dist, d := t.moving()
	if d <= 0 {
		return 0
	}
	return t.convert(dist, raw) / 1000 / d.Hours()
}

func (t *Trace) convert(meters float64, raw bool) float64 {
	if raw || t.opts.Units == Metric {
		return meters
	}
	return meters * metersToMiles
}

func (t *Trace) moving() (float64, time.Duration) {
	var dist float64
	var duration time.Duration
	for _, l := range t.layers {
		for i := 1; i < len(l.Points); i++ {
			prev, cur := l.Points[i-1], l.Points[i]
			if prev.Time == nil || cur.Time == nil {
				continue
			}
			step := stepDistance(prev, cur)
			dt := cur.Time.Sub(*prev.Time)
			if dt <= 0 {
				continue
			}
			if t.opts.MaxStepGap > 0 && dt > t.opts.MaxStepGap {
				continue
			}
			if step/1000/dt.Hours() < t.opts.StopSpeedKmh {
				continue
			}
			dist += step
			duration += dt
		}
	}
	return dist, duration
}

// Elevation returns the positive elevation gain in meters over a
// median-smoothed profile.
func (t *Trace) Elevation() float64 {
	var gains []float64
	for _, l := range t.layers {
		profile := make([]float64, 0, len(l.Points))
		for _, p := range l.Points {
			if p.Ele != nil {
				profile = append(profile, *p.Ele)
			}
		}
		profile = smoothElevation(profile, t.opts.ElevationWindow)
		for i := 1; i < len(profile); i++ {
			if d := profile[i] - profile[i-1]; d > 0 {
				gains = append(gains, d)
			}
		}
	}
	if len(gains) == 0 {
		return 0
	}
	return floats.Sum(gains)
}

// AverageAdditionalData averages each sensor over the points carrying it and
// caches the result for export.
func (t *Trace) AverageAdditionalData() SensorData {
	var hr, atemp, cad []float64
	for _, l := range t.layers {
		for _, p := range l.Points {
			if p.HR != nil {
				hr = append(hr, float64(*p.HR))
			}
			if p.ATemp != nil {
				atemp = append(atemp, *p.ATemp)
			}
			if p.Cad != nil {
				cad = append(cad, float64(*p.Cad))
			}
		}
	}
	t.avg = SensorData{
		HR:    roundedMean(hr),
		ATemp: roundedMean(atemp),
		Cad:   roundedMean(cad),
	}
	return t.avg
}

// CachedAdditionalData returns the averages from the last
// AverageAdditionalData call.
func (t *Trace) CachedAdditionalData() SensorData {
	return t.avg
}

func roundedMean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := Round1(stat.Mean(values, nil))
	return &v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// smoothElevation applies a median filter to reduce barometric noise.
func smoothElevation(values []float64, windowSize int) []float64 {
	if len(values) < 3 || windowSize < 3 {
		return values
	}

	// Ensure window size is odd
	if windowSize%2 == 0 {
		windowSize++
	}
	half := windowSize / 2

	smoothed := make([]float64, len(values))
	window := make([]float64, 0, windowSize)
	for i := range values {
		start := max(0, i-half)
		end := min(len(values), i+half+1)

		window = append(window[:0], values[start:end]...)
		smoothed[i] = medianFloat(window)
	}
	return smoothed
}

func medianFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted)%2 == 0 {
		return (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return sorted[len(sorted)/2]
}
