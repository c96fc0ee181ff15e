package geo

import (
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
)

const earthRadius = 6371000.0 // meters

// Distance returns the great-circle distance in meters between two WGS84
// coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)

	h := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// Envelope returns the bounding box of lat/lon pairs with X as longitude and
// Y as latitude. Non-finite coordinates are an error.
func Envelope(lats, lons []float64) (geom.Envelope, error) {
	n := min(len(lats), len(lons))
	xys := make([]geom.XY, n)
	for i := 0; i < n; i++ {
		xys[i] = geom.XY{X: lons[i], Y: lats[i]}
	}
	env, err := geom.NewEnvelope(xys)
	if err != nil {
		return geom.Envelope{}, fmt.Errorf("envelope: %w", err)
	}
	return env, nil
}

// PadLatitude grows an envelope the way the map view frames a collection:
// the north edge moves up by north*span and the south edge down by
// south*span, where span is the latitude extent after the north move.
func PadLatitude(env geom.Envelope, north, south float64) (geom.Envelope, error) {
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return env, nil
	}
	hi.Y += north * (hi.Y - lo.Y)
	lo.Y -= south * (hi.Y - lo.Y)
	padded, err := geom.NewEnvelope([]geom.XY{lo, hi})
	if err != nil {
		return geom.Envelope{}, fmt.Errorf("pad envelope: %w", err)
	}
	return padded, nil
}
