package gpx

import (
	"strings"
	"testing"
	"time"
)

func TestParseReader(t *testing.T) {
	gpxContent := `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
	<wpt lat="46.5" lon="7.5">
		<ele>1500</ele>
		<name>Summit</name>
		<desc>Top</desc>
		<cmt>windy</cmt>
		<sym>Flag</sym>
	</wpt>
	<trk>
		<name>Test Track</name>
		<trkseg>
			<trkpt lat="46.0" lon="7.0">
				<ele>1000</ele>
				<time>2025-01-01T10:00:00Z</time>
			</trkpt>
			<trkpt lat="46.001" lon="7.001">
				<time>2025-01-01T10:00:01Z</time>
			</trkpt>
		</trkseg>
	</trk>
	<rte>
		<rtept lat="47.0" lon="8.0"></rtept>
	</rte>
</gpx>`

	gpxData, err := ParseReader(strings.NewReader(gpxContent))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if len(gpxData.Tracks) != 1 {
		t.Fatalf("Expected 1 track, got %d", len(gpxData.Tracks))
	}
	if len(gpxData.Tracks[0].Segments[0].Points) != 2 {
		t.Errorf("Expected 2 points, got %d", len(gpxData.Tracks[0].Segments[0].Points))
	}
	if len(gpxData.Routes) != 1 || len(gpxData.Routes[0].Points) != 1 {
		t.Errorf("Expected 1 route with 1 point, got %+v", gpxData.Routes)
	}

	point := gpxData.Tracks[0].Segments[0].Points[0]
	if point.Lat != 46.0 || point.Lon != 7.0 {
		t.Errorf("Expected lat=46.0, lon=7.0, got lat=%f, lon=%f", point.Lat, point.Lon)
	}
	if point.Elevation == nil || *point.Elevation != 1000.0 {
		t.Errorf("Expected elevation=1000.0, got %v", point.Elevation)
	}
	if second := gpxData.Tracks[0].Segments[0].Points[1]; second.Elevation != nil {
		t.Errorf("Expected missing elevation to stay nil, got %f", *second.Elevation)
	}

	if len(gpxData.Waypoints) != 1 {
		t.Fatalf("Expected 1 waypoint, got %d", len(gpxData.Waypoints))
	}
	w := gpxData.Waypoints[0]
	if w.Name != "Summit" || w.Description != "Top" || w.Comment != "windy" || w.Symbol != "Flag" {
		t.Errorf("Unexpected waypoint %+v", w)
	}
}

func TestParseReaderDefaults(t *testing.T) {
	gpxData, err := ParseReader(strings.NewReader(`<gpx><trk><trkseg><trkpt lat="1" lon="2"/></trkseg></trk></gpx>`))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if gpxData.Version != DefaultVersion {
		t.Errorf("Expected version %s, got %s", DefaultVersion, gpxData.Version)
	}
	if gpxData.Creator != DefaultCreator {
		t.Errorf("Expected creator %s, got %s", DefaultCreator, gpxData.Creator)
	}
}

func TestParseReaderMalformed(t *testing.T) {
	if _, err := ParseReader(strings.NewReader(`<gpx><trk>`)); err == nil {
		t.Fatal("Expected an error for truncated input")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		gpx  GPX
		want string
	}{
		{"metadata", GPX{Metadata: Metadata{Name: "Ride"}, Tracks: []Track{{Name: "Track"}}}, "Ride"},
		{"track", GPX{Tracks: []Track{{}, {Name: "Second"}}}, "Second"},
		{"route", GPX{Routes: []Route{{Name: "Route"}}}, "Route"},
		{"none", GPX{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gpx.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	for _, s := range []string{
		"2025-01-01T10:00:00Z",
		"2025-01-01T10:00:00.000Z",
		"2025-01-01T11:00:00+01:00",
		"2025-01-01T10:00:00",
		"  2025-01-01T10:00:00Z\n",
	} {
		got, ok := ParseTime(s)
		if !ok {
			t.Errorf("ParseTime(%q) failed", s)
			continue
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Errorf("ParseTime(%q) = %v, want %v", s, got, want)
		}
	}

	for _, s := range []string{"", "yesterday"} {
		if _, ok := ParseTime(s); ok {
			t.Errorf("ParseTime(%q) should fail", s)
		}
	}
}
