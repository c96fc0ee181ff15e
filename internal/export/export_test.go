package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gpxtotal/internal/gpx"
	"github.com/planbiir/gpxtotal/internal/trace"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func newTrace(t *testing.T, name string, points []trace.Point, waypoints []trace.Waypoint) *trace.Trace {
	t.Helper()
	tr, err := trace.New(name, []trace.Layer{{Points: points}}, waypoints, trace.DefaultOptions())
	require.NoError(t, err)
	return tr
}

func sources(trs ...*trace.Trace) []Source {
	out := make([]Source, len(trs))
	for i, tr := range trs {
		out[i] = tr
	}
	return out
}

func TestRenderSeparateDocuments(t *testing.T) {
	a := newTrace(t, "morning", []trace.Point{{Lat: 46, Lon: 7}}, nil)
	b := newTrace(t, "evening", []trace.Point{{Lat: 47, Lon: 8}}, nil)
	b.SetColor("#ff0000")

	docs, err := Render(sources(a, b), Options{})
	require.NoError(t, err)

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	if diff := cmp.Diff([]string{"morning.gpx", "evening.gpx"}, names); diff != "" {
		t.Errorf("document names mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, docs[0].Text, "<color>")
	assert.Contains(t, docs[1].Text, "<extensions>\n        <color>#ff0000</color>\n    </extensions>")
}

func TestRenderMerged(t *testing.T) {
	a := newTrace(t, "morning", []trace.Point{{Lat: 46, Lon: 7}}, nil)
	b := newTrace(t, "evening", []trace.Point{{Lat: 47, Lon: 8}}, []trace.Waypoint{{Lat: 47, Lon: 8, Name: "Hut"}})
	b.SetColor("#ff0000")

	docs, err := Render(sources(a, b), Options{Merge: true})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, MergedName, docs[0].Name)
	assert.Equal(t, 1, strings.Count(docs[0].Text, "<trk>"))
	assert.Equal(t, 2, strings.Count(docs[0].Text, "<trkseg>"))
	assert.Equal(t, 1, strings.Count(docs[0].Text, "<wpt "))
	assert.NotContains(t, docs[0].Text, "<color>")
	assert.Less(t, strings.Index(docs[0].Text, `lat="46.000000"`), strings.Index(docs[0].Text, `lat="47.000000"`))
}

func TestRenderMergeWithOneTrace(t *testing.T) {
	a := newTrace(t, "solo", []trace.Point{{Lat: 46, Lon: 7}}, nil)
	a.SetColor("#00ff00")

	docs, err := Render(sources(a), Options{Merge: true})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "solo.gpx", docs[0].Name)
	assert.Contains(t, docs[0].Text, "<color>#00ff00</color>")
}

func TestRenderSingleTrace(t *testing.T) {
	a := newTrace(t, "morning", []trace.Point{{Lat: 46, Lon: 7}}, nil)
	b := newTrace(t, "evening", []trace.Point{{Lat: 47, Lon: 8}}, nil)
	k := 1

	docs, err := Render(sources(a, b), Options{Merge: true, Trace: &k})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "evening.gpx", docs[0].Name)
	assert.NotContains(t, docs[0].Text, `lat="46.000000"`)
}

func TestRenderSingleTraceKeepsColorWhenMerging(t *testing.T) {
	a := newTrace(t, "morning", []trace.Point{{Lat: 46, Lon: 7}}, nil)
	a.SetColor("#00ff00")
	b := newTrace(t, "evening", []trace.Point{{Lat: 47, Lon: 8}}, nil)
	b.SetColor("#ff0000")
	k := 1

	docs, err := Render(sources(a, b), Options{Merge: true, Trace: &k})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEqual(t, MergedName, docs[0].Name)
	assert.Contains(t, docs[0].Text, "<color>#ff0000</color>")
	assert.NotContains(t, docs[0].Text, "#00ff00")
}

func TestRenderTraceIndexOutOfRange(t *testing.T) {
	a := newTrace(t, "morning", []trace.Point{{Lat: 46, Lon: 7}}, nil)
	for _, k := range []int{-1, 1} {
		_, err := Render(sources(a), Options{Trace: &k})
		assert.True(t, errors.Is(err, ErrTraceIndex), "index %d", k)
	}
}

func TestRenderEmptyLayersAreSkipped(t *testing.T) {
	tr, err := trace.New("gaps", []trace.Layer{
		{},
		{Points: []trace.Point{{Lat: 46, Lon: 7}}},
	}, nil, trace.DefaultOptions())
	require.NoError(t, err)

	docs, err := Render(sources(tr), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(docs[0].Text, "<trkseg>"))
}

func TestRenderPointFormatting(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("CET", 3600))
	tr := newTrace(t, "fmt", []trace.Point{
		{Lat: 46.1234567, Lon: 7.5, Ele: f64(0), Time: &ts},
	}, nil)

	docs, err := Render(sources(tr), Options{IncludeTime: true})
	require.NoError(t, err)
	text := docs[0].Text

	assert.Contains(t, text, `<trkpt lat="46.123457" lon="7.500000">`)
	assert.Contains(t, text, "<ele>0.0</ele>")
	assert.Contains(t, text, "<time>2025-03-04T04:06:07.890Z</time>")
	assert.NotContains(t, text, "<gpxtpx:TrackPointExtension>")

	docs, err = Render(sources(tr), Options{})
	require.NoError(t, err)
	assert.NotContains(t, docs[0].Text, "<time>")
}

func TestRenderSensorFallback(t *testing.T) {
	tr := newTrace(t, "sensors", []trace.Point{
		{Lat: 46, Lon: 7, HR: intp(150), Cad: intp(90)},
		{Lat: 46.001, Lon: 7},
	}, nil)
	other := newTrace(t, "bare", []trace.Point{{Lat: 47, Lon: 8}}, nil)

	opts := Options{
		IncludeHR:    true,
		IncludeATemp: true,
		IncludeCad:   true,
		Fallback:     trace.SensorData{HR: f64(120), ATemp: f64(21.5)},
	}
	docs, err := Render(sources(tr, other), opts)
	require.NoError(t, err)

	// the second point takes the trace average, atemp the collection average
	first := docs[0].Text
	assert.Equal(t, 2, strings.Count(first, "<gpxtpx:hr>150</gpxtpx:hr>"))
	assert.Equal(t, 2, strings.Count(first, "<gpxtpx:cad>90</gpxtpx:cad>"))
	assert.Equal(t, 2, strings.Count(first, "<gpxtpx:atemp>21.5</gpxtpx:atemp>"))

	second := docs[1].Text
	assert.Contains(t, second, "<gpxtpx:hr>120</gpxtpx:hr>")
	assert.NotContains(t, second, "<gpxtpx:cad>")
}

func TestRenderSensorsExcluded(t *testing.T) {
	tr := newTrace(t, "sensors", []trace.Point{{Lat: 46, Lon: 7, HR: intp(150)}}, nil)

	docs, err := Render(sources(tr), Options{IncludeCad: true})
	require.NoError(t, err)
	assert.NotContains(t, docs[0].Text, "gpxtpx:hr>")
	assert.NotContains(t, docs[0].Text, "<extensions>")
}

func TestRenderWaypoints(t *testing.T) {
	tr := newTrace(t, "wpts", []trace.Point{{Lat: 46, Lon: 7, Ele: f64(1200)}}, []trace.Waypoint{
		{Lat: 46, Lon: 7, Ele: f64(900), Name: `A & B <C> "D" 'E'`, Symbol: "Flag"},
		{Lat: 48, Lon: 9, Ele: f64(-5), Comment: "below sea"},
		{Lat: 49, Lon: 9, Ele: f64(310)},
	})

	docs, err := Render(sources(tr), Options{})
	require.NoError(t, err)
	text := docs[0].Text

	assert.Contains(t, text, "<name>A &amp; B &lt;C&gt; &quot;D&quot; &apos;E&apos;</name>")
	assert.Contains(t, text, "<sym>Flag</sym>")
	assert.Contains(t, text, "<cmt>below sea</cmt>")
	// the anchored waypoint takes the track elevation
	assert.Contains(t, text, "<ele>1200.0</ele>")
	assert.NotContains(t, text, "<ele>900.0</ele>")
	assert.NotContains(t, text, "<ele>-5.0</ele>")
	assert.Contains(t, text, "<ele>310.0</ele>")
}

func TestRenderEnvelope(t *testing.T) {
	tr := newTrace(t, "env", []trace.Point{{Lat: 46, Lon: 7}}, nil)

	docs, err := Render(sources(tr), Options{Activity: Running})
	require.NoError(t, err)
	text := docs[0].Text

	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, text, `xmlns="`+gpx.NamespaceGPX+`"`)
	assert.Contains(t, text, `xmlns:gpxtpx="`+gpx.NamespaceTPX+`"`)
	assert.Contains(t, text, `version="1.1"`)
	assert.Contains(t, text, "<name>Activity</name>")
	assert.Contains(t, text, "<type>Running</type>")
	assert.Contains(t, text, `<link href="`+projectLink+`"></link>`)

	docs, err = Render(sources(tr), Options{})
	require.NoError(t, err)
	assert.Contains(t, docs[0].Text, "<type>Cycling</type>")
}

func TestResolve(t *testing.T) {
	p, a, c := f64(1), f64(2), f64(3)
	assert.Same(t, p, Resolve(p, a, c))
	assert.Same(t, a, Resolve(nil, a, c))
	assert.Same(t, c, Resolve(nil, nil, c))
	assert.Nil(t, Resolve(nil, nil, nil))
}
