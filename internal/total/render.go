package total

import (
	"errors"

	"github.com/planbiir/gpxtotal/internal/export"
	"github.com/planbiir/gpxtotal/internal/synth"
)

// ErrRenderInProgress is returned when Render is entered while another
// render is rewriting timestamps.
var ErrRenderInProgress = errors.New("render already in progress")

// RenderOptions selects the exported fields and file layout.
type RenderOptions struct {
	Merge        bool
	IncludeTime  bool
	IncludeHR    bool
	IncludeATemp bool
	IncludeCad   bool

	// Trace exports only the trace at that index.
	Trace *int
}

// Render exports the collection as GPX documents.
//
// With IncludeTime, at least one moving trace and no single trace selected,
// timestamps are synthesized first: traces without time data get timestamps
// derived from their neighbours, and when merging, traces are shifted so the
// concatenated track never goes back in time. This rewrites trace data in
// place.
//
// Sensor fallbacks use the aggregate average cached by the last
// AverageAdditionalData call.
func (a *Aggregator) Render(opts RenderOptions) ([]export.Document, error) {
	if a.rendering {
		return nil, ErrRenderInProgress
	}
	a.rendering = true
	defer func() { a.rendering = false }()

	if opts.Trace != nil {
		if err := a.checkIndex(*opts.Trace); err != nil {
			return nil, err
		}
	}

	if opts.IncludeTime && opts.Trace == nil && a.MovingTime() > 0 {
		tracks := make([]synth.Track, len(a.traces))
		for i, t := range a.traces {
			tracks[i] = t
		}
		stats := synth.Run(tracks, synth.Config{
			Merge:  opts.Merge,
			Now:    a.now,
			Logger: a.log,
		})
		a.log.Debug().
			Float64("speed_kmh", stats.ReferenceSpeedKmh).
			Int("synthesized", stats.Synthesized).
			Int("shifted", stats.Shifted).
			Msg("timestamps synthesized")
	}

	sources := make([]export.Source, len(a.traces))
	for i, t := range a.traces {
		sources[i] = t
	}
	return export.Render(sources, export.Options{
		Merge:        opts.Merge,
		IncludeTime:  opts.IncludeTime,
		IncludeHR:    opts.IncludeHR,
		IncludeATemp: opts.IncludeATemp,
		IncludeCad:   opts.IncludeCad,
		Trace:        opts.Trace,
		Activity:     a.activity,
		Fallback:     a.avg,
		Logger:       a.log,
	})
}
