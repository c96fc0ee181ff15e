// Package total combines independently recorded traces into one activity.
package total

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/planbiir/gpxtotal/internal/colors"
	"github.com/planbiir/gpxtotal/internal/export"
	"github.com/planbiir/gpxtotal/internal/trace"
)

var (
	// ErrTraceIndex is returned for an index outside the collection.
	ErrTraceIndex = export.ErrTraceIndex

	// ErrUnknownActivity is returned by ParseActivity.
	ErrUnknownActivity = errors.New("unknown activity")
)

// ParseActivity maps "cycling" or "running" to the metadata activity type.
// Empty is cycling.
func ParseActivity(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cycling":
		return export.Cycling, nil
	case "running":
		return export.Running, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
	}
}

// Aggregator holds an ordered trace collection. It is not safe for
// concurrent use.
type Aggregator struct {
	traces    []*trace.Trace
	focus     Focus
	colors    *colors.Allocator
	avg       trace.SensorData
	rendering bool

	activity  string
	traceOpts trace.Options
	notifier  Notifier
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.log = log
	}
}

// WithActivity sets the activity type written into exported metadata.
func WithActivity(activity string) Option {
	return func(a *Aggregator) {
		a.activity = activity
	}
}

// WithTraceOptions sets the options used for loaded traces.
func WithTraceOptions(opts trace.Options) Option {
	return func(a *Aggregator) {
		a.traceOpts = opts
	}
}

// WithUnits overrides the units of the trace options.
func WithUnits(u trace.Units) Option {
	return func(a *Aggregator) {
		a.traceOpts.Units = u
	}
}

// WithPalette replaces the default color palette.
func WithPalette(palette []string) Option {
	return func(a *Aggregator) {
		a.colors = colors.NewAllocator(palette)
	}
}

// WithNotifier receives focus and combine notifications.
func WithNotifier(n Notifier) Option {
	return func(a *Aggregator) {
		a.notifier = n
	}
}

// WithClock sets the time source for traces that have nothing to anchor to.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New returns an empty aggregator in aggregate focus.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		focus:     Focus{Trace: AggregateFocus},
		colors:    colors.NewAllocator(nil),
		activity:  export.Cycling,
		traceOpts: trace.DefaultOptions(),
		notifier:  NopNotifier{},
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.notifier.EnterAggregate()
	return a
}

// AddTrace loads a GPX stream and appends it to the collection.
func (a *Aggregator) AddTrace(r io.Reader, name string) (*trace.Trace, error) {
	t, err := trace.Load(r, name, a.traceOpts)
	if err != nil {
		return nil, fmt.Errorf("add trace: %w", err)
	}
	return a.Add(t), nil
}

// AddFile loads the GPX file at path, named after the file, and appends it.
func (a *Aggregator) AddFile(path string) (*trace.Trace, error) {
	t, err := trace.LoadFile(path, "", a.traceOpts)
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", path, err)
	}
	return a.Add(t), nil
}

// Add appends an already built trace, issues its color and focuses it.
func (a *Aggregator) Add(t *trace.Trace) *trace.Trace {
	t.SetIndex(len(a.traces))
	if color, explicit := t.Color(); explicit {
		a.colors.Reassign("", color)
	} else {
		t.AssignColor(a.colors.Issue())
	}
	a.traces = append(a.traces, t)

	color, _ := t.Color()
	a.log.Debug().
		Str("id", t.ID().String()).
		Str("name", t.Name()).
		Int("index", t.Index()).
		Str("color", color).
		Msg("trace added")

	if len(a.traces) == 2 {
		a.notifier.CombineAvailable(true)
	}
	a.moveFocus(Focus{Trace: t.Index()})
	return t
}

// RemoveTrace drops the trace at i. Focus moves to the trace before it, or
// back to the aggregate view when there is none.
func (a *Aggregator) RemoveTrace(i int) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	if len(a.traces) == 2 {
		a.notifier.CombineAvailable(false)
	}

	a.exitFocus()
	removed := a.traces[i]
	color, _ := removed.Color()
	a.colors.Release(color)

	a.traces = slices.Delete(a.traces, i, i+1)
	for k := i; k < len(a.traces); k++ {
		a.traces[k].SetIndex(k)
	}

	a.log.Debug().
		Str("id", removed.ID().String()).
		Str("name", removed.Name()).
		Int("index", i).
		Msg("trace removed")

	if i > 0 {
		a.focus = Focus{Trace: i - 1}
	} else {
		a.focus = Focus{Trace: AggregateFocus}
	}
	a.enterFocus()
	return nil
}

// SwapTraces exchanges two traces. A focused trace stays focused.
func (a *Aggregator) SwapTraces(i, j int) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	if err := a.checkIndex(j); err != nil {
		return err
	}

	a.traces[i], a.traces[j] = a.traces[j], a.traces[i]
	a.traces[i].SetIndex(i)
	a.traces[j].SetIndex(j)

	switch a.focus.Trace {
	case i:
		a.focus.Trace = j
	case j:
		a.focus.Trace = i
	}
	return nil
}

// Clear removes every trace and returns to the aggregate view.
func (a *Aggregator) Clear() {
	a.exitFocus()
	for _, t := range a.traces {
		color, _ := t.Color()
		a.colors.Release(color)
	}
	if len(a.traces) >= 2 {
		a.notifier.CombineAvailable(false)
	}
	a.traces = nil
	a.focus = Focus{Trace: AggregateFocus}
	a.enterFocus()
}

// Recolor sets an explicit color for the trace at i.
func (a *Aggregator) Recolor(i int, color string) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	t := a.traces[i]
	old, _ := t.Color()
	a.colors.Reassign(old, color)
	t.SetColor(color)
	return nil
}

// Len returns the number of traces.
func (a *Aggregator) Len() int { return len(a.traces) }

// Trace returns the trace at i.
func (a *Aggregator) Trace(i int) (*trace.Trace, error) {
	if err := a.checkIndex(i); err != nil {
		return nil, err
	}
	return a.traces[i], nil
}

// Traces returns the collection in order. The slice is a copy.
func (a *Aggregator) Traces() []*trace.Trace {
	return slices.Clone(a.traces)
}

// Colors exposes the allocator for callers that show usage counts.
func (a *Aggregator) Colors() *colors.Allocator { return a.colors }

// Activity returns the exported activity type.
func (a *Aggregator) Activity() string { return a.activity }

// Units returns the units used for display metrics.
func (a *Aggregator) Units() trace.Units { return a.traceOpts.Units }

func (a *Aggregator) checkIndex(i int) error {
	if i < 0 || i >= len(a.traces) {
		return fmt.Errorf("%w: %d of %d", ErrTraceIndex, i, len(a.traces))
	}
	return nil
}
