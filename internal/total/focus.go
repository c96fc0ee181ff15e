package total

import "github.com/planbiir/gpxtotal/internal/trace"

// AggregateFocus is the Focus.Trace value of the aggregate view.
const AggregateFocus = -1

// Focus is either the aggregate view or a single trace.
type Focus struct {
	Trace int
}

// Aggregate reports whether the aggregate view has focus.
func (f Focus) Aggregate() bool { return f.Trace == AggregateFocus }

// Notifier is told about focus transitions and whether combining traces is
// possible. Calls happen synchronously inside the Aggregator method that
// caused them.
type Notifier interface {
	EnterAggregate()
	ExitAggregate()
	EnterTrace(t *trace.Trace)
	ExitTrace(t *trace.Trace)
	CombineAvailable(ok bool)
}

// NopNotifier ignores every notification.
type NopNotifier struct{}

func (NopNotifier) EnterAggregate()         {}
func (NopNotifier) ExitAggregate()          {}
func (NopNotifier) EnterTrace(*trace.Trace) {}
func (NopNotifier) ExitTrace(*trace.Trace)  {}
func (NopNotifier) CombineAvailable(bool)   {}

// Focus returns the current focus.
func (a *Aggregator) Focus() Focus { return a.focus }

// FocusAggregate switches to the aggregate view. No-op when it already has
// focus.
func (a *Aggregator) FocusAggregate() {
	if a.focus.Aggregate() {
		return
	}
	a.moveFocus(Focus{Trace: AggregateFocus})
}

// FocusTrace switches to the trace at i. No-op when it already has focus.
func (a *Aggregator) FocusTrace(i int) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	if a.focus.Trace == i {
		return nil
	}
	a.moveFocus(Focus{Trace: i})
	return nil
}

func (a *Aggregator) moveFocus(to Focus) {
	a.exitFocus()
	a.focus = to
	a.enterFocus()
}

func (a *Aggregator) exitFocus() {
	if a.focus.Aggregate() {
		a.notifier.ExitAggregate()
		return
	}
	if a.focus.Trace < len(a.traces) {
		a.notifier.ExitTrace(a.traces[a.focus.Trace])
	}
}

func (a *Aggregator) enterFocus() {
	if a.focus.Aggregate() {
		a.notifier.EnterAggregate()
		return
	}
	a.notifier.EnterTrace(a.traces[a.focus.Trace])
}
