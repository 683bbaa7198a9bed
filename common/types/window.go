package types

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// TimeWindow is the half-open interval [Start, Stop).
// The zero value is the unbounded window covering all time.
type TimeWindow struct {
	Start time.Time
	Stop  time.Time
}

// Unbounded is the window that matches every timestamp. Records without a
// timestamp are outside of it like they are outside every other window.
var Unbounded = TimeWindow{}

// NewWindow returns [start, stop) in UTC.
func NewWindow(start, stop time.Time) TimeWindow {
	return TimeWindow{Start: start.UTC(), Stop: stop.UTC()}
}

// OuterWindow rounds [min, max] outward to whole units of g.
func OuterWindow(min, max time.Time, g Granularity) TimeWindow {
	return NewWindow(g.Truncate(min), g.Add(g.Truncate(max), 1))
}

func (w TimeWindow) IsUnbounded() bool {
	return w.Start.IsZero() && w.Stop.IsZero()
}

// Contains reports whether t falls within the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.IsUnbounded() {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.Stop)
}

// Covers reports whether o lies entirely within w.
func (w TimeWindow) Covers(o TimeWindow) bool {
	if w.IsUnbounded() {
		return true
	}
	if o.IsUnbounded() {
		return false
	}
	return !o.Start.Before(w.Start) && !o.Stop.After(w.Stop)
}

func (w TimeWindow) Empty() bool {
	return !w.IsUnbounded() && !w.Stop.After(w.Start)
}

// Split tiles the window with contiguous sub-windows of one unit of g,
// in ascending order. The first and last sub-windows are clipped to the
// window bounds when they are not aligned to g.
func (w TimeWindow) Split(g Granularity) []TimeWindow {
	if w.IsUnbounded() || w.Empty() {
		return nil
	}
	var out []TimeWindow
	for start := w.Start; start.Before(w.Stop); {
		stop := g.Add(g.Truncate(start), 1)
		if stop.After(w.Stop) {
			stop = w.Stop
		}
		out = append(out, TimeWindow{Start: start, Stop: stop})
		start = stop
	}
	return out
}

func (w TimeWindow) String() string {
	if w.IsUnbounded() {
		return "[*, *)"
	}
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.Stop.Format(time.RFC3339))
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (w TimeWindow) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if w.IsUnbounded() {
		enc.AddBool("unbounded", true)
		return nil
	}
	enc.AddTime("start", w.Start)
	enc.AddTime("stop", w.Stop)
	return nil
}
