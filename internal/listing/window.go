package listing

// Page sizes used by the two card grids.
const (
	DefaultInitial = 9
	DefaultStep    = 6

	CardInitial = 20
	CardStep    = 20
)

// Window is the client-side "items to show" counter.
type Window struct {
	initial int
	step    int
	shown   int
}

// NewWindow returns a window showing initial items and growing by step.
// Non-positive values fall back to the defaults.
func NewWindow(initial, step int) *Window {
	if initial <= 0 {
		initial = DefaultInitial
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Window{initial: initial, step: step, shown: initial}
}

func (w *Window) Shown() int   { return w.shown }
func (w *Window) Initial() int { return w.initial }
func (w *Window) Step() int    { return w.step }

// Grow applies one "load more".
func (w *Window) Grow() { w.shown += w.step }

// Reset returns to the initial page size.
func (w *Window) Reset() { w.shown = w.initial }

// HasMore reports whether total results exceed what is shown.
func (w *Window) HasMore(total int) bool { return total > w.shown }

// Visible returns the first n items, or all of them when there are fewer.
func Visible[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n:n]
}
