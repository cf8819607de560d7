// Package browse holds the view-side state of a listing: the active
// category selection and the "load more" visible window.
package browse

import "contentdesk/internal/models"

// DefaultVisibleCount is used when a window is built with a non-positive size.
const DefaultVisibleCount = 9

// Window is the bounded prefix of a list that is currently rendered.
type Window struct {
	initial   int
	increment int
	visible   int
}

func NewWindow(initial, increment int) *Window {
	if initial <= 0 {
		initial = DefaultVisibleCount
	}
	if increment <= 0 {
		increment = DefaultVisibleCount
	}
	return &Window{initial: initial, increment: increment, visible: initial}
}

// Visible is the current cursor value.
func (w *Window) Visible() int { return w.visible }

// Initial is the value Reset returns to.
func (w *Window) Initial() int { return w.initial }

// Increment is the step LoadMore adds.
func (w *Window) Increment() int { return w.increment }

// Slice returns the rendered prefix of items.
func (w *Window) Slice(items []models.ContentItem) []models.ContentItem {
	n := w.visible
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// LoadMore extends the window by one step, capped at total.
func (w *Window) LoadMore(total int) int {
	next := w.visible + w.increment
	if next > total {
		next = total
	}
	w.visible = next
	return w.visible
}

// HasMore reports whether the load-more control should be shown.
func (w *Window) HasMore(total int) bool {
	return w.visible < total
}

// Reset moves the cursor back to the initial value.
func (w *Window) Reset() {
	w.visible = w.initial
}

// SetVisible restores a cursor sent back by a client; values below the
// initial size are raised to it.
func (w *Window) SetVisible(n int) {
	if n < w.initial {
		n = w.initial
	}
	w.visible = n
}
