package stack

// History is a linear undo/redo list of stack snapshots.
//
// The history always holds at least one entry, the state it was created
// with, and a cursor naming the current entry. Record drops every entry
// after the cursor before appending, so a new edit destroys the redo
// states. Undo and Redo only move the cursor.
//
// History is not safe for concurrent use.
type History struct {
	entries []Stack
	cursor  int
	limit   int
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithLimit caps the number of retained entries; the oldest entries are
// dropped first. n <= 1 means no limit.
func WithLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 1 {
			h.limit = n
		}
	}
}

// NewHistory creates a history whose only entry is initial.
func NewHistory(initial Stack, opts ...HistoryOption) *History {
	h := &History{entries: []Stack{initial}}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Record makes s the current state.
func (h *History) Record(s Stack) {
	clear(h.entries[h.cursor+1:])
	h.entries = append(h.entries[:h.cursor+1], s)
	h.cursor++
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		clear(h.entries[:drop])
		h.entries = h.entries[drop:]
		h.cursor -= drop
	}
}

// Undo moves back one entry and returns it. It reports false, leaving the
// history unchanged, when there is nothing to undo.
func (h *History) Undo() (Stack, bool) {
	if !h.CanUndo() {
		return h.Current(), false
	}
	h.cursor--
	return h.Current(), true
}

// Redo moves forward one entry and returns it. It reports false, leaving
// the history unchanged, when there is nothing to redo.
func (h *History) Redo() (Stack, bool) {
	if !h.CanRedo() {
		return h.Current(), false
	}
	h.cursor++
	return h.Current(), true
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Current returns the stack at the cursor.
func (h *History) Current() Stack { return h.entries[h.cursor] }

// Len returns the number of retained entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the position of the current entry.
func (h *History) Cursor() int { return h.cursor }

// Reset drops every entry and starts over from s.
func (h *History) Reset(s Stack) {
	clear(h.entries)
	h.entries = append(h.entries[:0], s)
	h.cursor = 0
}
