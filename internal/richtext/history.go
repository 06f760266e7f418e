// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

// DefaultHistoryDepth is how many snapshots History keeps in each direction.
const DefaultHistoryDepth = 50

// History is a bounded undo/redo stack of content snapshots. It is plain
// data so it can be stored alongside the draft it belongs to.
type History struct {
	Past   []string `json:"past,omitempty"`
	Future []string `json:"future,omitempty"`
	Depth  int      `json:"depth,omitempty"`
}

// Record saves the content as it was before a change. Any redo snapshots
// are discarded.
func (h *History) Record(previous string) {
	h.Past = append(h.Past, previous)
	if limit := h.depth(); len(h.Past) > limit {
		h.Past = h.Past[len(h.Past)-limit:]
	}
	h.Future = nil
}

// Undo returns the previous snapshot and pushes current onto the redo stack.
func (h *History) Undo(current string) (string, bool) {
	if len(h.Past) == 0 {
		return current, false
	}
	prev := h.Past[len(h.Past)-1]
	h.Past = h.Past[:len(h.Past)-1]
	h.Future = append(h.Future, current)
	return prev, true
}

// Redo reverses the most recent Undo.
func (h *History) Redo(current string) (string, bool) {
	if len(h.Future) == 0 {
		return current, false
	}
	next := h.Future[len(h.Future)-1]
	h.Future = h.Future[:len(h.Future)-1]
	h.Past = append(h.Past, current)
	return next, true
}

// CanUndo reports whether Undo would change anything.
func (h *History) CanUndo() bool { return len(h.Past) > 0 }

// CanRedo reports whether Redo would change anything.
func (h *History) CanRedo() bool { return len(h.Future) > 0 }

func (h *History) depth() int {
	if h.Depth <= 0 {
		return DefaultHistoryDepth
	}
	return h.Depth
}
