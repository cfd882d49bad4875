// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

// history.go is the bounded undo/redo stack pair that drives Command.

// defaultHistoryLimit is the default bound on the undo stack's size.
const defaultHistoryLimit = 200

// History holds the undo and redo stacks for one scene's edit session.
type History struct {
	scene *Scene
	limit int
	undo  []Command
	redo  []Command
}

// NewHistory returns a History bounded to defaultHistoryLimit entries,
// applying commands to scene.
func NewHistory(scene *Scene) *History {
	return NewHistoryWithLimit(scene, defaultHistoryLimit)
}

// NewHistoryWithLimit is NewHistory with an explicit undo-stack bound.
func NewHistoryWithLimit(scene *Scene, limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{scene: scene, limit: limit}
}

// Add executes cmd against the scene, pushes it to the undo stack, and
// clears the redo stack. If the undo stack is at its limit, the
// oldest entry is dropped.
func (h *History) Add(cmd Command) error {
	if err := cmd.Execute(h.scene); err != nil {
		return err
	}
	h.undo = append(h.undo, cmd)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
	return nil
}

// Undo pops the most recent command from the undo stack, calls its Undo,
// and pushes it to the redo stack. It is a no-op returning false if the
// undo stack is empty.
func (h *History) Undo() (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	last := len(h.undo) - 1
	cmd := h.undo[last]
	h.undo = h.undo[:last]
	if err := cmd.Undo(h.scene); err != nil {
		return false, err
	}
	h.redo = append(h.redo, cmd)
	return true, nil
}

// Redo is Undo's mirror: it pops from the redo stack, calls Execute, and
// pushes back onto the undo stack. A no-op returning false if the redo
// stack is empty.
func (h *History) Redo() (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	last := len(h.redo) - 1
	cmd := h.redo[last]
	h.redo = h.redo[:last]
	if err := cmd.Execute(h.scene); err != nil {
		return false, err
	}
	h.undo = append(h.undo, cmd)
	return true, nil
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear empties both stacks without touching the scene.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// UndoLabel returns the label of the command Undo would reverse, and
// whether one exists.
func (h *History) UndoLabel() (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	return h.undo[len(h.undo)-1].Label(), true
}

// RedoLabel returns the label of the command Redo would reapply, and
// whether one exists.
func (h *History) RedoLabel() (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	return h.redo[len(h.redo)-1].Label(), true
}
