// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"fmt"

	"github.com/galvanized/opticslab/vec"
)

// command.go implements the undo-safe scene edit commands,
// following the same explicit-state, explicit-error style established
// by scene.go throughout this package.

// valuesEqualEpsilon is the tolerance used by the SetProperty coalescing
// rule's no-op check.
const valuesEqualEpsilon = 1e-6

// Command is one undo-safe scene edit. State holds whatever Execute needs
// to redo and whatever Undo needs to reverse.
type Command interface {
	Execute(s *Scene) error
	Undo(s *Scene) error
	// Label names the command for UI display (e.g. "Move Mirror").
	Label() string
}

// AddCommand inserts a single freshly-built component at the end of the
// scene; undo removes it by id.
type AddCommand struct {
	Component Component
}

func (c *AddCommand) Execute(s *Scene) error { return s.Add(c.Component) }

func (c *AddCommand) Undo(s *Scene) error {
	if _, _, ok := s.RemoveByID(c.Component.ID()); !ok {
		return fmt.Errorf("optics: undo add: component %q not found", c.Component.ID())
	}
	return nil
}

func (c *AddCommand) Label() string { return "Add " + c.Component.Kind() }

// DeleteCommand removes one component, remembering its original index so
// undo reinserts it there exactly.
type DeleteCommand struct {
	Component     Component
	originalIndex int
}

// NewDeleteCommand captures id's current index from s so Undo can restore
// it. id must already be present in s.
func NewDeleteCommand(s *Scene, id string) (*DeleteCommand, error) {
	c, ok := s.ByID(id)
	if !ok {
		return nil, fmt.Errorf("optics: delete: component %q not found", id)
	}
	index := -1
	for i, existing := range s.Components() {
		if existing.ID() == id {
			index = i
			break
		}
	}
	return &DeleteCommand{Component: c, originalIndex: index}, nil
}

func (c *DeleteCommand) Execute(s *Scene) error {
	_, _, ok := s.RemoveByID(c.Component.ID())
	if !ok {
		return fmt.Errorf("optics: delete: component %q not found", c.Component.ID())
	}
	return nil
}

func (c *DeleteCommand) Undo(s *Scene) error {
	return s.InsertAt(c.Component, c.originalIndex)
}

func (c *DeleteCommand) Label() string { return "Delete " + c.Component.Kind() }

// MoveCommand repositions a single component.
type MoveCommand struct {
	ID             string
	FromPos, ToPos vec.Vector
}

func (c *MoveCommand) Execute(s *Scene) error { return setPos(s, c.ID, c.ToPos) }
func (c *MoveCommand) Undo(s *Scene) error    { return setPos(s, c.ID, c.FromPos) }
func (c *MoveCommand) Label() string          { return "Move" }

func setPos(s *Scene, id string, p vec.Vector) error {
	comp, ok := s.ByID(id)
	if !ok {
		return fmt.Errorf("optics: move: component %q not found", id)
	}
	comp.SetPos(p)
	return nil
}

// moveDelta is one component's before/after position, used by
// MoveMultiCommand to reposition a multi-selection as a single undo step.
type moveDelta struct {
	From, To vec.Vector
}

// MoveMultiCommand moves a set of components together, e.g. a drag of the
// current selection.
type MoveMultiCommand struct {
	Deltas map[string]moveDelta
}

// NewMoveMultiCommand builds a MoveMultiCommand from parallel id/from/to
// slices of equal length.
func NewMoveMultiCommand(ids []string, from, to []vec.Vector) *MoveMultiCommand {
	deltas := make(map[string]moveDelta, len(ids))
	for i, id := range ids {
		deltas[id] = moveDelta{From: from[i], To: to[i]}
	}
	return &MoveMultiCommand{Deltas: deltas}
}

func (c *MoveMultiCommand) Execute(s *Scene) error {
	for id, d := range c.Deltas {
		if err := setPos(s, id, d.To); err != nil {
			return err
		}
	}
	return nil
}

func (c *MoveMultiCommand) Undo(s *Scene) error {
	for id, d := range c.Deltas {
		if err := setPos(s, id, d.From); err != nil {
			return err
		}
	}
	return nil
}

func (c *MoveMultiCommand) Label() string { return "Move Selection" }

// RotateCommand changes a single component's angle.
type RotateCommand struct {
	ID             string
	FromRad, ToRad float64
}

func (c *RotateCommand) Execute(s *Scene) error { return setAngle(s, c.ID, c.ToRad) }
func (c *RotateCommand) Undo(s *Scene) error    { return setAngle(s, c.ID, c.FromRad) }
func (c *RotateCommand) Label() string          { return "Rotate" }

func setAngle(s *Scene, id string, angleRad float64) error {
	comp, ok := s.ByID(id)
	if !ok {
		return fmt.Errorf("optics: rotate: component %q not found", id)
	}
	comp.SetAngleRad(angleRad)
	return nil
}

// SetPropertyCommand dispatches a single property change through the
// component's own SetProperty, remembering the prior value so Undo can
// dispatch the reverse.
type SetPropertyCommand struct {
	ID, PropName       string
	OldValue, NewValue any
}

// NewSetPropertyCommand builds a SetPropertyCommand, or returns
// nil when oldValue and newValue are equal within
// valuesEqualEpsilon, so the caller can skip adding a command to
// history entirely when a continuous edit committed no real change.
func NewSetPropertyCommand(id, propName string, oldValue, newValue any) *SetPropertyCommand {
	if areValuesEqual(oldValue, newValue) {
		return nil
	}
	return &SetPropertyCommand{ID: id, PropName: propName, OldValue: oldValue, NewValue: newValue}
}

func (c *SetPropertyCommand) Execute(s *Scene) error {
	return dispatchSetProperty(s, c.ID, c.PropName, c.NewValue)
}

func (c *SetPropertyCommand) Undo(s *Scene) error {
	return dispatchSetProperty(s, c.ID, c.PropName, c.OldValue)
}

func (c *SetPropertyCommand) Label() string { return "Set " + c.PropName }

func dispatchSetProperty(s *Scene, id, propName string, value any) error {
	comp, ok := s.ByID(id)
	if !ok {
		return fmt.Errorf("optics: set property: component %q not found", id)
	}
	return comp.SetProperty(propName, value)
}

// areValuesEqual reports whether old and new are equal for the purposes
// of the SetProperty coalescing rule: numeric values compare
// within valuesEqualEpsilon, everything else by Go equality.
func areValuesEqual(old, new any) bool {
	if oldF, ok := toFloat(old); ok {
		if newF, ok := toFloat(new); ok {
			d := oldF - newF
			if d < 0 {
				d = -d
			}
			return d < valuesEqualEpsilon
		}
		return false
	}
	return old == new
}

// ClearAllCommand empties the scene, snapshotting it first so Undo can
// restore every component.
type ClearAllCommand struct {
	snapshot []Component
}

// NewClearAllCommand deep-copies s's current components via Scene.Clone
// so the snapshot survives the scene being cleared.
func NewClearAllCommand(s *Scene) (*ClearAllCommand, error) {
	clone, err := s.Clone()
	if err != nil {
		return nil, err
	}
	return &ClearAllCommand{snapshot: clone.Components()}, nil
}

func (c *ClearAllCommand) Execute(s *Scene) error {
	s.Clear()
	return nil
}

func (c *ClearAllCommand) Undo(s *Scene) error {
	s.Clear()
	for _, comp := range c.snapshot {
		if err := s.Add(comp); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClearAllCommand) Label() string { return "Clear All" }

// CompositeCommand groups several commands into one undo step, e.g.
// deleting a multi-selection. Execute runs sub-commands in order;
// Undo reverses them.
type CompositeCommand struct {
	Commands []Command
	label    string
}

// NewCompositeCommand groups cmds under label, used for the history
// display (e.g. "Delete 3 components").
func NewCompositeCommand(label string, cmds ...Command) *CompositeCommand {
	return &CompositeCommand{Commands: cmds, label: label}
}

func (c *CompositeCommand) Execute(s *Scene) error {
	for _, cmd := range c.Commands {
		if err := cmd.Execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *CompositeCommand) Undo(s *Scene) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *CompositeCommand) Label() string { return c.label }

// SelectionState is an externally-owned selection set that SelectCommand
// mutates through a small interface, keeping Command independent of
// whatever UI-facing selection type the consumer uses.
type SelectionState interface {
	SetSelection(ids []string)
}

// SelectCommand changes which components are selected. Selection
// does not affect trace semantics; it is tracked in history purely so an
// undo restores the prior highlight state.
type SelectCommand struct {
	state           SelectionState
	PrevIDs, NewIDs []string
}

// NewSelectCommand builds a SelectCommand against state, capturing prevIDs
// (the selection before the change) and newIDs (the selection to apply).
func NewSelectCommand(state SelectionState, prevIDs, newIDs []string) *SelectCommand {
	return &SelectCommand{state: state, PrevIDs: prevIDs, NewIDs: newIDs}
}

func (c *SelectCommand) Execute(s *Scene) error {
	c.state.SetSelection(c.NewIDs)
	return nil
}

func (c *SelectCommand) Undo(s *Scene) error {
	c.state.SetSelection(c.PrevIDs)
	return nil
}

func (c *SelectCommand) Label() string { return "Select" }
