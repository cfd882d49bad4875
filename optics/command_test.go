// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"testing"

	"github.com/galvanized/opticslab/vec"
)

func newTestMirror(s *Scene) *Mirror {
	return NewMirror(s.NextID("Mirror"), vec.New(10, 20), 0.5, 50)
}

func TestAddCommandExecuteAndUndo(t *testing.T) {
	s := NewScene("test")
	m := newTestMirror(s)
	cmd := &AddCommand{Component: m}

	if err := cmd.Execute(s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("got %d components want 1", s.Len())
	}
	if err := cmd.Undo(s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("got %d components want 0 after undo", s.Len())
	}
}

func TestDeleteCommandRestoresOriginalIndex(t *testing.T) {
	s := NewScene("test")
	a := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	b := NewMirror(s.NextID("Mirror"), vec.New(1, 0), 0, 10)
	c := NewMirror(s.NextID("Mirror"), vec.New(2, 0), 0, 10)
	for _, m := range []*Mirror{a, b, c} {
		if err := s.Add(m); err != nil {
			t.Fatal(err)
		}
	}

	del, err := NewDeleteCommand(s, b.ID())
	if err != nil {
		t.Fatal(err)
	}
	if err := del.Execute(s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d components want 2", s.Len())
	}
	if err := del.Undo(s); err != nil {
		t.Fatal(err)
	}
	got := s.Components()
	if len(got) != 3 || got[1].ID() != b.ID() {
		t.Fatalf("undo did not restore %q at index 1: %v", b.ID(), got)
	}
}

func TestMoveCommandExecuteAndUndo(t *testing.T) {
	s := NewScene("test")
	m := newTestMirror(s)
	if err := s.Add(m); err != nil {
		t.Fatal(err)
	}
	from := m.Pos()
	to := vec.New(99, 99)

	cmd := &MoveCommand{ID: m.ID(), FromPos: from, ToPos: to}
	if err := cmd.Execute(s); err != nil {
		t.Fatal(err)
	}
	if !m.Pos().Eq(to) {
		t.Fatalf("got pos %v want %v", m.Pos(), to)
	}
	if err := cmd.Undo(s); err != nil {
		t.Fatal(err)
	}
	if !m.Pos().Eq(from) {
		t.Fatalf("got pos %v want %v after undo", m.Pos(), from)
	}
}

func TestMoveMultiCommandMovesEveryComponent(t *testing.T) {
	s := NewScene("test")
	a := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	b := NewMirror(s.NextID("Mirror"), vec.New(5, 5), 0, 10)
	s.Add(a)
	s.Add(b)

	cmd := NewMoveMultiCommand(
		[]string{a.ID(), b.ID()},
		[]vec.Vector{a.Pos(), b.Pos()},
		[]vec.Vector{vec.New(1, 1), vec.New(6, 6)},
	)
	if err := cmd.Execute(s); err != nil {
		t.Fatal(err)
	}
	if !a.Pos().Eq(vec.New(1, 1)) || !b.Pos().Eq(vec.New(6, 6)) {
		t.Fatalf("move did not apply to both: a=%v b=%v", a.Pos(), b.Pos())
	}
	if err := cmd.Undo(s); err != nil {
		t.Fatal(err)
	}
	if !a.Pos().Eq(vec.New(0, 0)) || !b.Pos().Eq(vec.New(5, 5)) {
		t.Fatalf("undo did not restore both: a=%v b=%v", a.Pos(), b.Pos())
	}
}

func TestRotateCommandExecuteAndUndo(t *testing.T) {
	s := NewScene("test")
	m := newTestMirror(s)
	s.Add(m)

	cmd := &RotateCommand{ID: m.ID(), FromRad: m.AngleRad(), ToRad: 1.2}
	if err := cmd.Execute(s); err != nil {
		t.Fatal(err)
	}
	if m.AngleRad() != 1.2 {
		t.Fatalf("got angle %v want 1.2", m.AngleRad())
	}
	if err := cmd.Undo(s); err != nil {
		t.Fatal(err)
	}
	if m.AngleRad() != 0.5 {
		t.Fatalf("got angle %v want 0.5 after undo", m.AngleRad())
	}
}

func TestNewSetPropertyCommandCoalescesEqualValues(t *testing.T) {
	if cmd := NewSetPropertyCommand("m1", "length", 50.0, 50.0000001); cmd != nil {
		t.Errorf("expected nil command for near-equal values, got %+v", cmd)
	}
	if cmd := NewSetPropertyCommand("m1", "length", 50.0, 60.0); cmd == nil {
		t.Errorf("expected a command for distinct values")
	}
	if cmd := NewSetPropertyCommand("m1", "coated", false, true); cmd == nil {
		t.Errorf("expected a command for distinct non-numeric values")
	}
	if cmd := NewSetPropertyCommand("m1", "coated", true, true); cmd != nil {
		t.Errorf("expected nil command for equal non-numeric values")
	}
}

func TestSetPropertyCommandExecuteAndUndo(t *testing.T) {
	s := NewScene("test")
	m := newTestMirror(s)
	s.Add(m)

	cmd := NewSetPropertyCommand(m.ID(), "length", 50.0, 75.0)
	if cmd == nil {
		t.Fatal("expected a non-nil command")
	}
	if err := cmd.Execute(s); err != nil {
		t.Fatal(err)
	}
	if d, _ := m.GetProperties().Get("length"); d.Value != 75.0 {
		t.Fatalf("got length %v want 75", d.Value)
	}
	if err := cmd.Undo(s); err != nil {
		t.Fatal(err)
	}
	if d, _ := m.GetProperties().Get("length"); d.Value != 50.0 {
		t.Fatalf("got length %v want 50 after undo", d.Value)
	}
}

func TestClearAllCommandRestoresEveryComponent(t *testing.T) {
	s := NewScene("test")
	a := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	b := NewMirror(s.NextID("Mirror"), vec.New(5, 5), 0, 10)
	s.Add(a)
	s.Add(b)

	cmd, err := NewClearAllCommand(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Execute(s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("got %d components want 0", s.Len())
	}
	if err := cmd.Undo(s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d components want 2 after undo", s.Len())
	}
}

func TestCompositeCommandUndoesInReverseOrder(t *testing.T) {
	s := NewScene("test")
	a := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	b := NewMirror(s.NextID("Mirror"), vec.New(5, 5), 0, 10)
	s.Add(a)
	s.Add(b)

	delA, err := NewDeleteCommand(s, a.ID())
	if err != nil {
		t.Fatal(err)
	}
	delA.Execute(s)
	delB, err := NewDeleteCommand(s, b.ID())
	if err != nil {
		t.Fatal(err)
	}
	delB.Execute(s)

	composite := NewCompositeCommand("Delete 2 components", delA, delB)
	if err := composite.Undo(s); err != nil {
		t.Fatal(err)
	}
	got := s.Components()
	if len(got) != 2 || got[0].ID() != a.ID() || got[1].ID() != b.ID() {
		t.Fatalf("composite undo did not restore both at original indices: %v", got)
	}
}

type fakeSelection struct{ ids []string }

func (f *fakeSelection) SetSelection(ids []string) { f.ids = ids }

func TestSelectCommandExecuteAndUndo(t *testing.T) {
	state := &fakeSelection{ids: []string{"a"}}
	cmd := NewSelectCommand(state, []string{"a"}, []string{"b", "c"})

	if err := cmd.Execute(nil); err != nil {
		t.Fatal(err)
	}
	if len(state.ids) != 2 || state.ids[0] != "b" {
		t.Fatalf("got selection %v want [b c]", state.ids)
	}
	if err := cmd.Undo(nil); err != nil {
		t.Fatal(err)
	}
	if len(state.ids) != 1 || state.ids[0] != "a" {
		t.Fatalf("got selection %v want [a] after undo", state.ids)
	}
}
