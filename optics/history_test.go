// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"testing"

	"github.com/galvanized/opticslab/vec"
)

func TestHistoryAddExecutesAndPushesUndo(t *testing.T) {
	s := NewScene("test")
	h := NewHistory(s)
	m := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)

	if err := h.Add(&AddCommand{Component: m}); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("got %d components want 1", s.Len())
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("got canUndo=%v canRedo=%v want true/false", h.CanUndo(), h.CanRedo())
	}
}

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	s := NewScene("test")
	h := NewHistory(s)
	m := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	h.Add(&AddCommand{Component: m})

	ok, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || s.Len() != 0 {
		t.Fatalf("undo did not restore empty scene: ok=%v len=%d", ok, s.Len())
	}
	if h.CanUndo() || !h.CanRedo() {
		t.Fatalf("got canUndo=%v canRedo=%v want false/true", h.CanUndo(), h.CanRedo())
	}

	ok, err = h.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || s.Len() != 1 {
		t.Fatalf("redo did not reproduce post-execute state: ok=%v len=%d", ok, s.Len())
	}
}

func TestHistoryAddClearsRedoStack(t *testing.T) {
	s := NewScene("test")
	h := NewHistory(s)
	a := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	b := NewMirror(s.NextID("Mirror"), vec.New(1, 0), 0, 10)

	h.Add(&AddCommand{Component: a})
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected a redo entry before adding a new command")
	}
	h.Add(&AddCommand{Component: b})
	if h.CanRedo() {
		t.Fatal("adding a new command should clear the redo stack")
	}
}

func TestHistoryUndoRedoOnEmptyStacksIsNoOp(t *testing.T) {
	s := NewScene("test")
	h := NewHistory(s)

	ok, err := h.Undo()
	if err != nil || ok {
		t.Fatalf("undo on empty stack: ok=%v err=%v want false/nil", ok, err)
	}
	ok, err = h.Redo()
	if err != nil || ok {
		t.Fatalf("redo on empty stack: ok=%v err=%v want false/nil", ok, err)
	}
}

func TestHistoryRespectsLimit(t *testing.T) {
	s := NewScene("test")
	h := NewHistoryWithLimit(s, 2)

	for i := 0; i < 3; i++ {
		m := NewMirror(s.NextID("Mirror"), vec.New(float64(i), 0), 0, 10)
		if err := h.Add(&AddCommand{Component: m}); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("got %d components want 3", s.Len())
	}

	undone := 0
	for h.CanUndo() {
		if _, err := h.Undo(); err != nil {
			t.Fatal(err)
		}
		undone++
	}
	if undone != 2 {
		t.Fatalf("got %d undo steps want 2 (limit truncates oldest)", undone)
	}
}

func TestHistoryLabelsReflectTopOfStack(t *testing.T) {
	s := NewScene("test")
	h := NewHistory(s)
	m := NewMirror(s.NextID("Mirror"), vec.New(0, 0), 0, 10)
	h.Add(&AddCommand{Component: m})

	label, ok := h.UndoLabel()
	if !ok || label != "Add Mirror" {
		t.Fatalf("got undo label %q ok=%v want %q/true", label, ok, "Add Mirror")
	}
	if _, ok := h.RedoLabel(); ok {
		t.Fatal("expected no redo label before any undo")
	}

	h.Undo()
	label, ok = h.RedoLabel()
	if !ok || label != "Add Mirror" {
		t.Fatalf("got redo label %q ok=%v want %q/true", label, ok, "Add Mirror")
	}
}
