// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import "fmt"

// scene.go is the ordered component container: an ordered,
// append/remove slice of parts plus counter-based unique identifier
// allocation, simplified here to a per-kind monotonic counter since
// component ids never need to be recycled the way generational entity
// ids do.

// Scene is the ordered list of components that make up one optical
// bench. Draw order is insertion order.
type Scene struct {
	name       string
	settings   SceneSettings
	components []Component
	byID       map[string]int // id -> index into components, kept in sync.
	counters   map[string]int // per-kind id allocation counters.
}

// NewScene returns an empty, named scene with default settings.
func NewScene(name string) *Scene {
	return &Scene{
		name:     name,
		settings: defaultSceneSettings,
		byID:     map[string]int{},
		counters: map[string]int{},
	}
}

// Name returns the scene's display name.
func (s *Scene) Name() string { return s.name }

// SetName renames the scene.
func (s *Scene) SetName(name string) { s.name = name }

// Settings returns the scene's persisted editor/trace settings.
func (s *Scene) Settings() SceneSettings { return s.settings }

// SetSettings replaces the scene's settings wholesale.
func (s *Scene) SetSettings(settings SceneSettings) { s.settings = settings }

// NextID allocates a unique id for a new component of the given kind,
// e.g. "mirror-1", "mirror-2". Ids are never reused within a scene's
// lifetime even across deletes, matching the uniqueness invariant.
func (s *Scene) NextID(kind string) string {
	s.counters[kind]++
	return fmt.Sprintf("%s-%d", kind, s.counters[kind])
}

// Add appends component to the end of the scene. It is an error
// to add a component whose id is already present.
func (s *Scene) Add(c Component) error {
	if _, exists := s.byID[c.ID()]; exists {
		return fmt.Errorf("optics: duplicate component id %q", c.ID())
	}
	s.byID[c.ID()] = len(s.components)
	s.components = append(s.components, c)
	return nil
}

// InsertAt inserts component at the given index, shifting subsequent
// components right. Used by Command.Undo after a Delete.
func (s *Scene) InsertAt(c Component, index int) error {
	if _, exists := s.byID[c.ID()]; exists {
		return fmt.Errorf("optics: duplicate component id %q", c.ID())
	}
	if index < 0 || index > len(s.components) {
		index = len(s.components)
	}
	s.components = append(s.components, nil)
	copy(s.components[index+1:], s.components[index:])
	s.components[index] = c
	s.reindex()
	return nil
}

// RemoveByID removes and returns the component with the given id, and
// the index it occupied, so a Delete command can restore it exactly.
// The second return is false if no such component exists.
func (s *Scene) RemoveByID(id string) (Component, int, bool) {
	index, ok := s.byID[id]
	if !ok {
		return nil, 0, false
	}
	removed := s.components[index]
	s.components = append(s.components[:index], s.components[index+1:]...)
	s.reindex()
	return removed, index, true
}

// ByID returns the component with the given id, if present.
func (s *Scene) ByID(id string) (Component, bool) {
	index, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.components[index], true
}

// Clear removes every component from the scene.
func (s *Scene) Clear() {
	s.components = nil
	s.byID = map[string]int{}
}

// Len returns the number of components in the scene.
func (s *Scene) Len() int { return len(s.components) }

// Components returns the scene's components in draw (insertion) order.
// The returned slice is owned by the caller; mutating it does not affect
// the scene.
func (s *Scene) Components() []Component {
	out := make([]Component, len(s.components))
	copy(out, s.components)
	return out
}

// reindex rebuilds byID after a structural change shifts indices.
func (s *Scene) reindex() {
	for id := range s.byID {
		delete(s.byID, id)
	}
	for i, c := range s.components {
		s.byID[c.ID()] = i
	}
}

// ResetAccumulators clears per-component accumulators (screen bins,
// photodiode hit counts, fiber input captures) ahead of a new trace
// frame.
func (s *Scene) ResetAccumulators() {
	for _, c := range s.components {
		if r, ok := c.(resettable); ok {
			r.ResetAccumulators()
		}
	}
}

// resettable is implemented by components with per-frame accumulators.
type resettable interface {
	ResetAccumulators()
}

// Sources returns every component in the scene that implements Source,
// in scene order.
func (s *Scene) Sources() []Source {
	var out []Source
	for _, c := range s.components {
		if src, ok := c.(Source); ok {
			out = append(out, src)
		}
	}
	return out
}

// Interactors returns every component that implements Interactor
// (ordinary geometry a ray can strike), in scene order. Fibers are
// excluded; see Fibers.
func (s *Scene) Interactors() []Interactor {
	var out []Interactor
	for _, c := range s.components {
		if it, ok := c.(Interactor); ok {
			out = append(out, it)
		}
	}
	return out
}

// Fibers returns every component that implements FiberInteractor, in
// scene order.
func (s *Scene) Fibers() []FiberInteractor {
	var out []FiberInteractor
	for _, c := range s.components {
		if f, ok := c.(FiberInteractor); ok {
			out = append(out, f)
		}
	}
	return out
}

// Clone performs a deep copy of the scene's component list by
// round-tripping each component through the serializer (ToJSON +
// FromJSON), used by the ClearAll command to snapshot state for undo
// without entangling Scene with Command.
func (s *Scene) Clone() (*Scene, error) {
	clone := NewScene(s.name)
	clone.settings = s.settings
	clone.counters = make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		clone.counters[k] = v
	}
	for _, c := range s.components {
		rebuilt, err := componentFromJSON(componentEnvelope{
			Type:       c.Kind(),
			ID:         c.ID(),
			X:          c.Pos().X,
			Y:          c.Pos().Y,
			Angle:      c.AngleRad(),
			Properties: map[string]any{},
			Raw:        c.ToJSON(),
			Label:      c.Label(),
			Notes:      c.Notes(),
			Selected:   c.Selected(),
		})
		if err != nil {
			return nil, err
		}
		if err := clone.Add(rebuilt); err != nil {
			return nil, err
		}
	}
	return clone, nil
}
