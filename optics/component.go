// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package optics implements the scene graph of optical components, the
// trace engine that pushes ray segments through them, the command/history
// subsystem that makes scene edits undo-safe, and the JSON scene/project
// serializer.
package optics

import (
	"fmt"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// hitEpsilon is the minimum distance for an intersection to be
// emissible; it prevents a ray from immediately re-hitting its own
// originating surface.
const hitEpsilon = 1e-6

// Hit is one candidate intersection returned by Intersect.
type Hit struct {
	Distance  float64
	Point     vec.Vector
	Normal    vec.Vector // unit, oriented opposite to the incoming ray.
	SurfaceID string
	Extra     map[string]any
}

// Component is the capability set every optical component supports
// regardless of variant.
type Component interface {
	ID() string
	Kind() string
	Label() string
	SetLabel(string)
	Pos() vec.Vector
	SetPos(vec.Vector)
	AngleRad() float64
	SetAngleRad(float64)
	Selected() bool
	SetSelected(bool)
	Notes() string
	SetNotes(string)

	GetProperties() *Properties
	SetProperty(name string, value any) error

	// ToJSON returns the component's type-specific serialized state,
	// used to populate a scene file's per-component "_raw" field.
	ToJSON() map[string]any

	ContainsPoint(p vec.Vector) bool
	BoundingBox() (min, max vec.Vector)
}

// Interactor is implemented by components a ray can strike: anything
// with geometry that participates in ordinary (non-fiber) intersection.
type Interactor interface {
	Component
	// Intersect returns every candidate hit for a ray leaving origin in
	// direction dir. Only hits with Distance > hitEpsilon are valid.
	Intersect(origin, dir vec.Vector) []Hit
	// Interact consumes the hit, must terminate in, and returns zero or
	// more successor rays.
	Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error)
}

// Source is implemented by components that emit rays at the start of a
// trace frame.
type Source interface {
	Component
	Enabled() bool
	SetEnabled(bool)
	GenerateRays(cfg TraceConfig) ([]*ray.Segment, error)
}

// FiberInteractor is the special two-stage coupling contract optical
// fibers implement instead of Interactor.
type FiberInteractor interface {
	Component
	CheckInputCoupling(origin, dir vec.Vector) (Hit, bool)
	HandleInputInteraction(in *ray.Segment, hit Hit) error
	GenerateOutputRays(cfg TraceConfig) ([]*ray.Segment, error)
}

// Base holds the fields common to every component variant and is
// embedded by each concrete component type.
type Base struct {
	id       string
	kind     string
	label    string
	pos      vec.Vector
	angleRad float64
	selected bool
	notes    string
}

func newBase(id, kind string, pos vec.Vector, angleRad float64) Base {
	return Base{id: id, kind: kind, pos: pos, angleRad: angleRad}
}

func (b *Base) ID() string           { return b.id }
func (b *Base) Kind() string          { return b.kind }
func (b *Base) Label() string         { return b.label }
func (b *Base) SetLabel(l string)     { b.label = l }
func (b *Base) Pos() vec.Vector       { return b.pos }
func (b *Base) SetPos(p vec.Vector)   { b.pos = p }
func (b *Base) AngleRad() float64     { return b.angleRad }
func (b *Base) SetAngleRad(a float64) { b.angleRad = a }
func (b *Base) Selected() bool        { return b.selected }
func (b *Base) SetSelected(s bool)    { b.selected = s }
func (b *Base) Notes() string         { return b.notes }
func (b *Base) SetNotes(n string)     { b.notes = n }

// axis returns the unit direction along the component's angleRad, used
// by planar components (mirrors, screens, polarizers, apertures) as
// their surface tangent.
func (b *Base) axis() vec.Vector { return vec.FromAngle(b.angleRad) }

// normal returns the unit direction perpendicular to axis(), i.e. the
// component's face normal for planar geometry.
func (b *Base) normal() vec.Vector { return b.axis().Perp() }

// errUnknownProperty is the standard error for SetProperty calls naming
// a property the component does not expose.
func errUnknownProperty(kind, name string) error {
	return fmt.Errorf("optics: %s has no property %q", kind, name)
}

// errReadOnlyProperty is returned when SetProperty targets a read-only
// or disabled descriptor.
func errReadOnlyProperty(kind, name string) error {
	return fmt.Errorf("optics: %s property %q is read-only", kind, name)
}

// toFloat coerces common numeric representations (float64, float32,
// int, int64, uint32) to float64; strings are not accepted. SetProperty callers are expected to convert strings per
// the descriptor type before passing; accepting the common numeric
// kinds keeps the contract lenient with already-converted values.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
