// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// mirrors.go implements the six reflective component variants,
// all sharing the planar reflection rule:
//
//	R = I - 2(I.N)N; intensity *= (coated ? 0.995 : 0.99) unless
//	ignoreDecay; phase += pi; one successor.

const (
	uncoatedMirrorReflectivity = 0.99
	coatedMirrorReflectivity   = 0.995
)

// reflectOnce builds the single successor ray a reflective interaction
// produces: direction mirrored about hit.Normal, intensity attenuated by
// reflectivity (unless the parent ignores decay), phase advanced by pi.
func reflectOnce(in *ray.Segment, hit Hit, reflectivity float64) (*ray.Segment, error) {
	dir := reflect(in.Direction, hit.Normal)
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= reflectivity
	}
	return in.Successor(hit.Point, dir, in.WavelengthNm, intensity, in.Phase+math.Pi,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
}

// ============================================================================
// Mirror

// Mirror is a flat, finite-length reflective surface.
type Mirror struct {
	Base
	length float64
	coated bool
}

// NewMirror constructs a planar mirror centered at pos, oriented along
// angleRad, of the given length. Zero-length mirrors clamp to a
// minimum rather than erroring.
func NewMirror(id string, pos vec.Vector, angleRad, length float64) *Mirror {
	return &Mirror{Base: newBase(id, "Mirror", pos, angleRad), length: clampPositive(length, 10)}
}

func (m *Mirror) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, m.pos, m.axis(), m.length/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (m *Mirror) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	reflectivity := uncoatedMirrorReflectivity
	if m.coated {
		reflectivity = coatedMirrorReflectivity
	}
	successor, err := reflectOnce(in, hit, reflectivity)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *Mirror) GetProperties() *Properties {
	p := NewProperties()
	p.Set("length", PropertyDescriptor{Value: m.length, Label: "Length", Type: PropNumber, Min: numPtr(1)})
	p.Set("coated", PropertyDescriptor{Value: m.coated, Label: "Coated", Type: PropCheckbox})
	return p
}

func (m *Mirror) SetProperty(name string, value any) error {
	switch name {
	case "length":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.length = clampPositive(v, 10)
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.coated = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *Mirror) ToJSON() map[string]any {
	return map[string]any{"length": m.length, "coated": m.coated}
}

func (m *Mirror) ContainsPoint(p vec.Vector) bool {
	_, ok := intersectPlaneSegment(p.Add(m.normal().Scale(1000)), m.normal().Neg(), m.pos, m.axis(), m.length/2)
	return ok && p.DistanceTo(m.pos) <= m.length/2+4
}

func (m *Mirror) BoundingBox() (vec.Vector, vec.Vector) {
	half := m.axis().Scale(m.length / 2)
	a, b := m.pos.Add(half), m.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-2, math.Min(a.Y, b.Y)-2), vec.New(math.Max(a.X, b.X)+2, math.Max(a.Y, b.Y)+2)
}

// ============================================================================
// MetallicMirror

// MetallicMirror is a planar mirror with its own, typically higher,
// configurable reflectivity rather than the binary coated/uncoated split.
type MetallicMirror struct {
	Base
	length       float64
	reflectivity float64
}

// NewMetallicMirror constructs a metallic mirror with the given
// reflectivity in [0,1].
func NewMetallicMirror(id string, pos vec.Vector, angleRad, length, reflectivity float64) *MetallicMirror {
	return &MetallicMirror{
		Base:         newBase(id, "MetallicMirror", pos, angleRad),
		length:       clampPositive(length, 10),
		reflectivity: reflectivity,
	}
}

func (m *MetallicMirror) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, m.pos, m.axis(), m.length/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (m *MetallicMirror) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	successor, err := reflectOnce(in, hit, m.reflectivity)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *MetallicMirror) GetProperties() *Properties {
	p := NewProperties()
	p.Set("length", PropertyDescriptor{Value: m.length, Label: "Length", Type: PropNumber, Min: numPtr(1)})
	p.Set("reflectivity", PropertyDescriptor{Value: m.reflectivity, Label: "Reflectivity", Type: PropRange, Min: numPtr(0), Max: numPtr(1), Step: numPtr(0.001)})
	return p
}

func (m *MetallicMirror) SetProperty(name string, value any) error {
	switch name {
	case "length":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.length = clampPositive(v, 10)
	case "reflectivity":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.reflectivity = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *MetallicMirror) ToJSON() map[string]any {
	return map[string]any{"length": m.length, "reflectivity": m.reflectivity}
}

func (m *MetallicMirror) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(m.pos) <= m.length/2+4 }
func (m *MetallicMirror) BoundingBox() (vec.Vector, vec.Vector) {
	half := m.axis().Scale(m.length / 2)
	a, b := m.pos.Add(half), m.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-2, math.Min(a.Y, b.Y)-2), vec.New(math.Max(a.X, b.X)+2, math.Max(a.Y, b.Y)+2)
}

// ============================================================================
// SphericalMirror

// SphericalMirror is a curved reflector; radius is signed (positive
// curves the reflective face concave toward its normal direction).
type SphericalMirror struct {
	Base
	radius      float64
	apertureDeg float64
	coated      bool
}

// NewSphericalMirror constructs a spherical mirror with the given signed
// radius and full aperture angle in degrees.
func NewSphericalMirror(id string, pos vec.Vector, angleRad, radius, apertureDeg float64) *SphericalMirror {
	return &SphericalMirror{Base: newBase(id, "SphericalMirror", pos, angleRad), radius: radius, apertureDeg: apertureDeg}
}

func (m *SphericalMirror) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectSphericalArc(origin, dir, m.pos, m.normal(), m.radius, (m.apertureDeg*math.Pi/180)/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (m *SphericalMirror) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	reflectivity := uncoatedMirrorReflectivity
	if m.coated {
		reflectivity = coatedMirrorReflectivity
	}
	successor, err := reflectOnce(in, hit, reflectivity)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *SphericalMirror) GetProperties() *Properties {
	p := NewProperties()
	p.Set("radius", PropertyDescriptor{Value: m.radius, Label: "Radius of Curvature", Type: PropNumber})
	p.Set("apertureDeg", PropertyDescriptor{Value: m.apertureDeg, Label: "Aperture (deg)", Type: PropNumber, Min: numPtr(1), Max: numPtr(180)})
	p.Set("coated", PropertyDescriptor{Value: m.coated, Label: "Coated", Type: PropCheckbox})
	return p
}

func (m *SphericalMirror) SetProperty(name string, value any) error {
	switch name {
	case "radius":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.radius = v
	case "apertureDeg":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.apertureDeg = v
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.coated = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *SphericalMirror) ToJSON() map[string]any {
	return map[string]any{"radius": m.radius, "apertureDeg": m.apertureDeg, "coated": m.coated}
}

func (m *SphericalMirror) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(m.pos) <= 8 }
func (m *SphericalMirror) BoundingBox() (vec.Vector, vec.Vector) {
	r := math.Abs(m.radius)*math.Sin((m.apertureDeg*math.Pi/180)/2) + 8
	return m.pos.Sub(vec.New(r, r)), m.pos.Add(vec.New(r, r))
}

// ============================================================================
// ParabolicMirror

// ParabolicMirror reflects a beam parallel to its axis through its
// focus (or the reverse), approximated by a closed-form paraboloid
// segment intersection.
type ParabolicMirror struct {
	Base
	focalLength float64
	halfWidth   float64
	coated      bool
}

// NewParabolicMirror constructs a parabolic mirror.
func NewParabolicMirror(id string, pos vec.Vector, angleRad, focalLength, width float64) *ParabolicMirror {
	return &ParabolicMirror{
		Base:        newBase(id, "ParabolicMirror", pos, angleRad),
		focalLength: focalLength,
		halfWidth:   clampPositive(width, 10) / 2,
	}
}

func (m *ParabolicMirror) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectParabola(origin, dir, m.pos, m.normal(), m.axis(), m.focalLength, m.halfWidth)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (m *ParabolicMirror) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	reflectivity := uncoatedMirrorReflectivity
	if m.coated {
		reflectivity = coatedMirrorReflectivity
	}
	successor, err := reflectOnce(in, hit, reflectivity)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *ParabolicMirror) GetProperties() *Properties {
	p := NewProperties()
	p.Set("focalLength", PropertyDescriptor{Value: m.focalLength, Label: "Focal Length", Type: PropNumber})
	p.Set("width", PropertyDescriptor{Value: m.halfWidth * 2, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("coated", PropertyDescriptor{Value: m.coated, Label: "Coated", Type: PropCheckbox})
	return p
}

func (m *ParabolicMirror) SetProperty(name string, value any) error {
	switch name {
	case "focalLength":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.focalLength = v
	case "width":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.halfWidth = clampPositive(v, 10) / 2
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.coated = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *ParabolicMirror) ToJSON() map[string]any {
	return map[string]any{"focalLength": m.focalLength, "width": m.halfWidth * 2, "coated": m.coated}
}

func (m *ParabolicMirror) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(m.pos) <= m.halfWidth+4 }
func (m *ParabolicMirror) BoundingBox() (vec.Vector, vec.Vector) {
	half := m.axis().Scale(m.halfWidth)
	a, b := m.pos.Add(half), m.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-4, math.Min(a.Y, b.Y)-4), vec.New(math.Max(a.X, b.X)+4, math.Max(a.Y, b.Y)+4)
}

// ============================================================================
// DichroicMirror

// DichroicMirror reflects wavelengths on one side of cutoffNm and
// transmits the other, with a linear transition band of transitionWidth
// nm splitting intensity proportionally between both outcomes.
type DichroicMirror struct {
	Base
	length          float64
	cutoffNm        float64
	transitionWidth float64
	reflectLonger   bool // if true, wavelengths above cutoff reflect; below transmit.
}

// NewDichroicMirror constructs a dichroic mirror.
func NewDichroicMirror(id string, pos vec.Vector, angleRad, length, cutoffNm, transitionWidth float64, reflectLonger bool) *DichroicMirror {
	return &DichroicMirror{
		Base: newBase(id, "DichroicMirror", pos, angleRad), length: clampPositive(length, 10),
		cutoffNm: cutoffNm, transitionWidth: math.Max(transitionWidth, 1e-6), reflectLonger: reflectLonger,
	}
}

func (m *DichroicMirror) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, m.pos, m.axis(), m.length/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

// reflectFraction returns the fraction of intensity that reflects at
// this wavelength, 1 deep in the reflect band, 0 deep in the transmit
// band, linearly interpolated across the transition band around cutoff.
func (m *DichroicMirror) reflectFraction(wavelengthNm float64) float64 {
	delta := wavelengthNm - m.cutoffNm
	if !m.reflectLonger {
		delta = -delta
	}
	half := m.transitionWidth / 2
	switch {
	case delta >= half:
		return 1
	case delta <= -half:
		return 0
	default:
		return (delta + half) / m.transitionWidth
	}
}

func (m *DichroicMirror) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	frac := m.reflectFraction(in.WavelengthNm)
	var successors []*ray.Segment
	if frac > 0 {
		intensity := in.Intensity * frac
		if !in.IgnoreDecay {
			intensity *= uncoatedMirrorReflectivity
		}
		r, err := in.Successor(hit.Point, reflect(in.Direction, hit.Normal), in.WavelengthNm, intensity,
			in.Phase+math.Pi, in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		successors = append(successors, r)
	}
	if frac < 1 {
		intensity := in.Intensity * (1 - frac)
		t, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
			in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		successors = append(successors, t)
	}
	return successors, nil
}

func (m *DichroicMirror) GetProperties() *Properties {
	p := NewProperties()
	p.Set("length", PropertyDescriptor{Value: m.length, Label: "Length", Type: PropNumber, Min: numPtr(1)})
	p.Set("cutoffNm", PropertyDescriptor{Value: m.cutoffNm, Label: "Cutoff (nm)", Type: PropNumber, Min: numPtr(380), Max: numPtr(780)})
	p.Set("transitionWidth", PropertyDescriptor{Value: m.transitionWidth, Label: "Transition Width (nm)", Type: PropNumber, Min: numPtr(0.01)})
	p.Set("reflectLonger", PropertyDescriptor{Value: m.reflectLonger, Label: "Reflect Longer Wavelengths", Type: PropCheckbox})
	return p
}

func (m *DichroicMirror) SetProperty(name string, value any) error {
	switch name {
	case "length":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.length = clampPositive(v, 10)
	case "cutoffNm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.cutoffNm = v
	case "transitionWidth":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.transitionWidth = math.Max(v, 1e-6)
	case "reflectLonger":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.reflectLonger = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *DichroicMirror) ToJSON() map[string]any {
	return map[string]any{
		"length": m.length, "cutoffNm": m.cutoffNm,
		"transitionWidth": m.transitionWidth, "reflectLonger": m.reflectLonger,
	}
}

func (m *DichroicMirror) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(m.pos) <= m.length/2+4 }
func (m *DichroicMirror) BoundingBox() (vec.Vector, vec.Vector) {
	half := m.axis().Scale(m.length / 2)
	a, b := m.pos.Add(half), m.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-2, math.Min(a.Y, b.Y)-2), vec.New(math.Max(a.X, b.X)+2, math.Max(a.Y, b.Y)+2)
}

// ============================================================================
// RingMirror

// RingMirror is a flat annular reflector: rays landing within
// innerRadius of its center pass straight through the central hole;
// rays landing between innerRadius and outerRadius reflect as a planar
// mirror.
type RingMirror struct {
	Base
	innerRadius float64
	outerRadius float64
	coated      bool
}

// NewRingMirror constructs a ring mirror, clamping so that
// innerRadius stays below outerRadius.
func NewRingMirror(id string, pos vec.Vector, angleRad, innerRadius, outerRadius float64) *RingMirror {
	outerRadius = clampPositive(outerRadius, 10)
	if innerRadius > outerRadius-5 {
		innerRadius = outerRadius - 5
	}
	if innerRadius < 0 {
		innerRadius = 0
	}
	return &RingMirror{Base: newBase(id, "RingMirror", pos, angleRad), innerRadius: innerRadius, outerRadius: outerRadius}
}

func (m *RingMirror) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectDisk(origin, dir, m.pos, m.axis(), m.outerRadius)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (m *RingMirror) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	radial, _ := hit.Extra["radialDistance"].(float64)
	if radial < m.innerRadius {
		// Hole: pass through unchanged.
		successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity, in.Phase,
			in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		return []*ray.Segment{successor}, nil
	}
	reflectivity := uncoatedMirrorReflectivity
	if m.coated {
		reflectivity = coatedMirrorReflectivity
	}
	successor, err := reflectOnce(in, hit, reflectivity)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *RingMirror) GetProperties() *Properties {
	p := NewProperties()
	p.Set("innerRadius", PropertyDescriptor{Value: m.innerRadius, Label: "Inner Radius", Type: PropNumber, Min: numPtr(0)})
	p.Set("outerRadius", PropertyDescriptor{Value: m.outerRadius, Label: "Outer Radius", Type: PropNumber, Min: numPtr(1)})
	p.Set("coated", PropertyDescriptor{Value: m.coated, Label: "Coated", Type: PropCheckbox})
	return p
}

func (m *RingMirror) SetProperty(name string, value any) error {
	switch name {
	case "innerRadius":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.innerRadius = v
	case "outerRadius":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.outerRadius = clampPositive(v, 10)
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.coated = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	if m.innerRadius > m.outerRadius-5 {
		m.innerRadius = m.outerRadius - 5
	}
	if m.innerRadius < 0 {
		m.innerRadius = 0
	}
	return nil
}

func (m *RingMirror) ToJSON() map[string]any {
	return map[string]any{"innerRadius": m.innerRadius, "outerRadius": m.outerRadius, "coated": m.coated}
}

func (m *RingMirror) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(m.pos) <= m.outerRadius }
func (m *RingMirror) BoundingBox() (vec.Vector, vec.Vector) {
	return m.pos.Sub(vec.New(m.outerRadius, m.outerRadius)), m.pos.Add(vec.New(m.outerRadius, m.outerRadius))
}
