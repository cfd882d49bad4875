// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// lenses.go implements the four refractive-lens variants, built
// on the ideal thin-lens law: height is preserved in the lens
// plane, slope (tangent of the angle to the axis) changes by -y/f,
// intensity *= (coated ? 0.99 : 0.96).

const (
	uncoatedLensTransmission = 0.96
	coatedLensTransmission   = 0.99
)

// ============================================================================
// ThinLens

// ThinLens is an ideal thin lens with a signed focal length (negative
// for a diverging lens), with optional chromatic and spherical
// aberration terms.
type ThinLens struct {
	Base
	aperture             float64
	focalLength          float64
	coated               bool
	chromaticCoefficient float64 // 0 disables; else f_eff shifts with wavelength.
	sphericalCoefficient float64 // 0 disables; else angle += coeff*y^2.
}

// NewThinLens constructs a thin lens of the given aperture (length) and
// signed focal length.
func NewThinLens(id string, pos vec.Vector, angleRad, aperture, focalLength float64) *ThinLens {
	return &ThinLens{Base: newBase(id, "ThinLens", pos, angleRad), aperture: clampPositive(aperture, 10), focalLength: focalLength}
}

func (l *ThinLens) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, l.pos, l.axis(), l.aperture/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

// effectiveFocalLength applies the chromatic aberration shift: a
// longer-than-reference wavelength bends slightly less (f grows),
// matching normal dispersion's weaker refraction at red wavelengths.
func (l *ThinLens) effectiveFocalLength(wavelengthNm float64) float64 {
	if l.chromaticCoefficient == 0 {
		return l.focalLength
	}
	return l.focalLength * (1 + l.chromaticCoefficient*(wavelengthNm-550)/550)
}

func (l *ThinLens) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	y, _ := hit.Extra["tangentOffset"].(float64)
	forward := lensForward(l.normal(), in.Direction)
	fEff := l.effectiveFocalLength(in.WavelengthNm)
	newDir := thinLensDirection(in.Direction, forward, y, fEff, l.sphericalCoefficient)

	intensity := in.Intensity
	if !in.IgnoreDecay {
		if l.coated {
			intensity *= coatedLensTransmission
		} else {
			intensity *= uncoatedLensTransmission
		}
	}
	successor, err := in.Successor(hit.Point, newDir, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (l *ThinLens) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: l.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("focalLength", PropertyDescriptor{Value: l.focalLength, Label: "Focal Length", Type: PropNumber})
	p.Set("coated", PropertyDescriptor{Value: l.coated, Label: "Coated", Type: PropCheckbox})
	p.Set("chromaticCoefficient", PropertyDescriptor{Value: l.chromaticCoefficient, Label: "Chromatic Aberration", Type: PropNumber})
	p.Set("sphericalCoefficient", PropertyDescriptor{Value: l.sphericalCoefficient, Label: "Spherical Aberration", Type: PropNumber})
	return p
}

func (l *ThinLens) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.aperture = clampPositive(v, 10)
	case "focalLength":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.focalLength = v
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.coated = v
	case "chromaticCoefficient":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.chromaticCoefficient = v
	case "sphericalCoefficient":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.sphericalCoefficient = v
	default:
		return errUnknownProperty(l.kind, name)
	}
	return nil
}

func (l *ThinLens) ToJSON() map[string]any {
	return map[string]any{
		"aperture": l.aperture, "focalLength": l.focalLength, "coated": l.coated,
		"chromaticCoefficient": l.chromaticCoefficient, "sphericalCoefficient": l.sphericalCoefficient,
	}
}

func (l *ThinLens) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(l.pos) <= l.aperture/2+4 }
func (l *ThinLens) BoundingBox() (vec.Vector, vec.Vector) {
	half := l.axis().Scale(l.aperture / 2)
	a, b := l.pos.Add(half), l.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-4, math.Min(a.Y, b.Y)-4), vec.New(math.Max(a.X, b.X)+4, math.Max(a.Y, b.Y)+4)
}

// ============================================================================
// CylindricalLens

// CylindricalLens focuses only along its single power axis, like
// ThinLens but without a spherical-aberration term (a cylindrical
// profile has none along its focusing axis).
type CylindricalLens struct {
	Base
	aperture    float64
	focalLength float64
	coated      bool
}

// NewCylindricalLens constructs a cylindrical lens.
func NewCylindricalLens(id string, pos vec.Vector, angleRad, aperture, focalLength float64) *CylindricalLens {
	return &CylindricalLens{Base: newBase(id, "CylindricalLens", pos, angleRad), aperture: clampPositive(aperture, 10), focalLength: focalLength}
}

func (l *CylindricalLens) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, l.pos, l.axis(), l.aperture/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (l *CylindricalLens) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	y, _ := hit.Extra["tangentOffset"].(float64)
	forward := lensForward(l.normal(), in.Direction)
	newDir := thinLensDirection(in.Direction, forward, y, l.focalLength, 0)

	intensity := in.Intensity
	if !in.IgnoreDecay {
		if l.coated {
			intensity *= coatedLensTransmission
		} else {
			intensity *= uncoatedLensTransmission
		}
	}
	successor, err := in.Successor(hit.Point, newDir, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (l *CylindricalLens) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: l.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("focalLength", PropertyDescriptor{Value: l.focalLength, Label: "Focal Length", Type: PropNumber})
	p.Set("coated", PropertyDescriptor{Value: l.coated, Label: "Coated", Type: PropCheckbox})
	return p
}

func (l *CylindricalLens) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.aperture = clampPositive(v, 10)
	case "focalLength":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.focalLength = v
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.coated = v
	default:
		return errUnknownProperty(l.kind, name)
	}
	return nil
}

func (l *CylindricalLens) ToJSON() map[string]any {
	return map[string]any{"aperture": l.aperture, "focalLength": l.focalLength, "coated": l.coated}
}

func (l *CylindricalLens) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(l.pos) <= l.aperture/2+4 }
func (l *CylindricalLens) BoundingBox() (vec.Vector, vec.Vector) {
	half := l.axis().Scale(l.aperture / 2)
	a, b := l.pos.Add(half), l.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-4, math.Min(a.Y, b.Y)-4), vec.New(math.Max(a.X, b.X)+4, math.Max(a.Y, b.Y)+4)
}

// ============================================================================
// AsphericLens

// AsphericLens is a ThinLens with an always-on higher-order correction
// term, tuned by asphericCoefficient, which a real aspheric surface uses
// to suppress spherical aberration rather than introduce it; a negative
// coefficient corrects, a positive one exaggerates.
type AsphericLens struct {
	Base
	aperture            float64
	focalLength         float64
	coated              bool
	asphericCoefficient float64
}

// NewAsphericLens constructs an aspheric lens.
func NewAsphericLens(id string, pos vec.Vector, angleRad, aperture, focalLength, asphericCoefficient float64) *AsphericLens {
	return &AsphericLens{
		Base: newBase(id, "AsphericLens", pos, angleRad), aperture: clampPositive(aperture, 10),
		focalLength: focalLength, asphericCoefficient: asphericCoefficient,
	}
}

func (l *AsphericLens) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, l.pos, l.axis(), l.aperture/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (l *AsphericLens) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	y, _ := hit.Extra["tangentOffset"].(float64)
	forward := lensForward(l.normal(), in.Direction)
	newDir := thinLensDirection(in.Direction, forward, y, l.focalLength, l.asphericCoefficient)

	intensity := in.Intensity
	if !in.IgnoreDecay {
		if l.coated {
			intensity *= coatedLensTransmission
		} else {
			intensity *= uncoatedLensTransmission
		}
	}
	successor, err := in.Successor(hit.Point, newDir, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (l *AsphericLens) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: l.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("focalLength", PropertyDescriptor{Value: l.focalLength, Label: "Focal Length", Type: PropNumber})
	p.Set("coated", PropertyDescriptor{Value: l.coated, Label: "Coated", Type: PropCheckbox})
	p.Set("asphericCoefficient", PropertyDescriptor{Value: l.asphericCoefficient, Label: "Aspheric Coefficient", Type: PropNumber})
	return p
}

func (l *AsphericLens) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.aperture = clampPositive(v, 10)
	case "focalLength":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.focalLength = v
	case "coated":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.coated = v
	case "asphericCoefficient":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.asphericCoefficient = v
	default:
		return errUnknownProperty(l.kind, name)
	}
	return nil
}

func (l *AsphericLens) ToJSON() map[string]any {
	return map[string]any{
		"aperture": l.aperture, "focalLength": l.focalLength, "coated": l.coated,
		"asphericCoefficient": l.asphericCoefficient,
	}
}

func (l *AsphericLens) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(l.pos) <= l.aperture/2+4 }
func (l *AsphericLens) BoundingBox() (vec.Vector, vec.Vector) {
	half := l.axis().Scale(l.aperture / 2)
	a, b := l.pos.Add(half), l.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-4, math.Min(a.Y, b.Y)-4), vec.New(math.Max(a.X, b.X)+4, math.Max(a.Y, b.Y)+4)
}

// ============================================================================
// GRINLens

// GRINLens approximates a gradient-index lens with a single bend at its
// plane: the bend angle is proportional to its length and to the ray's
// radial offset from the optical axis (a linear, paraxial approximation
// of a parabolic index profile).
type GRINLens struct {
	Base
	aperture     float64
	length       float64
	gradientCoef float64 // bend strength per unit length per unit offset.
}

// NewGRINLens constructs a GRIN lens of the given physical length along
// its optical axis and radial gradient coefficient.
func NewGRINLens(id string, pos vec.Vector, angleRad, aperture, length, gradientCoef float64) *GRINLens {
	return &GRINLens{
		Base: newBase(id, "GRINLens", pos, angleRad), aperture: clampPositive(aperture, 10),
		length: clampPositive(length, 1), gradientCoef: gradientCoef,
	}
}

func (l *GRINLens) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, l.pos, l.axis(), l.aperture/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (l *GRINLens) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	y, _ := hit.Extra["tangentOffset"].(float64)
	forward := lensForward(l.normal(), in.Direction)
	// The angle changes by gradientCoef*length*y, like an angle-law lens
	// of fixed focal length 1/(gradientCoef*length).
	tangent := forward.Perp()
	u, v := in.Direction.Dot(tangent), in.Direction.Dot(forward)
	oldAngle := math.Atan2(u, v)
	newAngle := oldAngle - l.gradientCoef*l.length*y
	newDir := forward.Rotate(newAngle)

	successor, err := in.Successor(hit.Point, newDir, in.WavelengthNm, in.Intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (l *GRINLens) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: l.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("length", PropertyDescriptor{Value: l.length, Label: "Length", Type: PropNumber, Min: numPtr(0.1)})
	p.Set("gradientCoef", PropertyDescriptor{Value: l.gradientCoef, Label: "Gradient Coefficient", Type: PropNumber})
	return p
}

func (l *GRINLens) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.aperture = clampPositive(v, 10)
	case "length":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.length = clampPositive(v, 0.1)
	case "gradientCoef":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(l.kind, name)
		}
		l.gradientCoef = v
	default:
		return errUnknownProperty(l.kind, name)
	}
	return nil
}

func (l *GRINLens) ToJSON() map[string]any {
	return map[string]any{"aperture": l.aperture, "length": l.length, "gradientCoef": l.gradientCoef}
}

func (l *GRINLens) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(l.pos) <= l.aperture/2+4 }
func (l *GRINLens) BoundingBox() (vec.Vector, vec.Vector) {
	half := l.axis().Scale(l.aperture / 2)
	a, b := l.pos.Add(half), l.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-4, math.Min(a.Y, b.Y)-4), vec.New(math.Max(a.X, b.X)+4, math.Max(a.Y, b.Y)+4)
}
