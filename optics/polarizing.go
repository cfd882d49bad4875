// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// polarizing.go implements the seven polarization-manipulating
// components. All of them sit in the beam like a planar
// element (intersectPlaneSegment against their aperture) and, except
// for BeamSplitter/WollastonPrism, pass the ray straight through,
// changing only its polarization state and intensity.

// planarAperture is embedded by every polarizing component: a finite
// segment centered on pos, oriented along angleRad, that the beam must
// cross.
type planarAperture struct {
	Base
	aperture float64
}

func newPlanarAperture(id, kind string, pos vec.Vector, angleRad, aperture float64) planarAperture {
	return planarAperture{Base: newBase(id, kind, pos, angleRad), aperture: clampPositive(aperture, 10)}
}

func (a *planarAperture) Intersect(origin, dir vec.Vector) []Hit {
	hit, ok := intersectPlaneSegment(origin, dir, a.pos, a.axis(), a.aperture/2)
	if !ok {
		return nil
	}
	return []Hit{hit}
}

func (a *planarAperture) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(a.pos) <= a.aperture/2+4 }
func (a *planarAperture) BoundingBox() (vec.Vector, vec.Vector) {
	half := a.axis().Scale(a.aperture / 2)
	lo, hi := a.pos.Add(half), a.pos.Sub(half)
	return vec.New(math.Min(lo.X, hi.X)-4, math.Min(lo.Y, hi.Y)-4), vec.New(math.Max(lo.X, hi.X)+4, math.Max(lo.Y, hi.Y)+4)
}

// ============================================================================
// Polarizer

// Polarizer transmits the Malus'-law-weighted component of a linearly
// polarized beam along its transmission axis, and halves an
// unpolarized (or circular) beam's intensity while making it linear
// along that axis.
type Polarizer struct {
	planarAperture
	axisAngleRad float64
}

// NewPolarizer constructs a linear polarizer whose transmission axis is
// axisAngleRad (in the lab frame, independent of its physical mounting angle).
func NewPolarizer(id string, pos vec.Vector, angleRad, aperture, axisAngleRad float64) *Polarizer {
	return &Polarizer{planarAperture: newPlanarAperture(id, "Polarizer", pos, angleRad, aperture), axisAngleRad: axisAngleRad}
}

func (p *Polarizer) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	var intensity float64
	switch in.PolarizationType {
	case ray.Linear:
		theta := in.PolarizationAngleRad - p.axisAngleRad
		intensity = in.Intensity * math.Cos(theta) * math.Cos(theta)
	default:
		intensity = in.Intensity * 0.5
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, ray.Linear, p.axisAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (p *Polarizer) GetProperties() *Properties {
	props := NewProperties()
	props.Set("aperture", PropertyDescriptor{Value: p.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	props.Set("axisAngleRad", PropertyDescriptor{Value: p.axisAngleRad, Label: "Transmission Axis (rad)", Type: PropNumber})
	return props
}

func (p *Polarizer) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(p.kind, name)
		}
		p.aperture = clampPositive(v, 10)
	case "axisAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(p.kind, name)
		}
		p.axisAngleRad = v
	default:
		return errUnknownProperty(p.kind, name)
	}
	return nil
}

func (p *Polarizer) ToJSON() map[string]any {
	return map[string]any{"aperture": p.aperture, "axisAngleRad": p.axisAngleRad}
}

// ============================================================================
// HalfWavePlate

// HalfWavePlate rotates a linear polarization state by 2*angle about
// its fast axis and passes other polarization types through unchanged;
// intensity is unaffected.
type HalfWavePlate struct {
	planarAperture
	fastAxisAngleRad float64
}

// NewHalfWavePlate constructs a half-wave plate.
func NewHalfWavePlate(id string, pos vec.Vector, angleRad, aperture, fastAxisAngleRad float64) *HalfWavePlate {
	return &HalfWavePlate{planarAperture: newPlanarAperture(id, "HalfWavePlate", pos, angleRad, aperture), fastAxisAngleRad: fastAxisAngleRad}
}

func (w *HalfWavePlate) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	polAngle := in.PolarizationAngleRad
	polType := in.PolarizationType
	if polType == ray.Linear {
		polAngle = 2*w.fastAxisAngleRad - in.PolarizationAngleRad
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity, in.Phase,
		in.MediumRefractiveIndex, polType, polAngle, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (w *HalfWavePlate) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: w.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("fastAxisAngleRad", PropertyDescriptor{Value: w.fastAxisAngleRad, Label: "Fast Axis (rad)", Type: PropNumber})
	return p
}

func (w *HalfWavePlate) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.aperture = clampPositive(v, 10)
	case "fastAxisAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.fastAxisAngleRad = v
	default:
		return errUnknownProperty(w.kind, name)
	}
	return nil
}

func (w *HalfWavePlate) ToJSON() map[string]any {
	return map[string]any{"aperture": w.aperture, "fastAxisAngleRad": w.fastAxisAngleRad}
}

// ============================================================================
// QuarterWavePlate

// QuarterWavePlate introduces a pi/2 relative phase between the fast-
// and slow-axis projections of the incoming polarization. Since
// PolarizationType has no elliptical state, an input aligned near 45 deg
// from the fast axis is reported as Circular (the common QWP use case);
// input already aligned with an axis passes through unchanged; other
// angles are approximated as Circular too, a schematic simplification.
type QuarterWavePlate struct {
	planarAperture
	fastAxisAngleRad float64
}

// NewQuarterWavePlate constructs a quarter-wave plate.
func NewQuarterWavePlate(id string, pos vec.Vector, angleRad, aperture, fastAxisAngleRad float64) *QuarterWavePlate {
	return &QuarterWavePlate{planarAperture: newPlanarAperture(id, "QuarterWavePlate", pos, angleRad, aperture), fastAxisAngleRad: fastAxisAngleRad}
}

const qwpAxisAlignEpsilon = 1e-3

func (w *QuarterWavePlate) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	polType := in.PolarizationType
	polAngle := in.PolarizationAngleRad
	if polType == ray.Linear {
		delta := math.Abs(math.Mod(in.PolarizationAngleRad-w.fastAxisAngleRad, math.Pi))
		alignedWithAxis := delta < qwpAxisAlignEpsilon || math.Abs(delta-math.Pi/2) < qwpAxisAlignEpsilon || math.Pi-delta < qwpAxisAlignEpsilon
		if !alignedWithAxis {
			polType = ray.Circular
		}
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity, in.Phase+math.Pi/2,
		in.MediumRefractiveIndex, polType, polAngle, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (w *QuarterWavePlate) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: w.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("fastAxisAngleRad", PropertyDescriptor{Value: w.fastAxisAngleRad, Label: "Fast Axis (rad)", Type: PropNumber})
	return p
}

func (w *QuarterWavePlate) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.aperture = clampPositive(v, 10)
	case "fastAxisAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.fastAxisAngleRad = v
	default:
		return errUnknownProperty(w.kind, name)
	}
	return nil
}

func (w *QuarterWavePlate) ToJSON() map[string]any {
	return map[string]any{"aperture": w.aperture, "fastAxisAngleRad": w.fastAxisAngleRad}
}

// ============================================================================
// BeamSplitter

// BeamSplitter produces a reflected and a transmitted successor. A
// non-polarizing (BS) splitter divides intensity by splitRatio
// regardless of polarization; a polarizing splitter (PBS) reflects the
// s-polarized component and transmits the p-polarized component, using
// pbsUnpolarizedReflectivity for unpolarized input.
type BeamSplitter struct {
	planarAperture
	splitRatio                 float64 // fraction reflected, for a non-polarizing BS.
	polarizing                 bool
	pbsUnpolarizedReflectivity float64
}

// NewBeamSplitter constructs a non-polarizing beam splitter.
func NewBeamSplitter(id string, pos vec.Vector, angleRad, aperture, splitRatio float64) *BeamSplitter {
	return &BeamSplitter{planarAperture: newPlanarAperture(id, "BeamSplitter", pos, angleRad, aperture), splitRatio: splitRatio}
}

// NewPolarizingBeamSplitter constructs a PBS oriented so its
// transmission (p) axis is the component's angleRad.
func NewPolarizingBeamSplitter(id string, pos vec.Vector, angleRad, aperture, pbsUnpolarizedReflectivity float64) *BeamSplitter {
	return &BeamSplitter{
		planarAperture: newPlanarAperture(id, "BeamSplitter", pos, angleRad, aperture),
		polarizing:     true, pbsUnpolarizedReflectivity: pbsUnpolarizedReflectivity,
	}
}

func (b *BeamSplitter) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	reflectFrac := b.splitRatio
	reflectedPolType, transmitPolType := in.PolarizationType, in.PolarizationType
	reflectedPolAngle, transmitPolAngle := in.PolarizationAngleRad, in.PolarizationAngleRad

	if b.polarizing {
		switch in.PolarizationType {
		case ray.Linear:
			theta := in.PolarizationAngleRad - b.angleRad
			reflectFrac = math.Sin(theta) * math.Sin(theta)
		default:
			reflectFrac = b.pbsUnpolarizedReflectivity
		}
		reflectedPolType, reflectedPolAngle = ray.Linear, b.angleRad+math.Pi/2
		transmitPolType, transmitPolAngle = ray.Linear, b.angleRad
	}

	var successors []*ray.Segment
	if reflectFrac > 0 {
		r, err := in.Successor(hit.Point, reflect(in.Direction, hit.Normal), in.WavelengthNm, in.Intensity*reflectFrac,
			in.Phase+math.Pi, in.MediumRefractiveIndex, reflectedPolType, reflectedPolAngle, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		successors = append(successors, r)
	}
	if reflectFrac < 1 {
		t, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity*(1-reflectFrac),
			in.Phase, in.MediumRefractiveIndex, transmitPolType, transmitPolAngle, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		successors = append(successors, t)
	}
	return successors, nil
}

func (b *BeamSplitter) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: b.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("polarizing", PropertyDescriptor{Value: b.polarizing, Label: "Polarizing (PBS)", Type: PropCheckbox})
	if b.polarizing {
		p.Set("pbsUnpolarizedReflectivity", PropertyDescriptor{Value: b.pbsUnpolarizedReflectivity, Label: "Unpolarized Reflectivity", Type: PropRange, Min: numPtr(0), Max: numPtr(1), Step: numPtr(0.01)})
	} else {
		p.Set("splitRatio", PropertyDescriptor{Value: b.splitRatio, Label: "Split Ratio (reflected)", Type: PropRange, Min: numPtr(0), Max: numPtr(1), Step: numPtr(0.01)})
	}
	return p
}

func (b *BeamSplitter) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(b.kind, name)
		}
		b.aperture = clampPositive(v, 10)
	case "polarizing":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(b.kind, name)
		}
		b.polarizing = v
	case "pbsUnpolarizedReflectivity":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(b.kind, name)
		}
		b.pbsUnpolarizedReflectivity = v
	case "splitRatio":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(b.kind, name)
		}
		b.splitRatio = v
	default:
		return errUnknownProperty(b.kind, name)
	}
	return nil
}

func (b *BeamSplitter) ToJSON() map[string]any {
	return map[string]any{
		"aperture": b.aperture, "splitRatio": b.splitRatio,
		"polarizing": b.polarizing, "pbsUnpolarizedReflectivity": b.pbsUnpolarizedReflectivity,
	}
}

// ============================================================================
// WollastonPrism

// WollastonPrism splits a beam into ordinary and extraordinary rays
// diverging by splitAngleRad, distributing intensity between them by
// Malus' law against ordinaryAxisAngleRad.
type WollastonPrism struct {
	planarAperture
	splitAngleRad        float64
	ordinaryAxisAngleRad float64
}

// NewWollastonPrism constructs a Wollaston prism.
func NewWollastonPrism(id string, pos vec.Vector, angleRad, aperture, splitAngleRad, ordinaryAxisAngleRad float64) *WollastonPrism {
	return &WollastonPrism{
		planarAperture: newPlanarAperture(id, "WollastonPrism", pos, angleRad, aperture),
		splitAngleRad:  splitAngleRad, ordinaryAxisAngleRad: ordinaryAxisAngleRad,
	}
}

func (w *WollastonPrism) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	ordinaryFrac := 0.5
	if in.PolarizationType == ray.Linear {
		theta := in.PolarizationAngleRad - w.ordinaryAxisAngleRad
		ordinaryFrac = math.Cos(theta) * math.Cos(theta)
	}
	ordinary, err := in.Successor(hit.Point, in.Direction.Rotate(w.splitAngleRad/2), in.WavelengthNm,
		in.Intensity*ordinaryFrac, in.Phase, in.MediumRefractiveIndex, ray.Linear, w.ordinaryAxisAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	extraordinary, err := in.Successor(hit.Point, in.Direction.Rotate(-w.splitAngleRad/2), in.WavelengthNm,
		in.Intensity*(1-ordinaryFrac), in.Phase, in.MediumRefractiveIndex, ray.Linear, w.ordinaryAxisAngleRad+math.Pi/2, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{ordinary, extraordinary}, nil
}

func (w *WollastonPrism) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: w.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("splitAngleRad", PropertyDescriptor{Value: w.splitAngleRad, Label: "Split Angle (rad)", Type: PropNumber})
	p.Set("ordinaryAxisAngleRad", PropertyDescriptor{Value: w.ordinaryAxisAngleRad, Label: "Ordinary Axis (rad)", Type: PropNumber})
	return p
}

func (w *WollastonPrism) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.aperture = clampPositive(v, 10)
	case "splitAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.splitAngleRad = v
	case "ordinaryAxisAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(w.kind, name)
		}
		w.ordinaryAxisAngleRad = v
	default:
		return errUnknownProperty(w.kind, name)
	}
	return nil
}

func (w *WollastonPrism) ToJSON() map[string]any {
	return map[string]any{
		"aperture": w.aperture, "splitAngleRad": w.splitAngleRad, "ordinaryAxisAngleRad": w.ordinaryAxisAngleRad,
	}
}

// ============================================================================
// FaradayRotator

// FaradayRotator rotates linear polarization by a fixed angle whose
// sign depends on propagation direction along the component's optical
// axis (non-reciprocal): unlike a wave plate, reversing the beam
// does not undo the rotation.
type FaradayRotator struct {
	planarAperture
	rotationAngleRad float64
	insertionLoss    float64 // fraction of intensity absorbed, e.g. 0.02.
}

// NewFaradayRotator constructs a Faraday rotator.
func NewFaradayRotator(id string, pos vec.Vector, angleRad, aperture, rotationAngleRad, insertionLoss float64) *FaradayRotator {
	return &FaradayRotator{
		planarAperture:   newPlanarAperture(id, "FaradayRotator", pos, angleRad, aperture),
		rotationAngleRad: rotationAngleRad, insertionLoss: insertionLoss,
	}
}

func (f *FaradayRotator) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	sign := 1.0
	if in.Direction.Dot(f.normal()) < 0 {
		sign = -1.0
	}
	polAngle := in.PolarizationAngleRad
	polType := in.PolarizationType
	if polType == ray.Linear {
		polAngle += sign * f.rotationAngleRad
	}
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= 1 - f.insertionLoss
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, polType, polAngle, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (f *FaradayRotator) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: f.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("rotationAngleRad", PropertyDescriptor{Value: f.rotationAngleRad, Label: "Rotation Angle (rad)", Type: PropNumber})
	p.Set("insertionLoss", PropertyDescriptor{Value: f.insertionLoss, Label: "Insertion Loss", Type: PropRange, Min: numPtr(0), Max: numPtr(1), Step: numPtr(0.001)})
	return p
}

func (f *FaradayRotator) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.aperture = clampPositive(v, 10)
	case "rotationAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.rotationAngleRad = v
	case "insertionLoss":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.insertionLoss = v
	default:
		return errUnknownProperty(f.kind, name)
	}
	return nil
}

func (f *FaradayRotator) ToJSON() map[string]any {
	return map[string]any{"aperture": f.aperture, "rotationAngleRad": f.rotationAngleRad, "insertionLoss": f.insertionLoss}
}

// ============================================================================
// FaradayIsolator

// FaradayIsolator transmits light traveling along its designated
// forward direction (the component's normal) with mild loss, and blocks
// light traveling backward entirely, modeling the non-reciprocal
// behavior of a polarizer + 45-degree rotator + analyzer stack without
// reproducing its internal Jones-calculus stages.
type FaradayIsolator struct {
	planarAperture
	forwardTransmission float64
}

// NewFaradayIsolator constructs a Faraday isolator.
func NewFaradayIsolator(id string, pos vec.Vector, angleRad, aperture, forwardTransmission float64) *FaradayIsolator {
	return &FaradayIsolator{planarAperture: newPlanarAperture(id, "FaradayIsolator", pos, angleRad, aperture), forwardTransmission: forwardTransmission}
}

func (f *FaradayIsolator) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	if in.Direction.Dot(f.normal()) < 0 {
		in.Terminate(ray.Blocked)
		return nil, nil
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity*f.forwardTransmission,
		in.Phase, in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (f *FaradayIsolator) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: f.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("forwardTransmission", PropertyDescriptor{Value: f.forwardTransmission, Label: "Forward Transmission", Type: PropRange, Min: numPtr(0), Max: numPtr(1), Step: numPtr(0.01)})
	return p
}

func (f *FaradayIsolator) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.aperture = clampPositive(v, 10)
	case "forwardTransmission":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.forwardTransmission = v
	default:
		return errUnknownProperty(f.kind, name)
	}
	return nil
}

func (f *FaradayIsolator) ToJSON() map[string]any {
	return map[string]any{"aperture": f.aperture, "forwardTransmission": f.forwardTransmission}
}
