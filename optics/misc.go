// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// misc.go implements the remaining miscellaneous variants: AtomicCell
// and FabryPerotCavity with explicit closed-form behavior, and
// MagneticCoil/CustomComponent as unimplemented placeholders since
// neither has a defined optical interaction.

// unimplementedBase is embedded by component variants that have no
// defined optical interaction: rather than silently passing rays
// through, Interact terminates the incoming ray with
// unimplemented_component.
type unimplementedBase struct {
	planarAperture
}

func newUnimplementedBase(id, kind string, pos vec.Vector, angleRad, aperture float64) unimplementedBase {
	return unimplementedBase{planarAperture: newPlanarAperture(id, kind, pos, angleRad, aperture)}
}

func (u *unimplementedBase) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	in.Terminate(ray.UnimplementedComponent)
	return nil, nil
}

func (u *unimplementedBase) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: u.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	return p
}

func (u *unimplementedBase) SetProperty(name string, value any) error {
	if name != "aperture" {
		return errUnknownProperty(u.kind, name)
	}
	v, ok := toFloat(value)
	if !ok {
		return errUnknownProperty(u.kind, name)
	}
	u.aperture = clampPositive(v, 1)
	return nil
}

func (u *unimplementedBase) ToJSON() map[string]any {
	return map[string]any{"aperture": u.aperture}
}

// ============================================================================
// MagneticCoil

// MagneticCoil has no defined optical interaction; it terminates rays
// explicitly rather than silently passing them through.
type MagneticCoil struct {
	unimplementedBase
	fieldStrengthTesla float64
}

// NewMagneticCoil constructs a coil placeholder of the given aperture.
func NewMagneticCoil(id string, pos vec.Vector, angleRad, aperture, fieldStrengthTesla float64) *MagneticCoil {
	return &MagneticCoil{unimplementedBase: newUnimplementedBase(id, "MagneticCoil", pos, angleRad, aperture), fieldStrengthTesla: fieldStrengthTesla}
}

func (m *MagneticCoil) GetProperties() *Properties {
	p := m.unimplementedBase.GetProperties()
	p.Set("fieldStrengthTesla", PropertyDescriptor{Value: m.fieldStrengthTesla, Label: "Field Strength (T)", Type: PropNumber})
	return p
}

func (m *MagneticCoil) SetProperty(name string, value any) error {
	if name == "fieldStrengthTesla" {
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.fieldStrengthTesla = v
		return nil
	}
	return m.unimplementedBase.SetProperty(name, value)
}

func (m *MagneticCoil) ToJSON() map[string]any {
	out := m.unimplementedBase.ToJSON()
	out["fieldStrengthTesla"] = m.fieldStrengthTesla
	return out
}

// ============================================================================
// CustomComponent

// CustomComponent is a user-defined placeholder with no built-in
// optical behavior; like MagneticCoil it is explicitly unimplemented
// rather than a silent pass-through.
type CustomComponent struct {
	unimplementedBase
	customData string
}

// NewCustomComponent constructs a placeholder of the given aperture.
func NewCustomComponent(id string, pos vec.Vector, angleRad, aperture float64) *CustomComponent {
	return &CustomComponent{unimplementedBase: newUnimplementedBase(id, "CustomComponent", pos, angleRad, aperture)}
}

func (c *CustomComponent) GetProperties() *Properties {
	p := c.unimplementedBase.GetProperties()
	p.Set("customData", PropertyDescriptor{Value: c.customData, Label: "Custom Data", Type: PropText})
	return p
}

func (c *CustomComponent) SetProperty(name string, value any) error {
	if name == "customData" {
		s, ok := toString(value)
		if !ok {
			return errUnknownProperty(c.kind, name)
		}
		c.customData = s
		return nil
	}
	return c.unimplementedBase.SetProperty(name, value)
}

func (c *CustomComponent) ToJSON() map[string]any {
	out := c.unimplementedBase.ToJSON()
	out["customData"] = c.customData
	return out
}

// ============================================================================
// AtomicCell

// AtomicCell applies a narrow Lorentzian absorption line centered at
// resonanceNm, modeling a vapor cell's selective absorption without
// reproducing its full quantum-optical response.
type AtomicCell struct {
	planarAperture
	resonanceNm, linewidthNm, peakAbsorption float64
}

// NewAtomicCell constructs a cell of the given aperture with a
// Lorentzian absorption line.
func NewAtomicCell(id string, pos vec.Vector, angleRad, aperture, resonanceNm, linewidthNm, peakAbsorption float64) *AtomicCell {
	return &AtomicCell{
		planarAperture: newPlanarAperture(id, "AtomicCell", pos, angleRad, clampPositive(aperture, 1)),
		resonanceNm:    resonanceNm, linewidthNm: clampPositive(linewidthNm, 1e-3), peakAbsorption: peakAbsorption,
	}
}

// lorentzian evaluates a normalized Lorentzian profile at detuning
// wavelengthNm-centerNm with half-width-at-half-maximum halfWidthNm.
func lorentzian(detuningNm, halfWidthNm float64) float64 {
	return (halfWidthNm * halfWidthNm) / (detuningNm*detuningNm + halfWidthNm*halfWidthNm)
}

func (a *AtomicCell) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	absorption := a.peakAbsorption * lorentzian(in.WavelengthNm-a.resonanceNm, a.linewidthNm/2)
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= 1 - absorption
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (a *AtomicCell) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: a.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("resonanceNm", PropertyDescriptor{Value: a.resonanceNm, Label: "Resonance (nm)", Type: PropNumber, Min: numPtr(1)})
	p.Set("linewidthNm", PropertyDescriptor{Value: a.linewidthNm, Label: "Linewidth (nm)", Type: PropNumber, Min: numPtr(0.001)})
	p.Set("peakAbsorption", PropertyDescriptor{Value: a.peakAbsorption, Label: "Peak Absorption", Type: PropNumber, Min: numPtr(0), Max: numPtr(1)})
	return p
}

func (a *AtomicCell) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.aperture = clampPositive(v, 1)
	case "resonanceNm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.resonanceNm = v
	case "linewidthNm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.linewidthNm = clampPositive(v, 1e-3)
	case "peakAbsorption":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.peakAbsorption = v
	default:
		return errUnknownProperty(a.kind, name)
	}
	return nil
}

func (a *AtomicCell) ToJSON() map[string]any {
	return map[string]any{
		"aperture": a.aperture, "resonanceNm": a.resonanceNm, "linewidthNm": a.linewidthNm, "peakAbsorption": a.peakAbsorption,
	}
}

// ============================================================================
// FabryPerotCavity

// FabryPerotCavity is a two-mirror etalon: transmitted intensity is
// attenuated by the Airy-function finesse factor derived from mirror
// reflectivity, the one-line closed form that distinguishes a cavity
// from a pair of independent mirrors.
type FabryPerotCavity struct {
	planarAperture
	mirrorReflectivity, cavityLength float64
}

// NewFabryPerotCavity constructs a cavity of the given aperture, mirror
// reflectivity, and optical length.
func NewFabryPerotCavity(id string, pos vec.Vector, angleRad, aperture, mirrorReflectivity, cavityLength float64) *FabryPerotCavity {
	return &FabryPerotCavity{
		planarAperture:     newPlanarAperture(id, "FabryPerotCavity", pos, angleRad, clampPositive(aperture, 1)),
		mirrorReflectivity: mirrorReflectivity, cavityLength: clampPositive(cavityLength, 1e-3),
	}
}

// airyTransmission evaluates the Airy function for a lossless etalon:
// T = 1 / (1 + F*sin^2(delta/2)), F = 4R/(1-R)^2, delta the round-trip
// phase 4*pi*cavityLength/wavelength.
func (f *FabryPerotCavity) airyTransmission(wavelengthNm float64) float64 {
	r := f.mirrorReflectivity
	if r >= 1 {
		r = 0.999999
	}
	finesseCoeff := 4 * r / ((1 - r) * (1 - r))
	delta := 4 * math.Pi * f.cavityLength / (wavelengthNm * 1e-6)
	return 1 / (1 + finesseCoeff*math.Sin(delta/2)*math.Sin(delta/2))
}

func (f *FabryPerotCavity) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= f.airyTransmission(in.WavelengthNm)
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (f *FabryPerotCavity) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: f.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("mirrorReflectivity", PropertyDescriptor{Value: f.mirrorReflectivity, Label: "Mirror Reflectivity", Type: PropNumber, Min: numPtr(0), Max: numPtr(0.999999)})
	p.Set("cavityLength", PropertyDescriptor{Value: f.cavityLength, Label: "Cavity Length", Type: PropNumber, Min: numPtr(0.001)})
	return p
}

func (f *FabryPerotCavity) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.aperture = clampPositive(v, 1)
	case "mirrorReflectivity":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.mirrorReflectivity = v
	case "cavityLength":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.cavityLength = clampPositive(v, 1e-3)
	default:
		return errUnknownProperty(f.kind, name)
	}
	return nil
}

func (f *FabryPerotCavity) ToJSON() map[string]any {
	return map[string]any{"aperture": f.aperture, "mirrorReflectivity": f.mirrorReflectivity, "cavityLength": f.cavityLength}
}
