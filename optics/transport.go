// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// transport.go implements the five transport variants: the
// two-stage optical fiber and four time-varying modulators driven
// by TraceConfig.SimClock.

// ============================================================================
// OpticalFiber

// capturedRay is one ray captured at a fiber's input facet, held until
// the next frame's GenerateOutputRays.
type capturedRay struct {
	wavelengthNm  float64
	intensity     float64
	entryAngleRad float64
	arrivalTime   float64
}

// OpticalFiber has two endpoints: an input facet at Base.pos/angleRad
// and a separate output facet. It is not an Interactor; it implements
// FiberInteractor's special two-hook coupling contract instead.
type OpticalFiber struct {
	Base
	facetLength         float64
	numericalAperture   float64
	intrinsicEfficiency float64
	lengthKm            float64
	lossPerKmDb         float64
	outputPos           vec.Vector
	outputAngleRad      float64

	captured []capturedRay
}

// NewOpticalFiber constructs a fiber whose input facet is at pos/angleRad
// and whose output emits from outputPos along outputAngleRad.
func NewOpticalFiber(id string, pos vec.Vector, angleRad float64, outputPos vec.Vector, outputAngleRad,
	facetLength, numericalAperture, intrinsicEfficiency, lengthKm, lossPerKmDb float64) *OpticalFiber {
	return &OpticalFiber{
		Base: newBase(id, "OpticalFiber", pos, angleRad), facetLength: clampPositive(facetLength, 1),
		numericalAperture: numericalAperture, intrinsicEfficiency: intrinsicEfficiency,
		lengthKm: lengthKm, lossPerKmDb: lossPerKmDb, outputPos: outputPos, outputAngleRad: outputAngleRad,
	}
}

// CheckInputCoupling casts against the input facet plane.
func (f *OpticalFiber) CheckInputCoupling(origin, dir vec.Vector) (Hit, bool) {
	return intersectPlaneSegment(origin, dir, f.pos, f.axis(), f.facetLength/2)
}

// couplingEfficiency combines acceptance-angle (NA), intrinsic, and
// per-km-loss factors into a single multiplier.
func (f *OpticalFiber) couplingEfficiency(entryAngleRad float64) float64 {
	sinTheta := math.Abs(math.Sin(entryAngleRad))
	na := f.numericalAperture
	if na <= 0 {
		na = 1e-6
	}
	acceptance := 1 - (sinTheta/na)*(sinTheta/na)
	if acceptance < 0 {
		acceptance = 0
	}
	lossFactor := math.Pow(10, -f.lossPerKmDb*f.lengthKm/10)
	return acceptance * f.intrinsicEfficiency * lossFactor
}

// pathLength sums the parent ray's recorded history plus the final leg
// to the hit point, used as the arrival-time proxy.
func pathLength(history []vec.Vector, last vec.Vector) float64 {
	total := 0.0
	for i := 1; i < len(history); i++ {
		total += history[i-1].DistanceTo(history[i])
	}
	if len(history) > 0 {
		total += history[len(history)-1].DistanceTo(last)
	}
	return total
}

// HandleInputInteraction records a captured-ray descriptor and
// terminates the parent with captured_by_fiber.
func (f *OpticalFiber) HandleInputInteraction(in *ray.Segment, hit Hit) error {
	entryAngleRad := math.Acos(clampCos(-hit.Normal.Dot(in.Direction)))
	efficiency := f.couplingEfficiency(entryAngleRad)
	f.captured = append(f.captured, capturedRay{
		wavelengthNm:  in.WavelengthNm,
		intensity:     in.Intensity * efficiency,
		entryAngleRad: entryAngleRad,
		arrivalTime:   pathLength(in.History, hit.Point),
	})
	in.Terminate(ray.CapturedByFiber)
	return nil
}

func clampCos(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// GenerateOutputRays emits one successor per captured ray at the output
// facet, bouncesSoFar=0 so it looks like a fresh source, then clears the
// capture list.
func (f *OpticalFiber) GenerateOutputRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if len(f.captured) == 0 {
		return nil, nil
	}
	dir := vec.FromAngle(f.outputAngleRad)
	out := make([]*ray.Segment, 0, len(f.captured))
	for _, c := range f.captured {
		seg, err := ray.New(f.outputPos, dir, c.wavelengthNm, c.intensity, 0, 0, 1.0, f.id,
			ray.Unpolarized, 0, false, nil, cfg.Limits())
		if err != nil {
			return nil, err
		}
		seg.AnimateArrow = true
		out = append(out, seg)
	}
	f.captured = nil
	return out, nil
}

// ResetAccumulators clears captured input rays (Scene.ResetAccumulators).
func (f *OpticalFiber) ResetAccumulators() { f.captured = nil }

func (f *OpticalFiber) GetProperties() *Properties {
	p := NewProperties()
	p.Set("facetLength", PropertyDescriptor{Value: f.facetLength, Label: "Facet Length", Type: PropNumber, Min: numPtr(1)})
	p.Set("numericalAperture", PropertyDescriptor{Value: f.numericalAperture, Label: "NA", Type: PropNumber, Min: numPtr(0.01), Max: numPtr(1)})
	p.Set("intrinsicEfficiency", PropertyDescriptor{Value: f.intrinsicEfficiency, Label: "Intrinsic Efficiency", Type: PropNumber, Min: numPtr(0), Max: numPtr(1)})
	p.Set("lengthKm", PropertyDescriptor{Value: f.lengthKm, Label: "Length (km)", Type: PropNumber, Min: numPtr(0)})
	p.Set("lossPerKmDb", PropertyDescriptor{Value: f.lossPerKmDb, Label: "Loss (dB/km)", Type: PropNumber, Min: numPtr(0)})
	p.Set("outputPosX", PropertyDescriptor{Value: f.outputPos.X, Label: "Output X", Type: PropNumber})
	p.Set("outputPosY", PropertyDescriptor{Value: f.outputPos.Y, Label: "Output Y", Type: PropNumber})
	p.Set("outputAngleRad", PropertyDescriptor{Value: f.outputAngleRad, Label: "Output Angle (rad)", Type: PropNumber})
	return p
}

func (f *OpticalFiber) SetProperty(name string, value any) error {
	switch name {
	case "facetLength":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.facetLength = clampPositive(v, 1)
	case "numericalAperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.numericalAperture = v
	case "intrinsicEfficiency":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.intrinsicEfficiency = v
	case "lengthKm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.lengthKm = v
	case "lossPerKmDb":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.lossPerKmDb = v
	case "outputPosX":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.outputPos.X = v
	case "outputPosY":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.outputPos.Y = v
	case "outputAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(f.kind, name)
		}
		f.outputAngleRad = v
	default:
		return errUnknownProperty(f.kind, name)
	}
	return nil
}

func (f *OpticalFiber) ToJSON() map[string]any {
	return map[string]any{
		"facetLength": f.facetLength, "numericalAperture": f.numericalAperture,
		"intrinsicEfficiency": f.intrinsicEfficiency, "lengthKm": f.lengthKm, "lossPerKmDb": f.lossPerKmDb,
		"outputPosX": f.outputPos.X, "outputPosY": f.outputPos.Y, "outputAngleRad": f.outputAngleRad,
	}
}

func (f *OpticalFiber) ContainsPoint(p vec.Vector) bool {
	return p.DistanceTo(f.pos) <= f.facetLength/2+4 || p.DistanceTo(f.outputPos) <= f.facetLength/2+4
}

func (f *OpticalFiber) BoundingBox() (vec.Vector, vec.Vector) {
	half := f.axis().Scale(f.facetLength / 2)
	a, b := f.pos.Add(half), f.pos.Sub(half)
	c, d := f.outputPos.Add(half), f.outputPos.Sub(half)
	min := vec.New(math.Min(math.Min(a.X, b.X), math.Min(c.X, d.X))-4, math.Min(math.Min(a.Y, b.Y), math.Min(c.Y, d.Y))-4)
	max := vec.New(math.Max(math.Max(a.X, b.X), math.Max(c.X, d.X))+4, math.Max(math.Max(a.Y, b.Y), math.Max(c.Y, d.Y))+4)
	return min, max
}

// ============================================================================
// Time-varying modulators

// modulate evaluates a sinusoidal drive signal at the given simulation
// time: amplitude*sin(2*pi*frequencyHz*t + phase).
func modulate(t, amplitude, frequencyHz, phase float64) float64 {
	return amplitude * math.Sin(2*math.Pi*frequencyHz*t+phase)
}

// AcoustoOpticModulator deflects a transmitted ray's angle sinusoidally
// with simulation time, modeling the diffraction-angle dependence on
// drive-signal amplitude found in real AOMs without reproducing their
// multi-order diffraction spectrum.
type AcoustoOpticModulator struct {
	planarAperture
	deflectionAmplitudeRad, driveFrequencyHz, drivePhaseRad float64
	insertionLoss                                           float64
}

// NewAcoustoOpticModulator constructs an AOM of the given aperture.
func NewAcoustoOpticModulator(id string, pos vec.Vector, angleRad, aperture, deflectionAmplitudeRad, driveFrequencyHz float64) *AcoustoOpticModulator {
	return &AcoustoOpticModulator{
		planarAperture:         newPlanarAperture(id, "AcoustoOpticModulator", pos, angleRad, clampPositive(aperture, 1)),
		deflectionAmplitudeRad: deflectionAmplitudeRad, driveFrequencyHz: driveFrequencyHz, insertionLoss: 0.9,
	}
}

func (m *AcoustoOpticModulator) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	deflection := modulate(cfg.SimClock, m.deflectionAmplitudeRad, m.driveFrequencyHz, m.drivePhaseRad)
	dir := in.Direction.Rotate(deflection)
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= m.insertionLoss
	}
	successor, err := in.Successor(hit.Point, dir, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *AcoustoOpticModulator) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: m.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("deflectionAmplitudeRad", PropertyDescriptor{Value: m.deflectionAmplitudeRad, Label: "Deflection Amplitude (rad)", Type: PropNumber})
	p.Set("driveFrequencyHz", PropertyDescriptor{Value: m.driveFrequencyHz, Label: "Drive Frequency (Hz)", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (m *AcoustoOpticModulator) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.aperture = clampPositive(v, 1)
	case "deflectionAmplitudeRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.deflectionAmplitudeRad = v
	case "driveFrequencyHz":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.driveFrequencyHz = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *AcoustoOpticModulator) ToJSON() map[string]any {
	return map[string]any{
		"aperture": m.aperture, "deflectionAmplitudeRad": m.deflectionAmplitudeRad, "driveFrequencyHz": m.driveFrequencyHz,
	}
}

// ElectroOpticModulator sinusoidally rotates a linearly polarized ray's
// polarization angle with simulation time (a Pockels-cell-style
// intensity/phase modulator simplified to a polarization-angle drive).
type ElectroOpticModulator struct {
	planarAperture
	rotationAmplitudeRad, driveFrequencyHz float64
	insertionLoss                          float64
}

// NewElectroOpticModulator constructs an EOM of the given aperture.
func NewElectroOpticModulator(id string, pos vec.Vector, angleRad, aperture, rotationAmplitudeRad, driveFrequencyHz float64) *ElectroOpticModulator {
	return &ElectroOpticModulator{
		planarAperture:       newPlanarAperture(id, "ElectroOpticModulator", pos, angleRad, clampPositive(aperture, 1)),
		rotationAmplitudeRad: rotationAmplitudeRad, driveFrequencyHz: driveFrequencyHz, insertionLoss: 0.95,
	}
}

func (m *ElectroOpticModulator) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	drive := modulate(cfg.SimClock, m.rotationAmplitudeRad, m.driveFrequencyHz, 0)
	polAngle := in.PolarizationAngleRad
	polType := in.PolarizationType
	if polType == ray.Unpolarized {
		polType, polAngle = ray.Linear, 0
	}
	polAngle += drive
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= m.insertionLoss
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, polType, polAngle, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (m *ElectroOpticModulator) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: m.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("rotationAmplitudeRad", PropertyDescriptor{Value: m.rotationAmplitudeRad, Label: "Rotation Amplitude (rad)", Type: PropNumber})
	p.Set("driveFrequencyHz", PropertyDescriptor{Value: m.driveFrequencyHz, Label: "Drive Frequency (Hz)", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (m *ElectroOpticModulator) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.aperture = clampPositive(v, 1)
	case "rotationAmplitudeRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.rotationAmplitudeRad = v
	case "driveFrequencyHz":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.driveFrequencyHz = v
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *ElectroOpticModulator) ToJSON() map[string]any {
	return map[string]any{
		"aperture": m.aperture, "rotationAmplitudeRad": m.rotationAmplitudeRad, "driveFrequencyHz": m.driveFrequencyHz,
	}
}

// VariableAttenuator scales transmitted intensity by a time-varying
// factor oscillating within [minTransmission, 1].
type VariableAttenuator struct {
	planarAperture
	minTransmission, driveFrequencyHz float64
}

// NewVariableAttenuator constructs an attenuator of the given aperture.
func NewVariableAttenuator(id string, pos vec.Vector, angleRad, aperture, minTransmission, driveFrequencyHz float64) *VariableAttenuator {
	return &VariableAttenuator{
		planarAperture:  newPlanarAperture(id, "VariableAttenuator", pos, angleRad, clampPositive(aperture, 1)),
		minTransmission: minTransmission, driveFrequencyHz: driveFrequencyHz,
	}
}

func (v *VariableAttenuator) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	center := (1 + v.minTransmission) / 2
	swing := (1 - v.minTransmission) / 2
	transmission := center + modulate(cfg.SimClock, swing, v.driveFrequencyHz, 0)
	intensity := in.Intensity
	if !in.IgnoreDecay {
		intensity *= transmission
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (v *VariableAttenuator) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: v.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("minTransmission", PropertyDescriptor{Value: v.minTransmission, Label: "Min Transmission", Type: PropNumber, Min: numPtr(0), Max: numPtr(1)})
	p.Set("driveFrequencyHz", PropertyDescriptor{Value: v.driveFrequencyHz, Label: "Drive Frequency (Hz)", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (v *VariableAttenuator) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		val, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(v.kind, name)
		}
		v.aperture = clampPositive(val, 1)
	case "minTransmission":
		val, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(v.kind, name)
		}
		v.minTransmission = val
	case "driveFrequencyHz":
		val, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(v.kind, name)
		}
		v.driveFrequencyHz = val
	default:
		return errUnknownProperty(v.kind, name)
	}
	return nil
}

func (v *VariableAttenuator) ToJSON() map[string]any {
	return map[string]any{"aperture": v.aperture, "minTransmission": v.minTransmission, "driveFrequencyHz": v.driveFrequencyHz}
}

// OpticalChopper periodically blocks the beam entirely, toggling
// transmission on/off at driveFrequencyHz with a square-wave duty cycle.
type OpticalChopper struct {
	planarAperture
	driveFrequencyHz, dutyCycle float64
}

// NewOpticalChopper constructs a chopper of the given aperture.
func NewOpticalChopper(id string, pos vec.Vector, angleRad, aperture, driveFrequencyHz, dutyCycle float64) *OpticalChopper {
	return &OpticalChopper{
		planarAperture:   newPlanarAperture(id, "OpticalChopper", pos, angleRad, clampPositive(aperture, 1)),
		driveFrequencyHz: driveFrequencyHz, dutyCycle: dutyCycle,
	}
}

func (c *OpticalChopper) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	if c.driveFrequencyHz <= 0 {
		in.Terminate(ray.Blocked)
		return nil, nil
	}
	period := 1 / c.driveFrequencyHz
	phase := math.Mod(cfg.SimClock, period) / period
	if phase >= c.dutyCycle {
		in.Terminate(ray.Blocked)
		return nil, nil
	}
	successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity, in.Phase,
		in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{successor}, nil
}

func (c *OpticalChopper) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: c.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("driveFrequencyHz", PropertyDescriptor{Value: c.driveFrequencyHz, Label: "Chop Frequency (Hz)", Type: PropNumber, Min: numPtr(0)})
	p.Set("dutyCycle", PropertyDescriptor{Value: c.dutyCycle, Label: "Duty Cycle", Type: PropNumber, Min: numPtr(0), Max: numPtr(1)})
	return p
}

func (c *OpticalChopper) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(c.kind, name)
		}
		c.aperture = clampPositive(v, 1)
	case "driveFrequencyHz":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(c.kind, name)
		}
		c.driveFrequencyHz = v
	case "dutyCycle":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(c.kind, name)
		}
		c.dutyCycle = v
	default:
		return errUnknownProperty(c.kind, name)
	}
	return nil
}

func (c *OpticalChopper) ToJSON() map[string]any {
	return map[string]any{"aperture": c.aperture, "driveFrequencyHz": c.driveFrequencyHz, "dutyCycle": c.dutyCycle}
}
