// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// sources.go implements the seven Source variants. Every
// source embeds sourceBase for the fields and behavior they all share:
// enabled flag, wavelength, base intensity, polarization, ignoreDecay,
// and beam width.

type sourceBase struct {
	Base
	enabled              bool
	wavelengthNm         float64
	intensity            float64
	polarization         ray.PolarizationType
	polarizationAngleRad float64
	ignoreDecay          bool
	beamWidth            float64
}

func newSourceBase(id, kind string, pos vec.Vector, angleRad float64) sourceBase {
	return sourceBase{
		Base:         newBase(id, kind, pos, angleRad),
		enabled:      true,
		wavelengthNm: 632.8,
		intensity:    1.0,
		polarization: ray.Unpolarized,
	}
}

func (s *sourceBase) Enabled() bool     { return s.enabled }
func (s *sourceBase) SetEnabled(e bool) { s.enabled = e }

func (s *sourceBase) newRay(origin, dir vec.Vector, intensity float64, cfg TraceConfig) (*ray.Segment, error) {
	r, err := ray.New(origin, dir, s.wavelengthNm, intensity, 0, 0, 1.0, s.id,
		s.polarization, s.polarizationAngleRad, s.ignoreDecay, nil, cfg.Limits())
	if err != nil {
		return nil, err
	}
	r.BeamWidth = s.beamWidth
	r.AnimateArrow = true
	return r, nil
}

// commonSourceProperties populates the property table entries every
// source shares; callers append their own variant-specific entries.
func (s *sourceBase) commonSourceProperties(p *Properties) {
	p.Set("enabled", PropertyDescriptor{Value: s.enabled, Label: "Enabled", Type: PropCheckbox})
	p.Set("wavelengthNm", PropertyDescriptor{Value: s.wavelengthNm, Label: "Wavelength (nm)", Type: PropNumber, Min: numPtr(380), Max: numPtr(780)})
	p.Set("intensity", PropertyDescriptor{Value: s.intensity, Label: "Intensity", Type: PropNumber, Min: numPtr(0)})
	p.Set("polarization", PropertyDescriptor{Value: s.polarization.String(), Label: "Polarization", Type: PropSelect, Options: []string{"unpolarized", "linear", "circular"}})
	p.Set("polarizationAngleRad", PropertyDescriptor{Value: s.polarizationAngleRad, Label: "Polarization Angle (rad)", Type: PropNumber})
	p.Set("ignoreDecay", PropertyDescriptor{Value: s.ignoreDecay, Label: "Ignore Decay", Type: PropCheckbox})
	p.Set("beamWidth", PropertyDescriptor{Value: s.beamWidth, Label: "Beam Width (mm)", Type: PropNumber, Min: numPtr(0)})
}

func (s *sourceBase) setCommonSourceProperty(kind, name string, value any) (bool, error) {
	switch name {
	case "enabled":
		v, ok := toBool(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.enabled = v
	case "wavelengthNm":
		v, ok := toFloat(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.wavelengthNm = v
	case "intensity":
		v, ok := toFloat(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.intensity = v
	case "polarization":
		v, ok := toString(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.polarization = ray.ParsePolarizationType(v)
	case "polarizationAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.polarizationAngleRad = v
	case "ignoreDecay":
		v, ok := toBool(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.ignoreDecay = v
	case "beamWidth":
		v, ok := toFloat(value)
		if !ok {
			return true, errUnknownProperty(kind, name)
		}
		s.beamWidth = v
	default:
		return false, nil
	}
	return true, nil
}

// ============================================================================
// LaserSource

// LaserSource emits exactly one ray along its angle.
type LaserSource struct{ sourceBase }

// NewLaserSource constructs a laser at pos pointing along angleRad.
func NewLaserSource(id string, pos vec.Vector, angleRad float64) *LaserSource {
	return &LaserSource{sourceBase: newSourceBase(id, "LaserSource", pos, angleRad)}
}

func (s *LaserSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	r, err := s.newRay(s.pos, s.axis(), s.intensity, cfg)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{r}, nil
}

func (s *LaserSource) GetProperties() *Properties {
	p := NewProperties()
	s.commonSourceProperties(p)
	return p
}

func (s *LaserSource) SetProperty(name string, value any) error {
	if handled, err := s.setCommonSourceProperty(s.kind, name, value); handled {
		return err
	}
	return errUnknownProperty(s.kind, name)
}

func (s *LaserSource) ToJSON() map[string]any {
	return map[string]any{
		"wavelengthNm": s.wavelengthNm, "intensity": s.intensity,
		"ignoreDecay": s.ignoreDecay, "beamWidth": s.beamWidth,
		"polarization": s.polarization.String(), "polarizationAngleRad": s.polarizationAngleRad,
		"enabled": s.enabled,
	}
}

func (s *LaserSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < 6 }
func (s *LaserSource) BoundingBox() (vec.Vector, vec.Vector) {
	return s.pos.Sub(vec.New(6, 6)), s.pos.Add(vec.New(6, 6))
}

// ============================================================================
// FanSource

// FanSource emits rayCount rays spanning ±fanAngleDeg/2 centered on angleRad.
type FanSource struct {
	sourceBase
	rayCount    uint32
	fanAngleDeg float64
}

// NewFanSource constructs a fan source.
func NewFanSource(id string, pos vec.Vector, angleRad float64, rayCount uint32, fanAngleDeg float64) *FanSource {
	return &FanSource{
		sourceBase:  newSourceBase(id, "FanSource", pos, angleRad),
		rayCount:    rayCount,
		fanAngleDeg: fanAngleDeg,
	}
}

func (s *FanSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	n := s.rayCount
	if cfg.MaxRaysPerSource > 0 && n > cfg.MaxRaysPerSource {
		n = cfg.MaxRaysPerSource
	}
	if n == 0 {
		return nil, nil
	}
	perRay := s.intensity
	if !s.ignoreDecay {
		perRay = s.intensity / float64(n)
	}
	fanRad := s.fanAngleDeg * math.Pi / 180
	rays := make([]*ray.Segment, 0, n)
	for i := uint32(0); i < n; i++ {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		theta := s.angleRad - fanRad/2 + frac*fanRad
		r, err := s.newRay(s.pos, vec.FromAngle(theta), perRay, cfg)
		if err != nil {
			return nil, err
		}
		rays = append(rays, r)
	}
	return rays, nil
}

func (s *FanSource) GetProperties() *Properties {
	p := NewProperties()
	s.commonSourceProperties(p)
	p.Set("rayCount", PropertyDescriptor{Value: s.rayCount, Label: "Ray Count", Type: PropNumber, Min: numPtr(1)})
	p.Set("fanAngleDeg", PropertyDescriptor{Value: s.fanAngleDeg, Label: "Fan Angle (deg)", Type: PropNumber, Min: numPtr(0), Max: numPtr(360)})
	return p
}

func (s *FanSource) SetProperty(name string, value any) error {
	if handled, err := s.setCommonSourceProperty(s.kind, name, value); handled {
		return err
	}
	switch name {
	case "rayCount":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(s.kind, name)
		}
		s.rayCount = uint32(v)
	case "fanAngleDeg":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.fanAngleDeg = v
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *FanSource) ToJSON() map[string]any {
	return map[string]any{
		"wavelengthNm": s.wavelengthNm, "intensity": s.intensity, "rayCount": s.rayCount,
		"fanAngleDeg": s.fanAngleDeg, "ignoreDecay": s.ignoreDecay, "beamWidth": s.beamWidth,
		"polarization": s.polarization.String(), "polarizationAngleRad": s.polarizationAngleRad,
		"enabled": s.enabled,
	}
}

func (s *FanSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < 6 }
func (s *FanSource) BoundingBox() (vec.Vector, vec.Vector) {
	return s.pos.Sub(vec.New(6, 6)), s.pos.Add(vec.New(6, 6))
}

// ============================================================================
// LineSource

// LineSource emits rayCount parallel rays along angleRad, from points
// evenly distributed along a segment of length centered on pos and
// perpendicular to angleRad (like an illuminated slit).
type LineSource struct {
	sourceBase
	rayCount uint32
	length   float64
}

// NewLineSource constructs a line source.
func NewLineSource(id string, pos vec.Vector, angleRad float64, rayCount uint32, length float64) *LineSource {
	return &LineSource{
		sourceBase: newSourceBase(id, "LineSource", pos, angleRad),
		rayCount:   rayCount,
		length:     length,
	}
}

func (s *LineSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	n := s.rayCount
	if cfg.MaxRaysPerSource > 0 && n > cfg.MaxRaysPerSource {
		n = cfg.MaxRaysPerSource
	}
	if n == 0 {
		return nil, nil
	}
	perRay := s.intensity
	if !s.ignoreDecay {
		perRay = s.intensity / float64(n)
	}
	perp := s.normal()
	dir := s.axis()
	rays := make([]*ray.Segment, 0, n)
	for i := uint32(0); i < n; i++ {
		frac := 0.5
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		offset := (frac - 0.5) * s.length
		origin := s.pos.Add(perp.Scale(offset))
		r, err := s.newRay(origin, dir, perRay, cfg)
		if err != nil {
			return nil, err
		}
		rays = append(rays, r)
	}
	return rays, nil
}

func (s *LineSource) GetProperties() *Properties {
	p := NewProperties()
	s.commonSourceProperties(p)
	p.Set("rayCount", PropertyDescriptor{Value: s.rayCount, Label: "Ray Count", Type: PropNumber, Min: numPtr(1)})
	p.Set("length", PropertyDescriptor{Value: s.length, Label: "Length", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (s *LineSource) SetProperty(name string, value any) error {
	if handled, err := s.setCommonSourceProperty(s.kind, name, value); handled {
		return err
	}
	switch name {
	case "rayCount":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(s.kind, name)
		}
		s.rayCount = uint32(v)
	case "length":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.length = v
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *LineSource) ToJSON() map[string]any {
	return map[string]any{
		"wavelengthNm": s.wavelengthNm, "intensity": s.intensity, "rayCount": s.rayCount,
		"length": s.length, "ignoreDecay": s.ignoreDecay, "beamWidth": s.beamWidth,
		"polarization": s.polarization.String(), "polarizationAngleRad": s.polarizationAngleRad,
		"enabled": s.enabled,
	}
}

func (s *LineSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < s.length/2+6 }
func (s *LineSource) BoundingBox() (vec.Vector, vec.Vector) {
	half := s.normal().Scale(s.length / 2)
	a, b := s.pos.Add(half), s.pos.Sub(half)
	return vec.New(math.Min(a.X, b.X)-6, math.Min(a.Y, b.Y)-6), vec.New(math.Max(a.X, b.X)+6, math.Max(a.Y, b.Y)+6)
}

// ============================================================================
// WhiteLightSource

// representativeWavelengths are the small set of wavelengths sampled by
// a white-light source running in fast mode: roughly red, orange,
// yellow-green, cyan, and violet.
var representativeWavelengths = []float64{700, 620, 550, 480, 420}

const (
	minVisibleNm = 380.0
	maxVisibleNm = 780.0
)

// WhiteLightSource emits multiple wavelengths spanning the visible
// range, either as one coincident multi-wavelength bundle (fast mode)
// or as a fully resolved spectral fan (accurate mode).
type WhiteLightSource struct {
	sourceBase
	rayCount uint32
}

// NewWhiteLightSource constructs a white-light source.
func NewWhiteLightSource(id string, pos vec.Vector, angleRad float64, rayCount uint32) *WhiteLightSource {
	return &WhiteLightSource{sourceBase: newSourceBase(id, "WhiteLightSource", pos, angleRad), rayCount: rayCount}
}

func (s *WhiteLightSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	wavelengths := representativeWavelengths
	if !cfg.FastWhiteLightMode {
		n := s.rayCount
		if cfg.MaxRaysPerSource > 0 && n > cfg.MaxRaysPerSource {
			n = cfg.MaxRaysPerSource
		}
		if n < 2 {
			n = 2
		}
		wavelengths = make([]float64, n)
		for i := uint32(0); i < n; i++ {
			wavelengths[i] = minVisibleNm + float64(i)*(maxVisibleNm-minVisibleNm)/float64(n-1)
		}
	}
	perRay := s.intensity
	if !s.ignoreDecay {
		perRay = s.intensity / float64(len(wavelengths))
	}
	dir := s.axis()
	rays := make([]*ray.Segment, 0, len(wavelengths))
	for _, wl := range wavelengths {
		r, err := ray.New(s.pos, dir, wl, perRay, 0, 0, 1.0, s.id, s.polarization,
			s.polarizationAngleRad, s.ignoreDecay, nil, cfg.Limits())
		if err != nil {
			return nil, err
		}
		r.BeamWidth = s.beamWidth
		r.AnimateArrow = true
		rays = append(rays, r)
	}
	return rays, nil
}

func (s *WhiteLightSource) GetProperties() *Properties {
	p := NewProperties()
	p.Set("enabled", PropertyDescriptor{Value: s.enabled, Label: "Enabled", Type: PropCheckbox})
	p.Set("intensity", PropertyDescriptor{Value: s.intensity, Label: "Intensity", Type: PropNumber, Min: numPtr(0)})
	p.Set("rayCount", PropertyDescriptor{Value: s.rayCount, Label: "Ray Count", Type: PropNumber, Min: numPtr(2)})
	p.Set("ignoreDecay", PropertyDescriptor{Value: s.ignoreDecay, Label: "Ignore Decay", Type: PropCheckbox})
	p.Set("beamWidth", PropertyDescriptor{Value: s.beamWidth, Label: "Beam Width (mm)", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (s *WhiteLightSource) SetProperty(name string, value any) error {
	switch name {
	case "enabled":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.enabled = v
	case "intensity":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.intensity = v
	case "rayCount":
		v, ok := toFloat(value)
		if !ok || v < 2 {
			return errUnknownProperty(s.kind, name)
		}
		s.rayCount = uint32(v)
	case "ignoreDecay":
		v, ok := toBool(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.ignoreDecay = v
	case "beamWidth":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.beamWidth = v
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *WhiteLightSource) ToJSON() map[string]any {
	return map[string]any{
		"intensity": s.intensity, "rayCount": s.rayCount, "ignoreDecay": s.ignoreDecay,
		"beamWidth": s.beamWidth, "enabled": s.enabled,
	}
}

func (s *WhiteLightSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < 6 }
func (s *WhiteLightSource) BoundingBox() (vec.Vector, vec.Vector) {
	return s.pos.Sub(vec.New(6, 6)), s.pos.Add(vec.New(6, 6))
}

// ============================================================================
// PointSource

// PointSource emits rayCount rays spread uniformly over a full circle
// from a single point, like an isotropic emitter.
type PointSource struct {
	sourceBase
	rayCount uint32
}

// NewPointSource constructs a point source.
func NewPointSource(id string, pos vec.Vector, rayCount uint32) *PointSource {
	return &PointSource{sourceBase: newSourceBase(id, "PointSource", pos, 0), rayCount: rayCount}
}

func (s *PointSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	n := s.rayCount
	if cfg.MaxRaysPerSource > 0 && n > cfg.MaxRaysPerSource {
		n = cfg.MaxRaysPerSource
	}
	if n == 0 {
		return nil, nil
	}
	perRay := s.intensity
	if !s.ignoreDecay {
		perRay = s.intensity / float64(n)
	}
	rays := make([]*ray.Segment, 0, n)
	for i := uint32(0); i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		r, err := s.newRay(s.pos, vec.FromAngle(theta), perRay, cfg)
		if err != nil {
			return nil, err
		}
		rays = append(rays, r)
	}
	return rays, nil
}

func (s *PointSource) GetProperties() *Properties {
	p := NewProperties()
	s.commonSourceProperties(p)
	p.Set("rayCount", PropertyDescriptor{Value: s.rayCount, Label: "Ray Count", Type: PropNumber, Min: numPtr(1)})
	return p
}

func (s *PointSource) SetProperty(name string, value any) error {
	if handled, err := s.setCommonSourceProperty(s.kind, name, value); handled {
		return err
	}
	if name == "rayCount" {
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(s.kind, name)
		}
		s.rayCount = uint32(v)
		return nil
	}
	return errUnknownProperty(s.kind, name)
}

func (s *PointSource) ToJSON() map[string]any {
	return map[string]any{
		"wavelengthNm": s.wavelengthNm, "intensity": s.intensity, "rayCount": s.rayCount,
		"ignoreDecay": s.ignoreDecay, "beamWidth": s.beamWidth,
		"polarization": s.polarization.String(), "polarizationAngleRad": s.polarizationAngleRad,
		"enabled": s.enabled,
	}
}

func (s *PointSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < 6 }
func (s *PointSource) BoundingBox() (vec.Vector, vec.Vector) {
	return s.pos.Sub(vec.New(6, 6)), s.pos.Add(vec.New(6, 6))
}

// ============================================================================
// LEDSource

// LEDSource is a point source narrowed to a fan and weighted by a
// Lambertian cos(theta) falloff across the fan, approximating an LED's
// emission pattern.
type LEDSource struct {
	sourceBase
	rayCount    uint32
	fanAngleDeg float64
}

// NewLEDSource constructs an LED source.
func NewLEDSource(id string, pos vec.Vector, angleRad float64, rayCount uint32, fanAngleDeg float64) *LEDSource {
	return &LEDSource{sourceBase: newSourceBase(id, "LEDSource", pos, angleRad), rayCount: rayCount, fanAngleDeg: fanAngleDeg}
}

func (s *LEDSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	n := s.rayCount
	if cfg.MaxRaysPerSource > 0 && n > cfg.MaxRaysPerSource {
		n = cfg.MaxRaysPerSource
	}
	if n == 0 {
		return nil, nil
	}
	fanRad := s.fanAngleDeg * math.Pi / 180
	weights := make([]float64, n)
	total := 0.0
	for i := uint32(0); i < n; i++ {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		localAngle := -fanRad/2 + frac*fanRad
		w := math.Max(0, math.Cos(localAngle))
		weights[i] = w
		total += w
	}
	rays := make([]*ray.Segment, 0, n)
	for i := uint32(0); i < n; i++ {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		theta := s.angleRad - fanRad/2 + frac*fanRad
		perRay := s.intensity
		if !s.ignoreDecay && total > 0 {
			perRay = s.intensity * weights[i] / total
		}
		r, err := s.newRay(s.pos, vec.FromAngle(theta), perRay, cfg)
		if err != nil {
			return nil, err
		}
		rays = append(rays, r)
	}
	return rays, nil
}

func (s *LEDSource) GetProperties() *Properties {
	p := NewProperties()
	s.commonSourceProperties(p)
	p.Set("rayCount", PropertyDescriptor{Value: s.rayCount, Label: "Ray Count", Type: PropNumber, Min: numPtr(1)})
	p.Set("fanAngleDeg", PropertyDescriptor{Value: s.fanAngleDeg, Label: "Fan Angle (deg)", Type: PropNumber, Min: numPtr(0), Max: numPtr(180)})
	return p
}

func (s *LEDSource) SetProperty(name string, value any) error {
	if handled, err := s.setCommonSourceProperty(s.kind, name, value); handled {
		return err
	}
	switch name {
	case "rayCount":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(s.kind, name)
		}
		s.rayCount = uint32(v)
	case "fanAngleDeg":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.fanAngleDeg = v
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *LEDSource) ToJSON() map[string]any {
	return map[string]any{
		"wavelengthNm": s.wavelengthNm, "intensity": s.intensity, "rayCount": s.rayCount,
		"fanAngleDeg": s.fanAngleDeg, "ignoreDecay": s.ignoreDecay, "beamWidth": s.beamWidth,
		"polarization": s.polarization.String(), "polarizationAngleRad": s.polarizationAngleRad,
		"enabled": s.enabled,
	}
}

func (s *LEDSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < 6 }
func (s *LEDSource) BoundingBox() (vec.Vector, vec.Vector) {
	return s.pos.Sub(vec.New(6, 6)), s.pos.Add(vec.New(6, 6))
}

// ============================================================================
// PulsedLaserSource

// PulsedLaserSource behaves like LaserSource, but its emitted intensity
// is gated on/off by a square-wave duty cycle evaluated against
// TraceConfig.SimClock, approximating a pulse envelope.
type PulsedLaserSource struct {
	sourceBase
	periodSec float64
	dutyCycle float64 // fraction of the period the pulse is "on", in [0,1].
}

// NewPulsedLaserSource constructs a pulsed laser.
func NewPulsedLaserSource(id string, pos vec.Vector, angleRad, periodSec, dutyCycle float64) *PulsedLaserSource {
	return &PulsedLaserSource{
		sourceBase: newSourceBase(id, "PulsedLaserSource", pos, angleRad),
		periodSec:  periodSec,
		dutyCycle:  dutyCycle,
	}
}

func (s *PulsedLaserSource) GenerateRays(cfg TraceConfig) ([]*ray.Segment, error) {
	if !s.enabled {
		return nil, nil
	}
	intensity := s.intensity
	if s.periodSec > 0 {
		phase := math.Mod(cfg.SimClock, s.periodSec) / s.periodSec
		if phase >= s.dutyCycle {
			intensity = 0
		}
	}
	r, err := s.newRay(s.pos, s.axis(), intensity, cfg)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{r}, nil
}

func (s *PulsedLaserSource) GetProperties() *Properties {
	p := NewProperties()
	s.commonSourceProperties(p)
	p.Set("periodSec", PropertyDescriptor{Value: s.periodSec, Label: "Period (s)", Type: PropNumber, Min: numPtr(0)})
	p.Set("dutyCycle", PropertyDescriptor{Value: s.dutyCycle, Label: "Duty Cycle", Type: PropRange, Min: numPtr(0), Max: numPtr(1), Step: numPtr(0.01)})
	return p
}

func (s *PulsedLaserSource) SetProperty(name string, value any) error {
	if handled, err := s.setCommonSourceProperty(s.kind, name, value); handled {
		return err
	}
	switch name {
	case "periodSec":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.periodSec = v
	case "dutyCycle":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.dutyCycle = v
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *PulsedLaserSource) ToJSON() map[string]any {
	return map[string]any{
		"wavelengthNm": s.wavelengthNm, "intensity": s.intensity, "periodSec": s.periodSec,
		"dutyCycle": s.dutyCycle, "ignoreDecay": s.ignoreDecay, "beamWidth": s.beamWidth,
		"polarization": s.polarization.String(), "polarizationAngleRad": s.polarizationAngleRad,
		"enabled": s.enabled,
	}
}

func (s *PulsedLaserSource) ContainsPoint(p vec.Vector) bool { return s.pos.DistanceTo(p) < 6 }
func (s *PulsedLaserSource) BoundingBox() (vec.Vector, vec.Vector) {
	return s.pos.Sub(vec.New(6, 6)), s.pos.Add(vec.New(6, 6))
}
