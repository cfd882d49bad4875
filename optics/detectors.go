// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// detectors.go implements the aperture/detector variants:
// Aperture, Screen, Photodiode, CCDCamera, Spectrometer, PowerMeter,
// PolarizationAnalyzer. Detectors accumulate state across a trace and
// Scene.ResetAccumulators() clears it at the start of each
// TraceEngine.Trace frame.

// ============================================================================
// Aperture

// Slit is one transmissive gap in an Aperture's slit array, given as a
// signed offset range along the aperture's local tangent.
type Slit struct {
	Min, Max float64
}

// Aperture is a planar slit array: a ray landing outside every slit is
// blocked, inside any slit it passes through unaffected.
type Aperture struct {
	planarAperture
	slits []Slit
}

// NewAperture constructs an aperture of the given width with one
// centered slit of slitWidth.
func NewAperture(id string, pos vec.Vector, angleRad, width, slitWidth float64) *Aperture {
	half := slitWidth / 2
	return &Aperture{
		planarAperture: newPlanarAperture(id, "Aperture", pos, angleRad, clampPositive(width, 1)),
		slits:          []Slit{{Min: -half, Max: half}},
	}
}

func (a *Aperture) withinSlit(offset float64) bool {
	for _, s := range a.slits {
		if offset >= s.Min && offset <= s.Max {
			return true
		}
	}
	return false
}

func (a *Aperture) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	offset, _ := hit.Extra["tangentOffset"].(float64)
	if a.withinSlit(offset) {
		successor, err := in.Successor(hit.Point, in.Direction, in.WavelengthNm, in.Intensity, in.Phase,
			in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		return []*ray.Segment{successor}, nil
	}
	in.Terminate(ray.Blocked)
	return nil, nil
}

func (a *Aperture) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: a.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	if len(a.slits) > 0 {
		p.Set("slitWidth", PropertyDescriptor{Value: a.slits[0].Max - a.slits[0].Min, Label: "Slit Width", Type: PropNumber, Min: numPtr(0.1)})
	}
	return p
}

func (a *Aperture) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.aperture = clampPositive(v, 1)
	case "slitWidth":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		v = clampPositive(v, 0.1)
		a.slits = []Slit{{Min: -v / 2, Max: v / 2}}
	case "slits":
		slits, ok := parseSlits(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.slits = slits
	default:
		return errUnknownProperty(a.kind, name)
	}
	return nil
}

// parseSlits decodes the "slits" property's JSON-round-tripped shape
// (a slice of {"min":..,"max":..} maps, as emitted by Aperture.ToJSON)
// back into a []Slit.
func parseSlits(value any) ([]Slit, bool) {
	raw, ok := value.([]any)
	if !ok {
		asMaps, ok := value.([]map[string]any)
		if !ok {
			return nil, false
		}
		raw = make([]any, len(asMaps))
		for i, m := range asMaps {
			raw[i] = m
		}
	}
	slits := make([]Slit, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		min, ok1 := toFloat(m["min"])
		max, ok2 := toFloat(m["max"])
		if !ok1 || !ok2 {
			return nil, false
		}
		slits = append(slits, Slit{Min: min, Max: max})
	}
	if len(slits) == 0 {
		return nil, false
	}
	return slits, true
}

func (a *Aperture) ToJSON() map[string]any {
	slits := make([]map[string]any, len(a.slits))
	for i, s := range a.slits {
		slits[i] = map[string]any{"min": s.Min, "max": s.Max}
	}
	return map[string]any{"aperture": a.aperture, "slits": slits}
}

// ============================================================================
// Screen

// Screen bins incoming hits by their position along the screen's local
// axis, producing an intensity pattern histogram.
type Screen struct {
	planarAperture
	binCount int
	bins     []float64
}

// NewScreen constructs a screen of the given width with binCount bins.
func NewScreen(id string, pos vec.Vector, angleRad, width float64, binCount int) *Screen {
	if binCount < 1 {
		binCount = 1
	}
	return &Screen{
		planarAperture: newPlanarAperture(id, "Screen", pos, angleRad, clampPositive(width, 1)),
		binCount:       binCount,
		bins:           make([]float64, binCount),
	}
}

// Bins returns the current per-bin accumulated intensity, in order from
// -width/2 to +width/2.
func (s *Screen) Bins() []float64 {
	out := make([]float64, len(s.bins))
	copy(out, s.bins)
	return out
}

// ResetAccumulators clears accumulated bin intensities (Scene.ResetAccumulators).
func (s *Screen) ResetAccumulators() {
	for i := range s.bins {
		s.bins[i] = 0
	}
}

func (s *Screen) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	offset, _ := hit.Extra["tangentOffset"].(float64)
	normalized := (offset + s.aperture/2) / s.aperture
	idx := int(normalized * float64(s.binCount))
	if idx < 0 {
		idx = 0
	}
	if idx >= s.binCount {
		idx = s.binCount - 1
	}
	s.bins[idx] += in.Intensity
	in.Terminate(ray.AbsorbedScreen)
	return nil, nil
}

func (s *Screen) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: s.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("binCount", PropertyDescriptor{Value: s.binCount, Label: "Bin Count", Type: PropNumber, Min: numPtr(1)})
	return p
}

func (s *Screen) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.aperture = clampPositive(v, 1)
	case "binCount":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(s.kind, name)
		}
		s.binCount = int(v)
		s.bins = make([]float64, s.binCount)
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *Screen) ToJSON() map[string]any {
	return map[string]any{"aperture": s.aperture, "binCount": s.binCount}
}

// ============================================================================
// Photodiode

// Photodiode accumulates total power and hit count for every ray that
// lands on it.
type Photodiode struct {
	planarAperture
	measuredPower float64
	hitCount      int
}

// NewPhotodiode constructs a photodiode of the given active width.
func NewPhotodiode(id string, pos vec.Vector, angleRad, width float64) *Photodiode {
	return &Photodiode{planarAperture: newPlanarAperture(id, "Photodiode", pos, angleRad, clampPositive(width, 1))}
}

// MeasuredPower returns the cumulative intensity measured this frame.
func (p *Photodiode) MeasuredPower() float64 { return p.measuredPower }

// HitCount returns the number of rays that have landed on this frame.
func (p *Photodiode) HitCount() int { return p.hitCount }

// ResetAccumulators clears the accumulated power and hit count (Scene.ResetAccumulators).
func (p *Photodiode) ResetAccumulators() {
	p.measuredPower = 0
	p.hitCount = 0
}

func (p *Photodiode) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	p.measuredPower += in.Intensity
	p.hitCount++
	in.Terminate(ray.AbsorbedDetector)
	return nil, nil
}

func (p *Photodiode) GetProperties() *Properties {
	props := NewProperties()
	props.Set("aperture", PropertyDescriptor{Value: p.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	props.Set("measuredPower", PropertyDescriptor{Value: p.measuredPower, Label: "Measured Power", Type: PropNumber, ReadOnly: true})
	props.Set("hitCount", PropertyDescriptor{Value: p.hitCount, Label: "Hit Count", Type: PropNumber, ReadOnly: true})
	return props
}

func (p *Photodiode) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(p.kind, name)
		}
		p.aperture = clampPositive(v, 1)
	case "measuredPower", "hitCount":
		return errReadOnlyProperty(p.kind, name)
	default:
		return errUnknownProperty(p.kind, name)
	}
	return nil
}

func (p *Photodiode) ToJSON() map[string]any {
	return map[string]any{"aperture": p.aperture, "measuredPower": p.measuredPower, "hitCount": p.hitCount}
}

// ============================================================================
// CCDCamera

// CCDCamera is a variant of Screen: it bins hits along
// its local axis exactly like Screen but additionally records the
// wavelength of the most recent hit per bin, approximating a simple
// color-sensitive sensor strip.
type CCDCamera struct {
	planarAperture
	binCount   int
	bins       []float64
	wavelength []float64
}

// NewCCDCamera constructs a camera sensor of the given width and pixel
// (bin) count.
func NewCCDCamera(id string, pos vec.Vector, angleRad, width float64, binCount int) *CCDCamera {
	if binCount < 1 {
		binCount = 1
	}
	return &CCDCamera{
		planarAperture: newPlanarAperture(id, "CCDCamera", pos, angleRad, clampPositive(width, 1)),
		binCount:       binCount, bins: make([]float64, binCount), wavelength: make([]float64, binCount),
	}
}

// Bins returns per-pixel accumulated intensity.
func (c *CCDCamera) Bins() []float64 {
	out := make([]float64, len(c.bins))
	copy(out, c.bins)
	return out
}

// ResetAccumulators clears accumulated pixel state (Scene.ResetAccumulators).
func (c *CCDCamera) ResetAccumulators() {
	for i := range c.bins {
		c.bins[i] = 0
		c.wavelength[i] = 0
	}
}

func (c *CCDCamera) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	offset, _ := hit.Extra["tangentOffset"].(float64)
	normalized := (offset + c.aperture/2) / c.aperture
	idx := int(normalized * float64(c.binCount))
	if idx < 0 {
		idx = 0
	}
	if idx >= c.binCount {
		idx = c.binCount - 1
	}
	c.bins[idx] += in.Intensity
	c.wavelength[idx] = in.WavelengthNm
	in.Terminate(ray.AbsorbedDetector)
	return nil, nil
}

func (c *CCDCamera) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: c.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("binCount", PropertyDescriptor{Value: c.binCount, Label: "Pixel Count", Type: PropNumber, Min: numPtr(1)})
	return p
}

func (c *CCDCamera) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(c.kind, name)
		}
		c.aperture = clampPositive(v, 1)
	case "binCount":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(c.kind, name)
		}
		c.binCount = int(v)
		c.bins = make([]float64, c.binCount)
		c.wavelength = make([]float64, c.binCount)
	default:
		return errUnknownProperty(c.kind, name)
	}
	return nil
}

func (c *CCDCamera) ToJSON() map[string]any {
	return map[string]any{"aperture": c.aperture, "binCount": c.binCount}
}

// ============================================================================
// Spectrometer

// Spectrometer bins incoming hits by wavelength instead of position,
// producing a histogram over the visible range.
type Spectrometer struct {
	planarAperture
	minNm, maxNm float64
	binCount     int
	bins         []float64
}

// NewSpectrometer constructs a spectrometer covering [minNm, maxNm] with
// binCount wavelength bins.
func NewSpectrometer(id string, pos vec.Vector, angleRad, width, minNm, maxNm float64, binCount int) *Spectrometer {
	if binCount < 1 {
		binCount = 1
	}
	return &Spectrometer{
		planarAperture: newPlanarAperture(id, "Spectrometer", pos, angleRad, clampPositive(width, 1)),
		minNm: minNm, maxNm: maxNm, binCount: binCount, bins: make([]float64, binCount),
	}
}

// Bins returns per-wavelength-bin accumulated intensity.
func (s *Spectrometer) Bins() []float64 {
	out := make([]float64, len(s.bins))
	copy(out, s.bins)
	return out
}

// ResetAccumulators clears accumulated bin intensities (Scene.ResetAccumulators).
func (s *Spectrometer) ResetAccumulators() {
	for i := range s.bins {
		s.bins[i] = 0
	}
}

func (s *Spectrometer) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	span := s.maxNm - s.minNm
	if span > 0 {
		normalized := (in.WavelengthNm - s.minNm) / span
		idx := int(normalized * float64(s.binCount))
		if idx < 0 {
			idx = 0
		}
		if idx >= s.binCount {
			idx = s.binCount - 1
		}
		s.bins[idx] += in.Intensity
	}
	in.Terminate(ray.AbsorbedDetector)
	return nil, nil
}

func (s *Spectrometer) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: s.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("minNm", PropertyDescriptor{Value: s.minNm, Label: "Min Wavelength (nm)", Type: PropNumber, Min: numPtr(1)})
	p.Set("maxNm", PropertyDescriptor{Value: s.maxNm, Label: "Max Wavelength (nm)", Type: PropNumber, Min: numPtr(1)})
	p.Set("binCount", PropertyDescriptor{Value: s.binCount, Label: "Bin Count", Type: PropNumber, Min: numPtr(1)})
	return p
}

func (s *Spectrometer) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.aperture = clampPositive(v, 1)
	case "minNm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.minNm = v
	case "maxNm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(s.kind, name)
		}
		s.maxNm = v
	case "binCount":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return errUnknownProperty(s.kind, name)
		}
		s.binCount = int(v)
		s.bins = make([]float64, s.binCount)
	default:
		return errUnknownProperty(s.kind, name)
	}
	return nil
}

func (s *Spectrometer) ToJSON() map[string]any {
	return map[string]any{"aperture": s.aperture, "minNm": s.minNm, "maxNm": s.maxNm, "binCount": s.binCount}
}

// ============================================================================
// PowerMeter

// powerMeterSampleCap bounds the per-frame rolling sample ring buffer
// backing a power-over-time readout.
const powerMeterSampleCap = 256

// PowerMeter accumulates total measured power plus a bounded rolling
// window of individual hit samples, distinguishing it from Photodiode's
// plain hit-count readout.
type PowerMeter struct {
	planarAperture
	totalPower float64
	samples    []float64
}

// NewPowerMeter constructs a power meter of the given active width.
func NewPowerMeter(id string, pos vec.Vector, angleRad, width float64) *PowerMeter {
	return &PowerMeter{planarAperture: newPlanarAperture(id, "PowerMeter", pos, angleRad, clampPositive(width, 1))}
}

// TotalPower returns the cumulative measured power this frame.
func (m *PowerMeter) TotalPower() float64 { return m.totalPower }

// Samples returns the rolling per-hit sample buffer, oldest first.
func (m *PowerMeter) Samples() []float64 {
	out := make([]float64, len(m.samples))
	copy(out, m.samples)
	return out
}

// ResetAccumulators clears accumulated power and samples (Scene.ResetAccumulators).
func (m *PowerMeter) ResetAccumulators() {
	m.totalPower = 0
	m.samples = nil
}

func (m *PowerMeter) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	m.totalPower += in.Intensity
	m.samples = append(m.samples, in.Intensity)
	if len(m.samples) > powerMeterSampleCap {
		m.samples = m.samples[len(m.samples)-powerMeterSampleCap:]
	}
	in.Terminate(ray.AbsorbedDetector)
	return nil, nil
}

func (m *PowerMeter) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: m.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("totalPower", PropertyDescriptor{Value: m.totalPower, Label: "Total Power", Type: PropNumber, ReadOnly: true})
	return p
}

func (m *PowerMeter) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(m.kind, name)
		}
		m.aperture = clampPositive(v, 1)
	case "totalPower":
		return errReadOnlyProperty(m.kind, name)
	default:
		return errUnknownProperty(m.kind, name)
	}
	return nil
}

func (m *PowerMeter) ToJSON() map[string]any {
	return map[string]any{"aperture": m.aperture, "totalPower": m.totalPower}
}

// ============================================================================
// PolarizationAnalyzer

// PolarizationAnalyzer reports transmitted intensity and the inferred
// linear polarization angle of the rays it measures; the angle readout
// is what distinguishes it from Photodiode.
type PolarizationAnalyzer struct {
	planarAperture
	measuredPower float64
	inferredAngle float64
	hasReading    bool
}

// NewPolarizationAnalyzer constructs an analyzer of the given active
// width.
func NewPolarizationAnalyzer(id string, pos vec.Vector, angleRad, width float64) *PolarizationAnalyzer {
	return &PolarizationAnalyzer{planarAperture: newPlanarAperture(id, "PolarizationAnalyzer", pos, angleRad, clampPositive(width, 1))}
}

// MeasuredPower returns the cumulative intensity measured this frame.
func (a *PolarizationAnalyzer) MeasuredPower() float64 { return a.measuredPower }

// InferredAngleRad returns the polarization angle of the most recent
// linearly polarized hit, and whether any reading has been taken.
func (a *PolarizationAnalyzer) InferredAngleRad() (float64, bool) { return a.inferredAngle, a.hasReading }

// ResetAccumulators clears accumulated power and the last reading (Scene.ResetAccumulators).
func (a *PolarizationAnalyzer) ResetAccumulators() {
	a.measuredPower = 0
	a.inferredAngle = 0
	a.hasReading = false
}

func (a *PolarizationAnalyzer) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	a.measuredPower += in.Intensity
	if in.PolarizationType == ray.Linear {
		a.inferredAngle = math.Mod(in.PolarizationAngleRad, math.Pi)
		a.hasReading = true
	}
	in.Terminate(ray.AbsorbedDetector)
	return nil, nil
}

func (a *PolarizationAnalyzer) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: a.aperture, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("measuredPower", PropertyDescriptor{Value: a.measuredPower, Label: "Measured Power", Type: PropNumber, ReadOnly: true})
	p.Set("inferredAngleRad", PropertyDescriptor{Value: a.inferredAngle, Label: "Polarization Angle (rad)", Type: PropNumber, ReadOnly: true})
	return p
}

func (a *PolarizationAnalyzer) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(a.kind, name)
		}
		a.aperture = clampPositive(v, 1)
	case "measuredPower", "inferredAngleRad":
		return errReadOnlyProperty(a.kind, name)
	default:
		return errUnknownProperty(a.kind, name)
	}
	return nil
}

func (a *PolarizationAnalyzer) ToJSON() map[string]any {
	return map[string]any{"aperture": a.aperture, "measuredPower": a.measuredPower, "inferredAngleRad": a.inferredAngle}
}
