// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/galvanized/opticslab/vec"
)

// serialize.go is the canonical scene JSON codec, following the
// same embedded-catalog-unmarshal spirit as glass.go but generalized
// here to a hand-rolled component dispatch table since a scene's
// component list is
// polymorphic in a way a single struct tag set can't describe.

// currentSchemaVersion is the scene file format version this build
// writes and the target every older version is migrated to on load.
const currentSchemaVersion = "2.0.0"

// SceneMode selects how the viewer interprets and renders a scene.
type SceneMode string

const (
	ModeRayTrace    SceneMode = "ray_trace"
	ModeLensImaging SceneMode = "lens_imaging"
)

// SceneSettings is the scene-wide configuration persisted alongside its
// components.
type SceneSettings struct {
	Mode               SceneMode
	MaxRays            uint32
	MaxBounces         uint32
	MinIntensity       float64
	ShowGrid           bool
	ShowArrows         bool
	ArrowSpeed         float64
	FastWhiteLightMode bool
}

var defaultSceneSettings = SceneSettings{
	Mode:               ModeRayTrace,
	MaxRays:            50,
	MaxBounces:         20,
	MinIntensity:       0.01,
	ShowGrid:           true,
	ShowArrows:         true,
	ArrowSpeed:         1.0,
	FastWhiteLightMode: true,
}

// TraceConfig adapts a scene's persisted settings to the TraceEngine's
// input shape.
func (s SceneSettings) TraceConfig() TraceConfig {
	return NewTraceConfig(
		MaxRaysPerSource(s.MaxRays),
		MaxBounces(s.MaxBounces),
		MinIntensity(s.MinIntensity),
		FastWhiteLightMode(s.FastWhiteLightMode),
	)
}

// SceneMetadata is the scene file's free-form "metadata" object. Extra
// holds any additional keys a caller wants round-tripped without this
// package needing to know their names.
type SceneMetadata struct {
	CreatedAt string
	UpdatedAt string
	Extra     map[string]any
}

// componentEnvelope is the JSON shape of one entry in a scene file's
// "components" array, and the argument componentFromJSON rebuilds a
// live Component from. Properties mirrors GetProperties() for display
// in a non-Go consumer; Raw is ToJSON()'s output and is what
// componentFromJSON actually reconstructs state from.
type componentEnvelope struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Angle      float64        `json:"angle"`
	Properties map[string]any `json:"properties"`
	Raw        map[string]any `json:"_raw"`
	Label      string         `json:"label,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Selected   bool           `json:"selected,omitempty"`
}

// sceneSettingsJSON is componentEnvelope's counterpart for the
// top-level "settings" object.
type sceneSettingsJSON struct {
	Mode               SceneMode `json:"mode"`
	MaxRays            uint32    `json:"maxRays"`
	MaxBounces         uint32    `json:"maxBounces"`
	MinIntensity       float64   `json:"minIntensity"`
	ShowGrid           bool      `json:"showGrid"`
	ShowArrows         bool      `json:"showArrows"`
	ArrowSpeed         float64   `json:"arrowSpeed"`
	FastWhiteLightMode bool      `json:"fastWhiteLightMode"`
}

// sceneFile is the top-level JSON document.
type sceneFile struct {
	Version    string              `json:"version"`
	Name       string              `json:"name"`
	Components []componentEnvelope `json:"components"`
	Settings   sceneSettingsJSON   `json:"settings"`
	Metadata   map[string]any      `json:"metadata"`
}

// SerializeScene renders scene to canonical, pretty-printed (2-space
// indent) JSON. metadata.CreatedAt/UpdatedAt are written as the
// "createdAt"/"updatedAt" metadata keys; metadata.Extra entries are
// merged alongside them.
func SerializeScene(scene *Scene, metadata SceneMetadata) ([]byte, error) {
	components := scene.Components()
	envelopes := make([]componentEnvelope, 0, len(components))
	for _, c := range components {
		props := map[string]any{}
		c.GetProperties().Range(func(name string, d PropertyDescriptor) bool {
			props[name] = d.Value
			return true
		})
		envelopes = append(envelopes, componentEnvelope{
			Type:       c.Kind(),
			ID:         c.ID(),
			X:          c.Pos().X,
			Y:          c.Pos().Y,
			Angle:      c.AngleRad(),
			Properties: sanitizeForJSON(props).(map[string]any),
			Raw:        sanitizeForJSON(c.ToJSON()).(map[string]any),
			Label:      c.Label(),
			Notes:      c.Notes(),
			Selected:   c.Selected(),
		})
	}

	settings := scene.Settings()
	meta := map[string]any{"createdAt": metadata.CreatedAt, "updatedAt": metadata.UpdatedAt}
	for k, v := range metadata.Extra {
		meta[k] = v
	}

	file := sceneFile{
		Version:    currentSchemaVersion,
		Name:       scene.Name(),
		Components: envelopes,
		Settings: sceneSettingsJSON{
			Mode: settings.Mode, MaxRays: settings.MaxRays, MaxBounces: settings.MaxBounces,
			MinIntensity: settings.MinIntensity, ShowGrid: settings.ShowGrid, ShowArrows: settings.ShowArrows,
			ArrowSpeed: settings.ArrowSpeed, FastWhiteLightMode: settings.FastWhiteLightMode,
		},
		Metadata: meta,
	}
	return json.MarshalIndent(file, "", "  ")
}

// DeserializeScene parses and validates data, migrating older schema
// versions forward, and rebuilds a live Scene. warnings reports
// one message per skipped unknown component type; the caller decides
// whether to surface them.
func DeserializeScene(data []byte) (*Scene, SceneMetadata, []string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, SceneMetadata{}, nil, fmt.Errorf("optics: malformed scene file: %w", err)
	}
	migrateSceneDocument(raw)

	version, _ := raw["version"].(string)
	if version == "" {
		return nil, SceneMetadata{}, nil, fmt.Errorf("optics: scene file missing %q", "version")
	}
	_, ok := raw["components"].([]any)
	if !ok {
		return nil, SceneMetadata{}, nil, fmt.Errorf("optics: scene file missing %q array", "components")
	}

	reencoded, err := json.Marshal(raw)
	if err != nil {
		return nil, SceneMetadata{}, nil, err
	}
	var file sceneFile
	if err := json.Unmarshal(reencoded, &file); err != nil {
		return nil, SceneMetadata{}, nil, fmt.Errorf("optics: malformed scene file: %w", err)
	}

	scene := NewScene(file.Name)
	scene.SetSettings(SceneSettings{
		Mode: file.Settings.Mode, MaxRays: file.Settings.MaxRays, MaxBounces: file.Settings.MaxBounces,
		MinIntensity: file.Settings.MinIntensity, ShowGrid: file.Settings.ShowGrid, ShowArrows: file.Settings.ShowArrows,
		ArrowSpeed: file.Settings.ArrowSpeed, FastWhiteLightMode: file.Settings.FastWhiteLightMode,
	})

	var warnings []string
	skip := func(i int, typ, msg string) {
		slog.Warn("optics: skipping scene component", "index", i, "type", typ, "reason", msg)
		warnings = append(warnings, fmt.Sprintf("optics: skipping component %d (%s): %s", i, typ, msg))
	}
	for i, env := range file.Components {
		if _, known := componentConstructors[env.Type]; !known {
			skip(i, env.Type, "unknown type")
			continue
		}
		env.Raw = desanitizeMap(env.Raw)
		c, err := componentFromJSON(env)
		if err != nil {
			skip(i, env.Type, err.Error())
			continue
		}
		if err := scene.Add(c); err != nil {
			skip(i, env.Type, err.Error())
		}
	}

	metadata := SceneMetadata{Extra: map[string]any{}}
	if v, ok := file.Metadata["createdAt"].(string); ok {
		metadata.CreatedAt = v
	}
	if v, ok := file.Metadata["updatedAt"].(string); ok {
		metadata.UpdatedAt = v
	}
	for k, v := range file.Metadata {
		if k == "createdAt" || k == "updatedAt" {
			continue
		}
		metadata.Extra[k] = v
	}

	return scene, metadata, warnings, nil
}

// migrateSceneDocument upgrades an in-memory decoded scene document to
// currentSchemaVersion in place: 1.0 -> 1.1 injects defaulted
// settings/metadata; 1.1 -> 2.0 standardizes x/y/angle keys and
// synthesizes a name.
func migrateSceneDocument(doc map[string]any) {
	version, _ := doc["version"].(string)

	if version == "" || version == "1.0" || version == "1.0.0" {
		if _, ok := doc["settings"]; !ok {
			doc["settings"] = defaultSceneSettingsJSONMap()
		}
		if _, ok := doc["metadata"]; !ok {
			doc["metadata"] = map[string]any{}
		}
		version = "1.1"
	}

	if version == "1.1" || version == "1.1.0" {
		if components, ok := doc["components"].([]any); ok {
			for _, entry := range components {
				m, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				standardizePositionKeys(m)
			}
		}
		if _, ok := doc["name"]; !ok {
			doc["name"] = "Untitled Scene"
		}
		version = "2.0.0"
	}

	doc["version"] = currentSchemaVersion
}

// standardizePositionKeys renames a 1.1-era component entry's legacy
// position aliases ("posX"/"posY"/"rotation") to the 2.0 "x"/"y"/"angle"
// keys, in place.
func standardizePositionKeys(m map[string]any) {
	alias := func(from, to string) {
		if _, has := m[to]; has {
			return
		}
		if v, ok := m[from]; ok {
			m[to] = v
			delete(m, from)
		}
	}
	alias("posX", "x")
	alias("posY", "y")
	alias("rotation", "angle")
}

func defaultSceneSettingsJSONMap() map[string]any {
	s := defaultSceneSettings
	return map[string]any{
		"mode": string(s.Mode), "maxRays": s.MaxRays, "maxBounces": s.MaxBounces,
		"minIntensity": s.MinIntensity, "showGrid": s.ShowGrid, "showArrows": s.ShowArrows,
		"arrowSpeed": s.ArrowSpeed, "fastWhiteLightMode": s.FastWhiteLightMode,
	}
}

// positionTolerance and angleTolerance are the scene-equivalence
// thresholds used by areEquivalent.
const (
	positionTolerance = 1e-3
	angleTolerance    = 1e-3
)

// areEquivalent reports whether a and b have the same component count,
// the same type at each positional index, matching (x,y) and angle
// within tolerance, and the same settings.Mode.
func areEquivalent(a, b *Scene) bool {
	ca, cb := a.Components(), b.Components()
	if len(ca) != len(cb) {
		return false
	}
	if a.Settings().Mode != b.Settings().Mode {
		return false
	}
	for i := range ca {
		x, y := ca[i], cb[i]
		if x.Kind() != y.Kind() {
			return false
		}
		if math.Abs(x.Pos().X-y.Pos().X) > positionTolerance || math.Abs(x.Pos().Y-y.Pos().Y) > positionTolerance {
			return false
		}
		if math.Abs(x.AngleRad()-y.AngleRad()) > angleTolerance {
			return false
		}
	}
	return true
}

// sanitizeForJSON recursively replaces +/-Inf float64 values with nil
// (JSON has no infinity literal) so json.Marshal never fails on
// a component's raw numeric state.
func sanitizeForJSON(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return nil
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = sanitizeForJSON(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = sanitizeForJSON(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = sanitizeForJSON(val)
		}
		return out
	default:
		return v
	}
}

// desanitizeMap is sanitizeForJSON's decode-side inverse for a
// "_raw" map already round-tripped through encoding/json: a present key
// whose JSON value was null is restored to +Inf, since the sign lost at
// encode time has no canonical recovery (documented decision).
func desanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = desanitizeValue(v)
	}
	return out
}

func desanitizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return math.Inf(1)
	case map[string]any:
		return desanitizeMap(x)
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = desanitizeValue(val)
		}
		return out
	default:
		return v
	}
}

// --- Raw-field extraction helpers used by componentFromJSON ---

func rawFloat(raw map[string]any, key string, def float64) float64 {
	if v, ok := toFloat(raw[key]); ok {
		return v
	}
	return def
}

func rawBool(raw map[string]any, key string, def bool) bool {
	if v, ok := toBool(raw[key]); ok {
		return v
	}
	return def
}

func rawString(raw map[string]any, key string, def string) string {
	if v, ok := toString(raw[key]); ok {
		return v
	}
	return def
}

func rawUint32(raw map[string]any, key string, def uint32) uint32 {
	if v, ok := toFloat(raw[key]); ok && v >= 0 {
		return uint32(v)
	}
	return def
}

// applyLeftoverProperties replays every key in raw through c's
// SetProperty, after kind-specific construction has already consumed
// the keys it needs. This is a tolerant best-effort pass: keys a
// component rejects (e.g. read-only accumulator fields like
// "measuredPower", or an empty custom "glassName") are silently
// skipped rather than failing the whole component's restore, since the
// keys construction already handled are unaffected by a later rejected
// SetProperty call.
func applyLeftoverProperties(c Component, raw map[string]any) {
	for key, value := range raw {
		_ = c.SetProperty(key, value)
	}
}

// componentConstructors names every restorable component type, used to
// distinguish "unknown type, skip with warning" from a genuine
// construction failure.
var componentConstructors = map[string]bool{
	"LaserSource": true, "FanSource": true, "LineSource": true, "WhiteLightSource": true,
	"PointSource": true, "LEDSource": true, "PulsedLaserSource": true,
	"Mirror": true, "MetallicMirror": true, "SphericalMirror": true, "ParabolicMirror": true,
	"DichroicMirror": true, "RingMirror": true,
	"ThinLens": true, "CylindricalLens": true, "AsphericLens": true, "GRINLens": true,
	"Polarizer": true, "HalfWavePlate": true, "QuarterWavePlate": true, "BeamSplitter": true,
	"WollastonPrism": true, "FaradayRotator": true, "FaradayIsolator": true,
	"DielectricBlock": true, "Prism": true, "DiffractionGrating": true,
	"Aperture": true, "Screen": true, "Photodiode": true, "CCDCamera": true,
	"Spectrometer": true, "PowerMeter": true, "PolarizationAnalyzer": true,
	"OpticalFiber": true, "AcoustoOpticModulator": true, "ElectroOpticModulator": true,
	"VariableAttenuator": true, "OpticalChopper": true,
	"MagneticCoil": true, "CustomComponent": true, "AtomicCell": true, "FabryPerotCavity": true,
}

// componentFromJSON rebuilds a live Component from env, dispatching on
// env.Type to the matching constructor with values pulled from env.Raw
// (falling back to a documented default when a key is absent), then
// replaying every remaining raw key through SetProperty so any field
// construction didn't directly consume is still restored.
func componentFromJSON(env componentEnvelope) (Component, error) {
	pos := vec.New(env.X, env.Y)
	angle := env.Angle
	raw := env.Raw
	if raw == nil {
		raw = map[string]any{}
	}
	id := env.ID

	var c Component
	switch env.Type {
	case "LaserSource":
		c = NewLaserSource(id, pos, angle)
	case "FanSource":
		c = NewFanSource(id, pos, angle, rawUint32(raw, "rayCount", 5), rawFloat(raw, "fanAngleDeg", 10))
	case "LineSource":
		c = NewLineSource(id, pos, angle, rawUint32(raw, "rayCount", 5), rawFloat(raw, "length", 50))
	case "WhiteLightSource":
		c = NewWhiteLightSource(id, pos, angle, rawUint32(raw, "rayCount", 5))
	case "PointSource":
		c = NewPointSource(id, pos, rawUint32(raw, "rayCount", 12))
	case "LEDSource":
		c = NewLEDSource(id, pos, angle, rawUint32(raw, "rayCount", 5), rawFloat(raw, "fanAngleDeg", 30))
	case "PulsedLaserSource":
		c = NewPulsedLaserSource(id, pos, angle, rawFloat(raw, "periodSec", 1), rawFloat(raw, "dutyCycle", 0.5))

	case "Mirror":
		c = NewMirror(id, pos, angle, rawFloat(raw, "length", 100))
	case "MetallicMirror":
		c = NewMetallicMirror(id, pos, angle, rawFloat(raw, "length", 100), rawFloat(raw, "reflectivity", 0.95))
	case "SphericalMirror":
		c = NewSphericalMirror(id, pos, angle, rawFloat(raw, "radius", 100), rawFloat(raw, "apertureDeg", 60))
	case "ParabolicMirror":
		c = NewParabolicMirror(id, pos, angle, rawFloat(raw, "focalLength", 100), rawFloat(raw, "width", 100))
	case "DichroicMirror":
		c = NewDichroicMirror(id, pos, angle, rawFloat(raw, "length", 100), rawFloat(raw, "cutoffNm", 550),
			rawFloat(raw, "transitionWidth", 10), rawBool(raw, "reflectLonger", true))
	case "RingMirror":
		c = NewRingMirror(id, pos, angle, rawFloat(raw, "innerRadius", 10), rawFloat(raw, "outerRadius", 50))

	case "ThinLens":
		c = NewThinLens(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "focalLength", 100))
	case "CylindricalLens":
		c = NewCylindricalLens(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "focalLength", 100))
	case "AsphericLens":
		c = NewAsphericLens(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "focalLength", 100),
			rawFloat(raw, "asphericCoefficient", 0))
	case "GRINLens":
		c = NewGRINLens(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "length", 20),
			rawFloat(raw, "gradientCoef", 0))

	case "Polarizer":
		c = NewPolarizer(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "axisAngleRad", 0))
	case "HalfWavePlate":
		c = NewHalfWavePlate(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "fastAxisAngleRad", 0))
	case "QuarterWavePlate":
		c = NewQuarterWavePlate(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "fastAxisAngleRad", 0))
	case "BeamSplitter":
		if rawBool(raw, "polarizing", false) {
			c = NewPolarizingBeamSplitter(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "pbsUnpolarizedReflectivity", 0.5))
		} else {
			c = NewBeamSplitter(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "splitRatio", 0.5))
		}
	case "WollastonPrism":
		c = NewWollastonPrism(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "splitAngleRad", 0.1),
			rawFloat(raw, "ordinaryAxisAngleRad", 0))
	case "FaradayRotator":
		c = NewFaradayRotator(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "rotationAngleRad", 0),
			rawFloat(raw, "insertionLoss", 0.95))
	case "FaradayIsolator":
		c = NewFaradayIsolator(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "forwardTransmission", 0.95))

	case "DielectricBlock":
		glassName := rawString(raw, "glassName", "")
		if glassName != "" {
			if blk, ok := NewDielectricBlockByGlassName(id, pos, angle, rawFloat(raw, "width", 100),
				rawFloat(raw, "height", 100), glassName); ok {
				c = blk
				break
			}
		}
		c = NewDielectricBlock(id, pos, angle, rawFloat(raw, "width", 100), rawFloat(raw, "height", 100),
			rawFloat(raw, "n0", 1.5), rawFloat(raw, "b", 0), rawFloat(raw, "absorption", 0))
	case "Prism":
		c = NewPrism(id, pos, angle, rawFloat(raw, "size", 50), rawFloat(raw, "apexAngleRad", math.Pi/3),
			rawFloat(raw, "n0", 1.5), rawFloat(raw, "b", 0), rawFloat(raw, "absorption", 0))
	case "DiffractionGrating":
		c = NewDiffractionGrating(id, pos, angle, rawFloat(raw, "aperture", 50), rawFloat(raw, "grooveSpacingUm", 1),
			rawUint32(raw, "maxOrder", 2))

	case "Aperture":
		c = NewAperture(id, pos, angle, rawFloat(raw, "aperture", 50), 2)
	case "Screen":
		c = NewScreen(id, pos, angle, rawFloat(raw, "aperture", 100), int(rawUint32(raw, "binCount", 200)))
	case "Photodiode":
		c = NewPhotodiode(id, pos, angle, rawFloat(raw, "aperture", 20))
	case "CCDCamera":
		c = NewCCDCamera(id, pos, angle, rawFloat(raw, "aperture", 100), int(rawUint32(raw, "binCount", 512)))
	case "Spectrometer":
		c = NewSpectrometer(id, pos, angle, rawFloat(raw, "aperture", 20), rawFloat(raw, "minNm", 380),
			rawFloat(raw, "maxNm", 780), int(rawUint32(raw, "binCount", 400)))
	case "PowerMeter":
		c = NewPowerMeter(id, pos, angle, rawFloat(raw, "aperture", 20))
	case "PolarizationAnalyzer":
		c = NewPolarizationAnalyzer(id, pos, angle, rawFloat(raw, "aperture", 20))

	case "OpticalFiber":
		outputPos := vec.New(rawFloat(raw, "outputPosX", env.X+50), rawFloat(raw, "outputPosY", env.Y))
		c = NewOpticalFiber(id, pos, angle, outputPos, rawFloat(raw, "outputAngleRad", 0),
			rawFloat(raw, "facetLength", 5), rawFloat(raw, "numericalAperture", 0.2),
			rawFloat(raw, "intrinsicEfficiency", 0.9), rawFloat(raw, "lengthKm", 1), rawFloat(raw, "lossPerKmDb", 0.2))
	case "AcoustoOpticModulator":
		c = NewAcoustoOpticModulator(id, pos, angle, rawFloat(raw, "aperture", 20),
			rawFloat(raw, "deflectionAmplitudeRad", 0.05), rawFloat(raw, "driveFrequencyHz", 1))
	case "ElectroOpticModulator":
		c = NewElectroOpticModulator(id, pos, angle, rawFloat(raw, "aperture", 20),
			rawFloat(raw, "rotationAmplitudeRad", 0.1), rawFloat(raw, "driveFrequencyHz", 1))
	case "VariableAttenuator":
		c = NewVariableAttenuator(id, pos, angle, rawFloat(raw, "aperture", 20),
			rawFloat(raw, "minTransmission", 0.1), rawFloat(raw, "driveFrequencyHz", 1))
	case "OpticalChopper":
		c = NewOpticalChopper(id, pos, angle, rawFloat(raw, "aperture", 20),
			rawFloat(raw, "driveFrequencyHz", 1), rawFloat(raw, "dutyCycle", 0.5))

	case "MagneticCoil":
		c = NewMagneticCoil(id, pos, angle, rawFloat(raw, "aperture", 20), rawFloat(raw, "fieldStrengthTesla", 0))
	case "CustomComponent":
		c = NewCustomComponent(id, pos, angle, rawFloat(raw, "aperture", 20))
	case "AtomicCell":
		c = NewAtomicCell(id, pos, angle, rawFloat(raw, "aperture", 20), rawFloat(raw, "resonanceNm", 780),
			rawFloat(raw, "linewidthNm", 0.01), rawFloat(raw, "peakAbsorption", 0.9))
	case "FabryPerotCavity":
		c = NewFabryPerotCavity(id, pos, angle, rawFloat(raw, "aperture", 20),
			rawFloat(raw, "mirrorReflectivity", 0.9), rawFloat(raw, "cavityLength", 0.01))

	default:
		return nil, fmt.Errorf("optics: unknown component type %q", env.Type)
	}

	applyLeftoverProperties(c, raw)
	if env.Label != "" {
		c.SetLabel(env.Label)
	}
	if env.Notes != "" {
		c.SetNotes(env.Notes)
	}
	c.SetSelected(env.Selected)
	return c, nil
}
