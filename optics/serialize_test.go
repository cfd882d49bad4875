// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"
	"strings"
	"testing"

	"github.com/galvanized/opticslab/vec"
)

func buildTestScene() *Scene {
	s := NewScene("Bench")
	laser := NewLaserSource(s.NextID("LaserSource"), vec.New(-100, 0), 0)
	if err := laser.SetProperty("polarization", "linear"); err != nil {
		panic(err)
	}
	if err := laser.SetProperty("polarizationAngleRad", 0.7); err != nil {
		panic(err)
	}
	s.Add(laser)

	mirror := NewMirror(s.NextID("Mirror"), vec.New(0, 0), math.Pi/4, 60)
	s.Add(mirror)

	ap := NewAperture(s.NextID("Aperture"), vec.New(30, 0), 0, 50, 5)
	if err := ap.SetProperty("slits", []map[string]any{{"min": -10.0, "max": -5.0}, {"min": 5.0, "max": 10.0}}); err != nil {
		panic(err)
	}
	s.Add(ap)

	screen := NewScreen(s.NextID("Screen"), vec.New(100, 0), 0, 80, 64)
	s.Add(screen)

	s.SetSettings(SceneSettings{
		Mode: ModeRayTrace, MaxRays: 40, MaxBounces: 12, MinIntensity: 0.02,
		ShowGrid: false, ShowArrows: true, ArrowSpeed: 2, FastWhiteLightMode: false,
	})
	return s
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	s := buildTestScene()

	data, err := SerializeScene(s, SceneMetadata{CreatedAt: "2026-01-01", UpdatedAt: "2026-01-02"})
	if err != nil {
		t.Fatal(err)
	}

	restored, metadata, warnings, err := DeserializeScene(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if !areEquivalent(s, restored) {
		t.Fatalf("restored scene not equivalent to original")
	}
	if metadata.CreatedAt != "2026-01-01" {
		t.Errorf("got createdAt %q want %q", metadata.CreatedAt, "2026-01-01")
	}

	restoredLaser := restored.Components()[0]
	if d, _ := restoredLaser.GetProperties().Get("polarization"); d.Value != "linear" {
		t.Errorf("polarization did not round-trip: got %v", d.Value)
	}

	restoredAperture := restored.Components()[2].(*Aperture)
	if len(restoredAperture.slits) != 2 {
		t.Errorf("got %d slits want 2 after round-trip", len(restoredAperture.slits))
	}
}

func TestSerializeScenePrettyPrinted(t *testing.T) {
	s := buildTestScene()
	data, err := SerializeScene(s, SceneMetadata{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"") {
		t.Errorf("expected 2-space indented JSON, got: %s", data)
	}
}

func TestDeserializeSceneSkipsUnknownComponentType(t *testing.T) {
	data := []byte(`{
		"version": "2.0.0",
		"name": "test",
		"components": [
			{"type": "Mirror", "id": "m-1", "x": 0, "y": 0, "angle": 0, "_raw": {"length": 40, "coated": false}},
			{"type": "FutureGizmo", "id": "g-1", "x": 1, "y": 1, "angle": 0, "_raw": {}}
		],
		"settings": {"mode": "ray_trace", "maxRays": 10, "maxBounces": 5, "minIntensity": 0.01,
			"showGrid": true, "showArrows": true, "arrowSpeed": 1, "fastWhiteLightMode": true},
		"metadata": {}
	}`)

	scene, _, warnings, err := DeserializeScene(data)
	if err != nil {
		t.Fatal(err)
	}
	if scene.Len() != 1 {
		t.Fatalf("got %d components want 1 (unknown type skipped)", scene.Len())
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings want 1", len(warnings))
	}
}

func TestDeserializeSceneRejectsMalformedJSON(t *testing.T) {
	if _, _, _, err := DeserializeScene([]byte("not json")); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestMigrateSceneDocumentInjectsDefaultsFrom1_0(t *testing.T) {
	data := []byte(`{"version": "1.0", "components": []}`)
	scene, _, _, err := DeserializeScene(data)
	if err != nil {
		t.Fatal(err)
	}
	if scene.Settings().Mode != ModeRayTrace {
		t.Errorf("got mode %q want default %q after 1.0 migration", scene.Settings().Mode, ModeRayTrace)
	}
	if scene.Name() != "Untitled Scene" {
		t.Errorf("got name %q want synthesized default", scene.Name())
	}
}

func TestMigrateSceneDocumentStandardizesPositionKeys(t *testing.T) {
	data := []byte(`{
		"version": "1.1",
		"components": [
			{"type": "Mirror", "id": "m-1", "posX": 5, "posY": 6, "rotation": 0.25, "_raw": {"length": 30, "coated": false}}
		],
		"settings": {"mode": "ray_trace", "maxRays": 10, "maxBounces": 5, "minIntensity": 0.01,
			"showGrid": true, "showArrows": true, "arrowSpeed": 1, "fastWhiteLightMode": true},
		"metadata": {}
	}`)
	scene, _, _, err := DeserializeScene(data)
	if err != nil {
		t.Fatal(err)
	}
	if scene.Len() != 1 {
		t.Fatalf("got %d components want 1", scene.Len())
	}
	got := scene.Components()[0]
	if !got.Pos().Eq(vec.New(5, 6)) || got.AngleRad() != 0.25 {
		t.Errorf("got pos=%v angle=%v want pos=(5,6) angle=0.25", got.Pos(), got.AngleRad())
	}
}

func TestSanitizeForJSONEncodesInfinityAsNull(t *testing.T) {
	raw := map[string]any{"focalLength": math.Inf(1), "width": 10.0}
	sanitized := sanitizeForJSON(raw).(map[string]any)
	if sanitized["focalLength"] != nil {
		t.Errorf("got %v want nil for +Inf", sanitized["focalLength"])
	}
	if sanitized["width"] != 10.0 {
		t.Errorf("got %v want 10.0 unchanged", sanitized["width"])
	}
}

func TestDesanitizeValueRestoresNullAsInfinity(t *testing.T) {
	restored := desanitizeMap(map[string]any{"focalLength": nil, "width": 10.0})
	got, ok := restored["focalLength"].(float64)
	if !ok || !math.IsInf(got, 1) {
		t.Errorf("got %v want +Inf", restored["focalLength"])
	}
}

func TestAreEquivalentDetectsDifferences(t *testing.T) {
	a := buildTestScene()
	b := buildTestScene()
	if !areEquivalent(a, b) {
		t.Fatal("two freshly built identical scenes should be equivalent")
	}

	b.Components()[1].SetPos(vec.New(999, 999))
	if areEquivalent(a, b) {
		t.Fatal("scenes with a moved component should not be equivalent")
	}
}
