// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"testing"
)

func TestFileProjectStoreSaveLoadConfig(t *testing.T) {
	store := NewFileProjectStore(t.TempDir())
	cfg := ProjectConfig{ID: "p-1", Name: "Bench", StorageMode: StorageLocalFolder, CreatedAt: "2026-01-01"}

	if err := store.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}
	got, err := store.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("got config %+v, want %+v", got, cfg)
	}
}

func TestFileProjectStoreLoadConfigMissingIsError(t *testing.T) {
	store := NewFileProjectStore(t.TempDir())
	if _, err := store.LoadConfig(); err == nil {
		t.Error("expected an error loading a config that was never saved")
	}
}

func TestFileProjectStoreSceneRoundTrip(t *testing.T) {
	store := NewFileProjectStore(t.TempDir())
	scene := buildTestScene()

	if err := store.SaveScene("bench", scene, SceneMetadata{CreatedAt: "2026-01-01"}); err != nil {
		t.Fatal(err)
	}

	names, err := store.ListScenes()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "bench" {
		t.Fatalf("got scene list %v, want [bench]", names)
	}

	restored, metadata, err := store.LoadScene("bench")
	if err != nil {
		t.Fatal(err)
	}
	if !areEquivalent(scene, restored) {
		t.Error("restored scene not equivalent to original")
	}
	if metadata.CreatedAt != "2026-01-01" {
		t.Errorf("got createdAt %q, want %q", metadata.CreatedAt, "2026-01-01")
	}
	if restored.Name() != "bench" {
		t.Errorf("got restored scene name %q, want %q", restored.Name(), "bench")
	}

	if err := store.DeleteScene("bench"); err != nil {
		t.Fatal(err)
	}
	names, err = store.ListScenes()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("got scene list %v after delete, want empty", names)
	}
}

func TestFileProjectStoreDeleteMissingSceneIsNotAnError(t *testing.T) {
	store := NewFileProjectStore(t.TempDir())
	if err := store.DeleteScene("nope"); err != nil {
		t.Errorf("deleting an absent scene should not error, got %v", err)
	}
}

func TestFileProjectStoreListScenesIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewFileProjectStore(dir)
	scene := buildTestScene()
	if err := store.SaveScene("bench", scene, SceneMetadata{}); err != nil {
		t.Fatal(err)
	}
	if err := NewFileProjectStore(dir + "/nested").SaveScene("nested-scene", scene, SceneMetadata{}); err != nil {
		t.Fatal(err)
	}

	names, err := store.ListScenes()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "bench" {
		t.Errorf("got %v, want only the top-level scene", names)
	}
}

func TestMemProjectStoreSceneRoundTrip(t *testing.T) {
	store := NewMemProjectStore(ProjectConfig{ID: "p-1", Name: "Bench"})
	scene := buildTestScene()

	if err := store.SaveScene("bench", scene, SceneMetadata{CreatedAt: "2026-01-01"}); err != nil {
		t.Fatal(err)
	}
	restored, metadata, err := store.LoadScene("bench")
	if err != nil {
		t.Fatal(err)
	}
	if !areEquivalent(scene, restored) {
		t.Error("restored scene not equivalent to original")
	}
	if metadata.CreatedAt != "2026-01-01" {
		t.Errorf("got createdAt %q, want %q", metadata.CreatedAt, "2026-01-01")
	}

	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Bench" {
		t.Errorf("got config name %q, want %q", cfg.Name, "Bench")
	}

	if err := store.DeleteScene("bench"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.LoadScene("bench"); err == nil {
		t.Error("expected an error loading a deleted scene")
	}
}

func TestMemProjectStoreLoadSceneMissingIsError(t *testing.T) {
	store := NewMemProjectStore(ProjectConfig{})
	if _, _, err := store.LoadScene("absent"); err == nil {
		t.Error("expected an error loading a scene that was never saved")
	}
}

func TestTouchRecentProjectMovesToFrontAndDedupes(t *testing.T) {
	kv := NewMemKVStore()
	TouchRecentProject(kv, RecentProjectEntry{ID: "a", Name: "Alpha"})
	TouchRecentProject(kv, RecentProjectEntry{ID: "b", Name: "Beta"})
	TouchRecentProject(kv, RecentProjectEntry{ID: "a", Name: "Alpha (renamed)"})

	entries := LoadRecentProjects(kv)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (no duplicate for repeated ID)", len(entries))
	}
	if entries[0].ID != "a" || entries[0].Name != "Alpha (renamed)" {
		t.Errorf("got front entry %+v, want the re-touched, updated entry for id a", entries[0])
	}
	if entries[1].ID != "b" {
		t.Errorf("got second entry %+v, want id b", entries[1])
	}
}

func TestTouchRecentProjectTruncatesToCap(t *testing.T) {
	kv := NewMemKVStore()
	for i := 0; i < recentProjectsCap+3; i++ {
		TouchRecentProject(kv, RecentProjectEntry{ID: string(rune('a' + i))})
	}
	entries := LoadRecentProjects(kv)
	if len(entries) != recentProjectsCap {
		t.Fatalf("got %d entries, want the cap of %d", len(entries), recentProjectsCap)
	}
	// Most recently touched entries are the highest letters, and should
	// occupy the front of the list.
	want := 'a' + recentProjectsCap + 2
	if entries[0].ID != string(rune(want)) {
		t.Errorf("got front entry id %q, want %q", entries[0].ID, string(rune(want)))
	}
}

func TestRemoveRecentProject(t *testing.T) {
	kv := NewMemKVStore()
	TouchRecentProject(kv, RecentProjectEntry{ID: "a"})
	TouchRecentProject(kv, RecentProjectEntry{ID: "b"})

	RemoveRecentProject(kv, "a")

	entries := LoadRecentProjects(kv)
	if len(entries) != 1 || entries[0].ID != "b" {
		t.Errorf("got %v after removing id a, want only id b", entries)
	}
}

func TestLoadRecentProjectsAbsentKeyReturnsEmpty(t *testing.T) {
	kv := NewMemKVStore()
	if entries := LoadRecentProjects(kv); entries != nil {
		t.Errorf("got %v for an unset registry, want nil", entries)
	}
}

func TestMemKVStoreGetSet(t *testing.T) {
	kv := NewMemKVStore()
	if _, ok := kv.Get("missing"); ok {
		t.Error("got ok=true for a key never set")
	}
	kv.Set("k", []byte("v"))
	v, ok := kv.Get("k")
	if !ok || string(v) != "v" {
		t.Errorf("got (%q, %v), want (\"v\", true)", v, ok)
	}
}
