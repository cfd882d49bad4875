// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// project.go is the project/scene persistence layer: a small
// lookup interface with one disk-backed and one alternate
// implementation behind a single contract, generalized here to
// ProjectStore's two backends, local
// folder and in-memory/browser-storage fallback.

// recentProjectsCap bounds the recent-projects registry.
const recentProjectsCap = 5

// StorageMode names where a project's files live.
type StorageMode string

const (
	StorageLocalFolder     StorageMode = "local_folder"
	StorageBrowserFallback StorageMode = "browser_storage"
)

// ProjectConfig is the contents of a project's ".opticslab.json".
type ProjectConfig struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	StorageMode         StorageMode `json:"storageMode"`
	CreatedAt           string      `json:"createdAt"`
	UpdatedAt           string      `json:"updatedAt"`
	GithubURL           string      `json:"githubUrl,omitempty"`
	SyncCommandTemplate string      `json:"syncCommandTemplate,omitempty"`
}

// RecentProjectEntry is one row of the recent-projects registry.
type RecentProjectEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	StorageMode StorageMode `json:"storageMode"`
	Path        string      `json:"path,omitempty"`
	UpdatedAt   string      `json:"updatedAt"`
}

// ProjectStore is the persistence contract a project binds to: a
// directory on disk in local-folder mode, or an in-memory map standing
// in for browser storage. Scene names are file-stem-equivalent: no
// extension, no path separators.
type ProjectStore interface {
	LoadConfig() (ProjectConfig, error)
	SaveConfig(cfg ProjectConfig) error

	// ListScenes returns every scene name currently stored, in no
	// particular order.
	ListScenes() ([]string, error)
	LoadScene(name string) (*Scene, SceneMetadata, error)
	SaveScene(name string, scene *Scene, metadata SceneMetadata) error
	DeleteScene(name string) error
}

// ===========================================================================
// FileProjectStore: local-folder mode.

// FileProjectStore persists one project as a directory containing
// ".opticslab.json" plus zero or more "<name>.scene.json" siblings.
// Subdirectories are ignored, matching the documented core/editor
// split.
type FileProjectStore struct {
	Dir string
}

// NewFileProjectStore binds a store to dir. dir need not exist yet;
// SaveConfig creates it.
func NewFileProjectStore(dir string) *FileProjectStore {
	return &FileProjectStore{Dir: dir}
}

const projectConfigFileName = ".opticslab.json"

func (f *FileProjectStore) configPath() string {
	return filepath.Join(f.Dir, projectConfigFileName)
}

func (f *FileProjectStore) scenePath(name string) string {
	return filepath.Join(f.Dir, name+".scene.json")
}

// LoadConfig reads and parses the project's ".opticslab.json".
func (f *FileProjectStore) LoadConfig() (ProjectConfig, error) {
	data, err := os.ReadFile(f.configPath())
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("optics: load project config: %w", err)
	}
	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ProjectConfig{}, fmt.Errorf("optics: parse project config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to the project directory, creating it if
// necessary.
func (f *FileProjectStore) SaveConfig(cfg ProjectConfig) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("optics: create project directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.configPath(), data, 0o644); err != nil {
		return fmt.Errorf("optics: save project config: %w", err)
	}
	return nil
}

// ListScenes returns the stem of every "*.scene.json" file directly in
// the project directory (subdirectories ignored).
func (f *FileProjectStore) ListScenes() ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("optics: list scenes: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		const suffix = ".scene.json"
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, strings.TrimSuffix(e.Name(), suffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadScene reads and deserializes "<name>.scene.json".
func (f *FileProjectStore) LoadScene(name string) (*Scene, SceneMetadata, error) {
	data, err := os.ReadFile(f.scenePath(name))
	if err != nil {
		return nil, SceneMetadata{}, fmt.Errorf("optics: load scene %q: %w", name, err)
	}
	scene, metadata, _, err := DeserializeScene(data)
	if err != nil {
		return nil, SceneMetadata{}, fmt.Errorf("optics: load scene %q: %w", name, err)
	}
	scene.SetName(name)
	return scene, metadata, nil
}

// SaveScene serializes scene and writes it to "<name>.scene.json".
func (f *FileProjectStore) SaveScene(name string, scene *Scene, metadata SceneMetadata) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("optics: create project directory: %w", err)
	}
	data, err := SerializeScene(scene, metadata)
	if err != nil {
		return fmt.Errorf("optics: save scene %q: %w", name, err)
	}
	if err := os.WriteFile(f.scenePath(name), data, 0o644); err != nil {
		return fmt.Errorf("optics: save scene %q: %w", name, err)
	}
	return nil
}

// DeleteScene removes "<name>.scene.json". Deleting an absent scene is
// not an error.
func (f *FileProjectStore) DeleteScene(name string) error {
	if err := os.Remove(f.scenePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("optics: delete scene %q: %w", name, err)
	}
	return nil
}

// ===========================================================================
// MemProjectStore: browser-storage fallback, modeled as a pair of
// in-memory maps standing in for "opticslab_projects" and
// "opticslab_project_<id>_scene_<id>".

// MemProjectStore is an in-memory ProjectStore, used both as the
// browser-storage fallback's backing model and in tests that need a
// ProjectStore without touching disk.
type MemProjectStore struct {
	cfg    ProjectConfig
	scenes map[string]memScene
}

type memScene struct {
	data     []byte
	metadata SceneMetadata
}

// NewMemProjectStore returns an empty store with the given initial
// config.
func NewMemProjectStore(cfg ProjectConfig) *MemProjectStore {
	return &MemProjectStore{cfg: cfg, scenes: map[string]memScene{}}
}

func (m *MemProjectStore) LoadConfig() (ProjectConfig, error) { return m.cfg, nil }

func (m *MemProjectStore) SaveConfig(cfg ProjectConfig) error {
	m.cfg = cfg
	return nil
}

func (m *MemProjectStore) ListScenes() ([]string, error) {
	names := make([]string, 0, len(m.scenes))
	for name := range m.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemProjectStore) LoadScene(name string) (*Scene, SceneMetadata, error) {
	entry, ok := m.scenes[name]
	if !ok {
		return nil, SceneMetadata{}, fmt.Errorf("optics: load scene %q: not found", name)
	}
	scene, metadata, _, err := DeserializeScene(entry.data)
	if err != nil {
		return nil, SceneMetadata{}, fmt.Errorf("optics: load scene %q: %w", name, err)
	}
	scene.SetName(name)
	return scene, metadata, nil
}

func (m *MemProjectStore) SaveScene(name string, scene *Scene, metadata SceneMetadata) error {
	data, err := SerializeScene(scene, metadata)
	if err != nil {
		return fmt.Errorf("optics: save scene %q: %w", name, err)
	}
	m.scenes[name] = memScene{data: data, metadata: metadata}
	return nil
}

func (m *MemProjectStore) DeleteScene(name string) error {
	delete(m.scenes, name)
	return nil
}

// ===========================================================================
// Recent-projects registry: a capped, most-recently-used-ordered
// list backed by a small key-value contract so the core stays agnostic
// to whatever the editor uses underneath (browser localStorage, a
// desktop preferences file, ...).

// KVStore is the minimal key-value contract the recent-projects
// registry persists through.
type KVStore interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte)
}

// MemKVStore is an in-memory KVStore, used by tests and as the default
// when no editor-backed store is wired in.
type MemKVStore struct {
	values map[string][]byte
}

// NewMemKVStore returns an empty in-memory KVStore.
func NewMemKVStore() *MemKVStore { return &MemKVStore{values: map[string][]byte{}} }

func (s *MemKVStore) Get(key string) ([]byte, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *MemKVStore) Set(key string, value []byte) {
	s.values[key] = value
}

// recentProjectsKey is the KVStore key the registry is stored under.
const recentProjectsKey = "opticslab_recent_projects"

// LoadRecentProjects reads the recent-projects list from kv, newest
// first. An absent or malformed entry returns an empty list rather than
// an error, since the registry is a convenience cache.
func LoadRecentProjects(kv KVStore) []RecentProjectEntry {
	raw, ok := kv.Get(recentProjectsKey)
	if !ok {
		return nil
	}
	var entries []RecentProjectEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

// TouchRecentProject moves entry to the front of kv's recent-projects
// list (inserting it if absent), truncating to recentProjectsCap.
func TouchRecentProject(kv KVStore, entry RecentProjectEntry) {
	entries := LoadRecentProjects(kv)
	filtered := entries[:0]
	for _, e := range entries {
		if e.ID != entry.ID {
			filtered = append(filtered, e)
		}
	}
	entries = append([]RecentProjectEntry{entry}, filtered...)
	if len(entries) > recentProjectsCap {
		entries = entries[:recentProjectsCap]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	kv.Set(recentProjectsKey, data)
}

// RemoveRecentProject drops id from kv's recent-projects list, if
// present.
func RemoveRecentProject(kv KVStore, id string) {
	entries := LoadRecentProjects(kv)
	filtered := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	data, err := json.Marshal(filtered)
	if err != nil {
		return
	}
	kv.Set(recentProjectsKey, data)
}
