package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/avolkov/seabattle/game/engine"
)

var ErrModeNotFound = errors.New("mode not found")

// DefaultModeID is used when a session is created without an explicit mode.
const DefaultModeID = "classic"

// Manager resolves mode ids to validated mode configurations. Built-in
// modes are always available; a mode directory, when set, contributes
// additional JSON-defined modes which are cached after first load.
type Manager struct {
	modeDir string
	modes   map[string]*engine.ModeConfig
	mu      sync.RWMutex
}

// NewManager creates a mode manager. A missing or empty modeDir serves
// the built-in modes only.
func NewManager(modeDir string) (*Manager, error) {
	if modeDir != "" {
		if _, err := os.Stat(modeDir); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("mode directory %s: %w", modeDir, err)
			}
			modeDir = ""
		}
	}

	m := &Manager{
		modeDir: modeDir,
		modes:   make(map[string]*engine.ModeConfig),
	}
	for id, mode := range engine.BuiltinModes() {
		m.modes[id] = mode
	}
	return m, nil
}

// GetDefault returns the default mode.
func (m *Manager) GetDefault() *engine.ModeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modes[DefaultModeID]
}

// LoadMode resolves a mode by id, consulting built-ins first and then
// the mode directory.
func (m *Manager) LoadMode(id string) (*engine.ModeConfig, error) {
	m.mu.RLock()
	if mode, ok := m.modes[id]; ok {
		m.mu.RUnlock()
		return mode, nil
	}
	m.mu.RUnlock()

	if m.modeDir == "" {
		return nil, fmt.Errorf("%w: %s", ErrModeNotFound, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check after acquiring the write lock.
	if mode, ok := m.modes[id]; ok {
		return mode, nil
	}

	mode, err := loadModeFile(filepath.Join(m.modeDir, id+".json"))
	if err != nil {
		return nil, err
	}
	if mode.ID != id {
		return nil, fmt.Errorf("%w: file %s.json declares id %q", engine.ErrInvalidMode, id, mode.ID)
	}

	m.modes[id] = mode
	return mode, nil
}

// ListModes returns all known modes, built-ins plus any valid mode files,
// sorted by id. Invalid files are skipped.
func (m *Manager) ListModes() ([]*engine.ModeConfig, error) {
	m.mu.RLock()
	ids := make(map[string]bool, len(m.modes))
	for id := range m.modes {
		ids[id] = true
	}
	m.mu.RUnlock()

	if m.modeDir != "" {
		entries, err := os.ReadDir(m.modeDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read mode directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), ".json")
			if _, err := m.LoadMode(id); err == nil {
				ids[id] = true
			}
		}
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	m.mu.RLock()
	defer m.mu.RUnlock()
	modes := make([]*engine.ModeConfig, 0, len(sorted))
	for _, id := range sorted {
		if mode, ok := m.modes[id]; ok {
			modes = append(modes, mode)
		}
	}
	return modes, nil
}

// loadModeFile reads and validates a single mode definition.
func loadModeFile(path string) (*engine.ModeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModeNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read mode file: %w", err)
	}

	var mode engine.ModeConfig
	if err := json.Unmarshal(data, &mode); err != nil {
		return nil, fmt.Errorf("failed to parse mode file %s: %w", filepath.Base(path), err)
	}
	if err := engine.ValidateModeConfig(&mode); err != nil {
		return nil, err
	}
	return &mode, nil
}
