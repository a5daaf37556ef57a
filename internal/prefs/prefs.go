// Package prefs persists lightweight user preferences to
// .shield/preferences.json. Only app preferences live here — chat data and
// analysis results are never written to disk.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Version is the current schema version for preferences.json.
const Version = "1.0"

// Preferences is the persisted preference set.
type Preferences struct {
	Version string `json:"version"`

	// LastContractType is preselected in the upload view on next launch.
	LastContractType string `json:"last_contract_type,omitempty"`

	// LastUserName is the display name from the previous session.
	LastUserName string `json:"last_user_name,omitempty"`

	// LastUploadDir is where the file picker opens.
	LastUploadDir string `json:"last_upload_dir,omitempty"`

	// Theme overrides the config theme when set.
	Theme string `json:"theme,omitempty"`

	// UploadCount tracks how many contracts this user has analyzed locally.
	UploadCount int `json:"upload_count"`

	// LastActiveAt is the previous session's close time, RFC 3339.
	LastActiveAt string `json:"last_active_at,omitempty"`
}

// Manager handles loading and saving preferences.
type Manager struct {
	mu    sync.RWMutex
	path  string
	prefs *Preferences
}

// NewManager creates a preferences manager for the given workspace.
func NewManager(workspace string) *Manager {
	return &Manager{
		path: filepath.Join(workspace, ".shield", "preferences.json"),
	}
}

func defaults() *Preferences {
	return &Preferences{
		Version:          Version,
		LastContractType: "general",
	}
}

// Load reads preferences from disk, creating defaults if none exist.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.prefs = defaults()
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if p.Version == "" {
		p.Version = Version
	}
	m.prefs = &p
	return nil
}

// Save writes preferences to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prefs == nil {
		m.prefs = defaults()
	}
	m.prefs.LastActiveAt = time.Now().UTC().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(m.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Get returns a copy of the current preferences.
func (m *Manager) Get() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.prefs == nil {
		return *defaults()
	}
	return *m.prefs
}

// Update applies fn to the preferences under the lock.
func (m *Manager) Update(fn func(*Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		m.prefs = defaults()
	}
	fn(m.prefs)
}
