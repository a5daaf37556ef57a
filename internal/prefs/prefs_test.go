package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileCreatesDefaults(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load())

	p := m.Get()
	assert.Equal(t, Version, p.Version)
	assert.Equal(t, "general", p.LastContractType)
	assert.Zero(t, p.UploadCount)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ws := t.TempDir()

	m := NewManager(ws)
	require.NoError(t, m.Load())
	m.Update(func(p *Preferences) {
		p.LastContractType = "lease"
		p.LastUserName = "Dana"
		p.UploadCount = 3
	})
	require.NoError(t, m.Save())

	m2 := NewManager(ws)
	require.NoError(t, m2.Load())
	p := m2.Get()
	assert.Equal(t, "lease", p.LastContractType)
	assert.Equal(t, "Dana", p.LastUserName)
	assert.Equal(t, 3, p.UploadCount)
	assert.NotEmpty(t, p.LastActiveAt)
}

func TestLoad_CorruptFile(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".shield"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".shield", "preferences.json"), []byte("{not json"), 0644))

	m := NewManager(ws)
	assert.Error(t, m.Load())
}
