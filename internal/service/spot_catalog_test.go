package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSpotCatalog_JSON(t *testing.T) {
	path := writeCatalog(t, "spots.json", `{"kyoto":[{"name":"金閣寺","lat":35.03}]}`)
	data, err := NewSpotCatalog(path).Load()
	require.NoError(t, err)

	m, ok := data.(map[string]any)
	require.True(t, ok)
	list := m["kyoto"].([]any)
	assert.Equal(t, "金閣寺", list[0].(map[string]any)["name"])
}

func TestSpotCatalog_YAML(t *testing.T) {
	path := writeCatalog(t, "spots.yaml", "kyoto:\n  - name: 金閣寺\n    lat: 35.03\n")
	data, err := NewSpotCatalog(path).Load()
	require.NoError(t, err)

	m, ok := data.(map[string]any)
	require.True(t, ok)
	list := m["kyoto"].([]any)
	assert.Equal(t, 35.03, list[0].(map[string]any)["lat"])
}

func TestSpotCatalog_Errors(t *testing.T) {
	_, err := NewSpotCatalog(filepath.Join(t.TempDir(), "missing.json")).Load()
	assert.ErrorIs(t, err, ErrCatalogNotFound)

	_, err = NewSpotCatalog(writeCatalog(t, "bad.json", `{"kyoto": [`)).Load()
	assert.ErrorIs(t, err, ErrCatalogInvalid)

	_, err = NewSpotCatalog(writeCatalog(t, "empty.yaml", "")).Load()
	assert.ErrorIs(t, err, ErrCatalogInvalid)
}

func TestSpotCatalog_ReloadsOnChange(t *testing.T) {
	path := writeCatalog(t, "spots.json", `{"v":1}`)
	catalog := NewSpotCatalog(path)

	data, err := catalog.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(1), data.(map[string]any)["v"])

	require.NoError(t, os.WriteFile(path, []byte(`{"v":22}`), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	data, err = catalog.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(22), data.(map[string]any)["v"])
}
