package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrCatalogNotFound = errors.New("spot catalog not found")
	ErrCatalogInvalid  = errors.New("spot catalog invalid")
)

// SpotCatalog sirve el fichero estático de spots y lo recarga cuando cambia en disco.
type SpotCatalog struct {
	path string

	mu      sync.Mutex
	data    any
	modTime time.Time
	size    int64
}

func NewSpotCatalog(path string) *SpotCatalog {
	return &SpotCatalog{path: path}
}

// Load devuelve el contenido del catálogo, JSON o YAML según la extensión.
func (c *SpotCatalog) Load() (any, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCatalogNotFound
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data != nil && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return c.data, nil
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCatalogNotFound
		}
		return nil, err
	}
	data, err := decodeCatalog(c.path, raw)
	if err != nil {
		return nil, err
	}
	c.data = data
	c.modTime = info.ModTime()
	c.size = info.Size()
	return data, nil
}

func decodeCatalog(path string, raw []byte) (any, error) {
	var data any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogInvalid, err)
		}
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogInvalid, err)
		}
	}
	if data == nil {
		return nil, fmt.Errorf("%w: empty document", ErrCatalogInvalid)
	}
	return data, nil
}
