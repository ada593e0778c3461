package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultFilePath is used when FileStore is given no path.
const DefaultFilePath = "data/last_city.yaml"

type fileContents struct {
	LastCity string `yaml:"last_city"`
}

// FileStore keeps the last city in a small YAML file. Writes go to a temp
// file first and are renamed into place.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) LastCity(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("history: read %s: %w", s.path, err)
	}
	var fc fileContents
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return "", false, fmt.Errorf("history: parse %s: %w", s.path, err)
	}
	if fc.LastCity == "" {
		return "", false, nil
	}
	return fc.LastCity, true, nil
}

func (s *FileStore) SaveLastCity(ctx context.Context, city string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	city, err := cleanCity(city)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(fileContents{LastCity: city})
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("history: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".last_city-*")
	if err != nil {
		return fmt.Errorf("history: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("history: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("history: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("history: rename: %w", err)
	}
	return nil
}

// ClearLastCity removes the file.
func (s *FileStore) ClearLastCity(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("history: remove %s: %w", s.path, err)
	}
	return nil
}
