package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/eventspan/internal/event"
)

// DefaultDataDir is used when no data directory is configured
const DefaultDataDir = "~/.local/share/eventspan"

const cacheFile = "cache.json"

// CacheFile is the on-disk layout of cache.json
type CacheFile struct {
	UpdatedAt string                  `json:"updated_at"`
	Entries   map[string]event.Parsed `json:"entries"`
}

// Storage handles persistence of the scrape cache
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if needed.
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// CachePath returns the path of the cache file
func (s *Storage) CachePath() string {
	return filepath.Join(s.dataDir, cacheFile)
}

// LoadCache reads the cache file. A missing file is an empty cache.
func (s *Storage) LoadCache() (map[string]event.Parsed, error) {
	data, err := os.ReadFile(s.CachePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]event.Parsed{}, nil
		}
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var file CacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing cache: %w", err)
	}
	if file.Entries == nil {
		file.Entries = make(map[string]event.Parsed)
	}
	return file.Entries, nil
}

// SaveCache writes entries atomically, replacing the previous file.
func (s *Storage) SaveCache(entries map[string]event.Parsed) error {
	file := CacheFile{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:   entries,
	}
	if file.Entries == nil {
		file.Entries = map[string]event.Parsed{}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, "cache-*.json")
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.CachePath()); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// ClearCache removes the cache file. Clearing a missing cache is not an error.
func (s *Storage) ClearCache() error {
	if err := os.Remove(s.CachePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cache: %w", err)
	}
	return nil
}
