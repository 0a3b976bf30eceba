// Package leads persists consented leads as one JSON document per lead.
package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/logging"
)

var (
	// ErrNotFound is returned by Load when no lead exists at the location.
	ErrNotFound = errors.New("lead not found")
	// ErrCorrupt is returned by Load when the stored document cannot be decoded.
	ErrCorrupt = errors.New("lead record corrupt")
)

const filePrefix = "lead_"

// Store writes lead records into a directory.
type Store struct {
	dir string
	log *logging.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string, log *logging.Logger) *Store {
	return &Store{dir: dir, log: log.Sub("leads")}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save writes lead to a new file named after its capture time and returns
// the file path. Existing files are never overwritten.
func (s *Store) Save(lead domain.Lead) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("creating lead dir: %w", err)
	}

	data, err := json.MarshalIndent(lead, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding lead: %w", err)
	}

	name := fmt.Sprintf("%s%s_%s.json", filePrefix,
		lead.CapturedAt.Format("20060102_150405"), strings.ToLower(ulid.Make().String()))
	path := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, ".lead-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing lead: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing lead file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming lead file: %w", err)
	}

	s.log.Info().Str("path", path).Str("email", lead.Contact.Email).Msg("lead saved")
	return path, nil
}

// Load reads the lead stored at path. A bare file name is resolved
// relative to the store directory.
func (s *Store) Load(path string) (domain.Lead, error) {
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(s.dir, path)
	}

	var lead domain.Lead
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lead, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return lead, fmt.Errorf("reading lead: %w", err)
	}
	if err := json.Unmarshal(data, &lead); err != nil {
		return lead, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return lead, nil
}

// List returns the paths of all stored leads, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
