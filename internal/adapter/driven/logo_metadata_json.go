package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/alorle/addon-playlist/internal/logo"
)

// MetadataFileName is the name of the metadata table inside the logo cache directory.
const MetadataFileName = "metadata.json"

// logoEntryDTO is the on-disk shape of a cache entry, shared by the JSON and
// BoltDB repositories. Timestamps are Unix milliseconds.
type logoEntryDTO struct {
	Key       string  `json:"key"`
	URL       string  `json:"url"`
	LocalPath *string `json:"localPath"`
	Source    string  `json:"source"`
	Timestamp int64   `json:"timestamp"`
}

func logoEntryToDTO(e logo.Entry) logoEntryDTO {
	dto := logoEntryDTO{
		Key:       e.Key,
		URL:       e.URL,
		Source:    string(e.Source),
		Timestamp: e.Timestamp.UnixMilli(),
	}
	if e.LocalPath != "" {
		p := e.LocalPath
		dto.LocalPath = &p
	}
	return dto
}

func dtoToLogoEntry(dto logoEntryDTO) (logo.Entry, error) {
	localPath := ""
	if dto.LocalPath != nil {
		localPath = *dto.LocalPath
	}
	return logo.NewEntry(dto.Key, dto.URL, localPath, logo.Source(dto.Source), time.UnixMilli(dto.Timestamp))
}

// LogoMetadataJSONRepository implements the LogoMetadataRepository port with a
// single JSON file holding the whole key → entry table. Every mutation rewrites
// the file through a temporary file and a rename, so readers never observe a
// partially written table.
type LogoMetadataJSONRepository struct {
	path string

	mu      sync.Mutex
	entries map[string]logoEntryDTO
}

// NewLogoMetadataJSONRepository opens the metadata table at path, creating the
// parent directory if needed. A missing file starts an empty table.
func NewLogoMetadataJSONRepository(path string) (*LogoMetadataJSONRepository, error) {
	if path == "" {
		return nil, errors.New("metadata path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}

	r := &LogoMetadataJSONRepository{
		path:    path,
		entries: make(map[string]logoEntryDTO),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *LogoMetadataJSONRepository) load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading metadata file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &r.entries); err != nil {
		return fmt.Errorf("parsing metadata file: %w", err)
	}
	return nil
}

// persist must be called with r.mu held.
func (r *LogoMetadataJSONRepository) persist() error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return writeFileAtomic(r.path, data)
}

// Get retrieves the entry stored under key.
func (r *LogoMetadataJSONRepository) Get(ctx context.Context, key string) (logo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return logo.Entry{}, err
	}

	r.mu.Lock()
	dto, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return logo.Entry{}, logo.ErrEntryNotFound
	}
	return dtoToLogoEntry(dto)
}

// Put replaces the entry for e.Key and persists the table.
func (r *LogoMetadataJSONRepository) Put(ctx context.Context, e logo.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[e.Key] = logoEntryToDTO(e)
	return r.persist()
}

// Delete removes the entry for key and persists the table.
func (r *LogoMetadataJSONRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		return nil
	}
	delete(r.entries, key)
	return r.persist()
}

// FindAll returns every entry ordered by key. Rows that no longer validate are skipped.
func (r *LogoMetadataJSONRepository) FindAll(ctx context.Context) ([]logo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]logo.Entry, 0, len(r.entries))
	for _, dto := range r.entries {
		e, err := dtoToLogoEntry(dto)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Ping checks that the metadata directory is still reachable.
func (r *LogoMetadataJSONRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(filepath.Dir(r.path))
	if err != nil {
		return fmt.Errorf("metadata directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("metadata directory %s is not a directory", filepath.Dir(r.path))
	}
	return nil
}

// writeFileAtomic replaces path with data via a synced temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
