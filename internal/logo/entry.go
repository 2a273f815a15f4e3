package logo

import (
	"strings"
	"time"
)

// TTL is how long a cache entry stays valid after it was written.
const TTL = 30 * 24 * time.Hour

// Source records which step of the resolution chain produced a logo.
type Source string

const (
	SourceWikimedia        Source = "wikimedia"
	SourceFallbackProvided Source = "fallbackProvided"
	SourcePlaceholder      Source = "placeholder"
)

// IsValid reports whether s is one of the known sources.
func (s Source) IsValid() bool {
	switch s {
	case SourceWikimedia, SourceFallbackProvided, SourcePlaceholder:
		return true
	}
	return false
}

// Entry is a persisted logo cache record. Entries are replaced as a whole,
// never updated field by field.
type Entry struct {
	Key       string
	URL       string
	LocalPath string // empty when the image was not downloaded
	Source    Source
	Timestamp time.Time
}

// NewEntry builds an Entry for the given channel key.
func NewEntry(key, url, localPath string, source Source, ts time.Time) (Entry, error) {
	k := Key(key)
	if k == "" {
		return Entry{}, ErrEmptyKey
	}
	if strings.TrimSpace(url) == "" {
		return Entry{}, ErrEmptyURL
	}
	if !source.IsValid() {
		return Entry{}, ErrInvalidSource
	}
	return Entry{
		Key:       k,
		URL:       url,
		LocalPath: localPath,
		Source:    source,
		Timestamp: ts,
	}, nil
}

// Reference is the image reference handed to the playlist: the local file when
// the image was downloaded, the remote URL otherwise.
func (e Entry) Reference() string {
	if e.LocalPath != "" {
		return e.LocalPath
	}
	return e.URL
}

// IsExpired reports whether the entry is older than ttl at now.
func (e Entry) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) > ttl
}

// Key derives the cache key for a channel name.
func Key(channelName string) string {
	return strings.ToLower(strings.TrimSpace(channelName))
}
