package logo

import (
	"net/url"
	"path"
	"strings"
)

const defaultExtension = ".png"

// FileName returns the on-disk file name for a downloaded logo: the cache key
// with every non-alphanumeric character replaced by an underscore, followed by
// the extension of the source URL path (".png" when it has none).
func FileName(key, sourceURL string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		b.WriteString("logo")
	}
	return b.String() + extensionOf(sourceURL)
}

func extensionOf(sourceURL string) string {
	p := sourceURL
	if u, err := url.Parse(sourceURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if len(ext) < 2 || len(ext) > 5 {
		return defaultExtension
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultExtension
		}
	}
	return ext
}

// IsRemote reports whether ref points at an http(s) resource.
func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
