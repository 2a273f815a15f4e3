package driver

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// LogoFileHandler serves downloaded logo files from the cache directory.
// Only regular files are served; directory listings are never exposed.
type LogoFileHandler struct {
	fileSystem fs.FS
	fileServer http.Handler
}

// NewLogoFileHandler creates a handler serving logos from fsys. Requests are
// expected to have the route prefix already stripped.
func NewLogoFileHandler(fsys fs.FS) *LogoFileHandler {
	return &LogoFileHandler{
		fileSystem: fsys,
		fileServer: http.FileServerFS(fsys),
	}
}

// ServeHTTP serves the requested logo file or 404.
func (h *LogoFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filePath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if filePath == "" || strings.HasSuffix(filePath, ".partial") {
		http.NotFound(w, r)
		return
	}

	info, err := fs.Stat(h.fileSystem, filePath)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.fileServer.ServeHTTP(w, r)
}
