package frontdoor

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
)

// contentTypes maps the extensions the SPA build emits. Anything else is
// served as text/plain.
var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

const defaultContentType = "text/plain"

func contentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// Static serves the single-page app build. Any path that does not name a
// regular file under the root falls back to the index document so client-side
// routes resolve; a missing index is a 404. Every method gets the file.
type Static struct {
	root  *os.Root
	index string
}

// NewStatic opens dir for serving. Lookups cannot escape dir.
func NewStatic(dir, index string) (*Static, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &Static{root: root, index: index}, nil
}

func (s *Static) Close() error {
	return s.root.Close()
}

func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = s.index
	}

	f, info, err := s.open(name)
	if err != nil {
		f, info, err = s.open(s.index)
		name = s.index
	}
	if err != nil {
		slog.Warn("static file not found", "path", r.URL.Path, "error", err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentTypeFor(name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// open returns name only if it is a regular file.
func (s *Static) open(name string) (*os.File, fs.FileInfo, error) {
	f, err := s.root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, errors.New("not a regular file")
	}
	return f, info, nil
}
