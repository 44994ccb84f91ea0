package routes

import (
	"io/fs"
	"net/http"
	"path"
	"path/filepath"

	"github.com/mbolis/expert-mapper/httpx"
)

// bundleFS hides directories that carry no index.html, so they are
// treated like any other missing file instead of being listed.
type bundleFS struct {
	http.FileSystem
}

func (b bundleFS) Open(name string) (http.File, error) {
	f, err := b.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := b.FileSystem.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, fs.ErrNotExist
	}
	index.Close()
	return f, nil
}

// ServePublicFiles serves the built frontend. Paths that match no file get
// index.html so the client side router can take over.
func ServePublicFiles(dir string) http.Handler {
	files := http.FileServer(bundleFS{http.Dir(dir)})
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		buf := httpx.NewResponseBuffer()
		files.ServeHTTP(buf, r)
		if buf.Status() == http.StatusNotFound {
			http.ServeFile(w, r, index)
			return
		}
		buf.Flush(w)
	})
}
