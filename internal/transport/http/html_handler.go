package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticHandler serves the dashboard files from webDir. Unknown paths
// without an extension fall back to index.html so client-side routes work;
// unknown assets are 404.
func StaticHandler(webDir string) http.Handler {
	files := http.FileServer(http.Dir(webDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		u := *r.URL
		u.Path = clean
		r2 := new(http.Request)
		*r2 = *r
		r2.URL = &u
		r = r2

		if _, err := os.Stat(filepath.Join(webDir, filepath.FromSlash(clean))); err != nil {
			if path.Ext(clean) != "" {
				http.NotFound(w, r)
				return
			}
			ServeIndex(webDir).ServeHTTP(w, r)
			return
		}

		if strings.HasSuffix(clean, ".html") || clean == "/" {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}

// ServeIndex serves index.html of webDir
func ServeIndex(webDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexPath := filepath.Join(webDir, "index.html")
		if _, err := os.Stat(indexPath); os.IsNotExist(err) {
			http.Error(w, "Dashboard not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, indexPath)
	}
}
