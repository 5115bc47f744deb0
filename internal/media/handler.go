package media

import (
	"net/http"
	"path"
	"strings"
)

// URLPrefix is where Handler serves media files from.
const URLPrefix = "/media/"

// URL returns the path under which Handler serves handle.
func URL(handle string) string {
	return URLPrefix + handle
}

// Handler serves referenced media files under URLPrefix. Handles without a
// live reference are not found.
func Handler(s *Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, URLPrefix) {
			http.NotFound(w, r)
			return
		}
		handle := path.Base(strings.TrimPrefix(r.URL.Path, URLPrefix))
		p, err := s.Path(handle)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, p)
	})
}
