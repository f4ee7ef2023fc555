// Package urlutil builds URLs returned to clients.
package urlutil

import (
	"net/http"
	"path"
	"strconv"
	"strings"
)

// ChildLocation returns the Location of a resource created under the
// collection at the request path, e.g. /api/notes + 7 -> /api/notes/7.
// The result is a cleaned absolute path; the query string is dropped.
func ChildLocation(r *http.Request, id int64) string {
	base := "/"
	if r != nil && r.URL != nil {
		base = r.URL.Path
	}
	return JoinPath(base, strconv.FormatInt(id, 10))
}

// JoinPath joins URL path segments with posix semantics and a leading slash.
func JoinPath(base string, elems ...string) string {
	base = strings.TrimSpace(base)
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return path.Join(append([]string{base}, elems...)...)
}
