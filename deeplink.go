package panotour

import (
	"net/url"
	"strconv"
	"strings"
)

// PanoramaIDFromPath returns the last numeric segment of an address path such
// as "/tour/22", or def when there is none. Full URLs are accepted too.
func PanoramaIDFromPath(address string, def int) int {
	path := address
	if u, err := url.Parse(address); err == nil {
		path = u.Path
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg == "" {
			continue
		}
		if id, err := strconv.Atoi(seg); err == nil {
			return id
		}
	}
	return def
}
