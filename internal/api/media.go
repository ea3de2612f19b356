package api

import (
	"net/url"
	"strings"
)

// mediaFields are the keys whose values hold server-relative media paths
// that must be rewritten to absolute URLs.
var mediaFields = map[string]bool{
	"logo":  true,
	"image": true,
}

// normalizeMediaURLs walks a decoded response and rewrites every media
// field holding a relative path to an absolute URL under base. Values
// that are already absolute pass through unchanged, so applying the
// transform twice is a no-op.
func normalizeMediaURLs(v any, base *url.URL) {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if s, ok := item.(string); ok && mediaFields[k] && s != "" {
				val[k] = absoluteMediaURL(s, base)
				continue
			}
			normalizeMediaURLs(item, base)
		}
	case []any:
		for _, item := range val {
			normalizeMediaURLs(item, base)
		}
	}
}

func absoluteMediaURL(path string, base *url.URL) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	origin := url.URL{Scheme: base.Scheme, Host: base.Host}
	return strings.TrimSuffix(origin.String(), "/") + "/" + strings.TrimPrefix(path, "/")
}
