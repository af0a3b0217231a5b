package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// uriToPath converts a file:// URI to a filesystem path, decoding percent
// escapes. Non-URI input is returned unchanged.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// pathToURI converts an absolute filesystem path to a file:// URI.
// Relative paths are returned unchanged.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") || !filepath.IsAbs(path) {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
