// Package fetcher retrieves and decodes contact-export files: CSV, XLSX,
// JSON arrays, and ZIP-wrapped exports, from local paths or http(s)/ftp URLs.
package fetcher

import (
	"context"
	"io"
	"strings"
)

// Source downloads a remote export file.
type Source interface {
	// Fetch returns the file body; the caller must close it.
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)

	// FetchToFile writes the file to path and returns bytes written.
	FetchToFile(ctx context.Context, url, path string) (int64, error)
}

// ForURL picks the Source able to fetch rawURL. Local paths return nil.
func ForURL(rawURL string) Source {
	switch {
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return NewHTTPSource(HTTPOptions{})
	case strings.HasPrefix(rawURL, "ftp://"):
		return NewFTPSource(FTPOptions{})
	}
	return nil
}

// Table is a parsed tabular export: one header row plus data rows. Rows may
// be ragged relative to the header.
type Table struct {
	Header []string
	Rows   [][]string
}
