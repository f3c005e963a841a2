package jsonref

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/minet/connexion"
)

const (
	// MaxDocumentSize is the maximum size (in bytes) allowed for external
	// reference documents. This prevents resource exhaustion from loading
	// arbitrarily large files. Set to 10MB which should be sufficient for
	// most schema documents.
	MaxDocumentSize = 10 * 1024 * 1024 // 10MB

	// defaultFetchTimeout bounds the default HTTP fetcher. Callers needing
	// different deadlines supply their own Fetcher via WithFetcher.
	defaultFetchTimeout = 30 * time.Second
)

// Handler fetches and parses the document identified by a reference URI.
// The returned value is a JSON-compatible tree (map[string]any, []any, or
// scalar). Handlers are registered per URI scheme; see DefaultHandlers.
type Handler func(uri string) (any, error)

// Handlers maps a URI scheme ("http", "https", "file", ...) to the Handler
// used to acquire documents with that scheme. The map is treated as
// immutable for the duration of a resolution session.
type Handlers map[string]Handler

// Fetcher is a function type for fetching content from HTTP/HTTPS URLs.
// Returns the response body, content-type header, and any error.
type Fetcher func(url string) (body []byte, contentType string, err error)

// DefaultHandlers returns the default scheme handler map covering the
// http, https, and file schemes. The HTTP handlers use the default
// net/http-based fetcher; use WithFetcher or WithHandler to customize.
func DefaultHandlers() Handlers {
	return HandlersWithFetcher(defaultFetcher)
}

// HandlersWithFetcher returns the default handler map with HTTP/HTTPS
// fetching delegated to the given Fetcher.
func HandlersWithFetcher(fetch Fetcher) Handlers {
	httpHandler := NewHTTPHandler(fetch)
	return Handlers{
		"http":  httpHandler,
		"https": httpHandler,
		"file":  NewFileHandler(),
	}
}

// NewHTTPHandler returns a Handler that fetches documents over HTTP/HTTPS
// using the given Fetcher and parses them as YAML or JSON.
func NewHTTPHandler(fetch Fetcher) Handler {
	return func(uri string) (any, error) {
		data, contentType, err := fetch(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", uri, err)
		}
		if int64(len(data)) > MaxDocumentSize {
			return nil, fmt.Errorf("document %s exceeds maximum size limit (%d bytes): response is %d bytes",
				uri, MaxDocumentSize, len(data))
		}
		return parseDocument(data, contentType, uri)
	}
}

// NewFileHandler returns a Handler that loads documents from the local
// filesystem and parses them as YAML or JSON. The uri argument is a cleaned
// filesystem path; path traversal checks happen in the resolver before the
// handler is invoked.
func NewFileHandler() Handler {
	return func(path string) (any, error) {
		// Size is checked after reading, combining stat + read into a
		// single ReadFile syscall.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read external file %s: %w", path, err)
		}
		if int64(len(data)) > MaxDocumentSize {
			return nil, fmt.Errorf("external file %s exceeds maximum size limit (%d bytes): file is %d bytes",
				path, MaxDocumentSize, len(data))
		}
		return parseDocument(data, "", path)
	}
}

// defaultFetcher fetches a URL with net/http and a bounded timeout.
func defaultFetcher(url string) ([]byte, string, error) {
	client := &http.Client{Timeout: defaultFetchTimeout}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", connexion.UserAgent())
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	// LimitReader caps the read one byte past the limit so oversized
	// responses are detected without buffering them fully.
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// parseDocument parses raw document bytes as JSON or YAML. JSON is chosen
// when the content type or the URI extension says so; everything else goes
// through the YAML parser, which accepts JSON input as well.
func parseDocument(data []byte, contentType, uri string) (any, error) {
	if isJSONDocument(contentType, uri) {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s as JSON: %w", uri, err)
		}
		return doc, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", uri, err)
	}
	return doc, nil
}

// isJSONDocument reports whether the content type or URI identifies JSON.
func isJSONDocument(contentType, uri string) bool {
	if strings.Contains(contentType, "json") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(uri), ".json")
}
