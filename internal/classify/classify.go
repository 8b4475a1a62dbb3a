// Package classify decides whether a URL points at a playable video.
//
// The check is shallow on purpose: a metadata-only request with a short
// timeout, no body download. It answers "does this exist and claim to be
// video", not "is this the right video". Remote clips can disappear at any
// time, so callers treat the answer as a point-in-time fact and re-check
// before export.
package classify

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const checkTimeout = 5 * time.Second

// videoExtensions are recognized as video even when the server reports a
// generic content type (CDNs frequently serve mp4 as application/octet-stream).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

// Classifier performs existence/type checks on remote media URLs.
type Classifier struct {
	client *http.Client
}

func New() *Classifier {
	return &Classifier{
		client: &http.Client{Timeout: checkTimeout},
	}
}

// NewWithClient is used by tests and by callers that share a transport.
func NewWithClient(client *http.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify reports whether rawURL points at a reachable video resource.
// It is total: any failure — malformed URL, network error, timeout,
// non-success status, non-video content — yields false, never an error.
// Calling it twice with no external state change yields the same result.
func (c *Classifier) Classify(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[Classify] %s unreachable: %v", rawURL, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "video/") {
		return true
	}

	return hasVideoExtension(parsed.Path)
}

func hasVideoExtension(urlPath string) bool {
	return videoExtensions[strings.ToLower(path.Ext(urlPath))]
}
