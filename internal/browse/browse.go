// Package browse models the shared browsing engine handed to provider
// adapters. The engine itself is a process-scoped resource (one shared
// transport, acquired at startup); each adapter asks it for an isolated Page
// and tears that page down itself, so concurrent adapters never contend over
// navigation state. Handing the engine around as a capability instead of a
// global keeps adapters testable with substitute implementations.
package browse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// navTimeout bounds a single page navigation. A blocked or stalling
	// provider costs at most this long per fetch.
	navTimeout = 20 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Browser is a factory for isolated browsing surfaces.
type Browser interface {
	NewPage() Page
}

// Page is one isolated browsing surface: its own cookies, its own lifetime.
// Adapters must Close the pages they open, on every exit path.
type Page interface {
	// Get navigates to url and parses the response body as a document.
	Get(ctx context.Context, url string) (*goquery.Document, error)
	Close()
}

// Engine is the production Browser: one shared transport, per-page cookie
// jars. Acquire once in main, Release at shutdown.
type Engine struct {
	transport *http.Transport
}

func NewEngine() *Engine {
	return &Engine{
		transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func (e *Engine) NewPage() Page {
	// Cookie jar errors only happen with a non-nil PublicSuffixList
	jar, _ := cookiejar.New(nil)
	return &httpPage{
		client: &http.Client{
			Transport: e.transport,
			Jar:       jar,
			Timeout:   navTimeout,
		},
	}
}

// Release tears down the shared transport. Pages created earlier must not be
// used afterwards.
func (e *Engine) Release() {
	e.transport.CloseIdleConnections()
}

type httpPage struct {
	client *http.Client
	closed bool
}

func (p *httpPage) Get(ctx context.Context, url string) (*goquery.Document, error) {
	if p.closed {
		return nil, fmt.Errorf("page is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("navigation returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

func (p *httpPage) Close() {
	p.closed = true
	p.client.CloseIdleConnections()
}
