package providers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdnazib963/ShortsCraft/internal/browse"
)

const mixkitBaseURL = "https://mixkit.co"

// MixkitProvider scrapes Mixkit's free stock video search. Unlike the other
// sources, Mixkit inlines direct CDN media URLs into the listing page itself,
// so no detail-page hop is needed.
type MixkitProvider struct {
	browser  browse.Browser
	baseURL  string
	denylist []string
	rng      *Rand
}

func NewMixkit(browser browse.Browser, denylist []string, rng *Rand) *MixkitProvider {
	return &MixkitProvider{
		browser:  browser,
		baseURL:  mixkitBaseURL,
		denylist: denylist,
		rng:      rng,
	}
}

// NewMixkitWithBaseURL is used by tests to point the adapter at a local server.
func NewMixkitWithBaseURL(browser browse.Browser, baseURL string, denylist []string, rng *Rand) *MixkitProvider {
	p := NewMixkit(browser, denylist, rng)
	p.baseURL = strings.TrimSuffix(baseURL, "/")
	return p
}

func (p *MixkitProvider) Name() string { return "mixkit" }

func (p *MixkitProvider) Resolve(ctx context.Context, term string) (string, bool) {
	page := p.browser.NewPage()
	defer page.Close()

	slug := strings.ReplaceAll(strings.TrimSpace(term), " ", "-")
	searchURL := fmt.Sprintf("%s/free-stock-video/%s/", p.baseURL, url.PathEscape(slug))
	doc, err := page.Get(ctx, searchURL)
	if err != nil {
		log.Printf("[Provider mixkit] search failed for %q: %v", term, err)
		return "", false
	}

	var candidates []string
	collect := func(raw string, ok bool) {
		if !ok || raw == "" {
			return
		}
		abs := absoluteURL(p.baseURL, raw)
		if looksLikeVideoFile(abs) && !denied(abs, p.denylist) {
			candidates = append(candidates, abs)
		}
	}

	doc.Find("video source").Each(func(_ int, s *goquery.Selection) {
		collect(s.Attr("src"))
	})
	doc.Find("video").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			collect(src, true)
		} else {
			collect(s.Attr("data-src"))
		}
	})

	return pickRandom(dedupe(candidates), p.rng)
}
