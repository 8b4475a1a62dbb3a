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

const pexelsBaseURL = "https://www.pexels.com"

// PexelsProvider scrapes the Pexels video search. Search results link to
// per-video detail pages; the direct media URL lives on the detail page as a
// <source> element or an og:video meta tag.
type PexelsProvider struct {
	browser  browse.Browser
	baseURL  string
	denylist []string
	rng      *Rand
}

func NewPexels(browser browse.Browser, denylist []string, rng *Rand) *PexelsProvider {
	return &PexelsProvider{
		browser:  browser,
		baseURL:  pexelsBaseURL,
		denylist: denylist,
		rng:      rng,
	}
}

// NewPexelsWithBaseURL is used by tests to point the adapter at a local server.
func NewPexelsWithBaseURL(browser browse.Browser, baseURL string, denylist []string, rng *Rand) *PexelsProvider {
	p := NewPexels(browser, denylist, rng)
	p.baseURL = strings.TrimSuffix(baseURL, "/")
	return p
}

func (p *PexelsProvider) Name() string { return "pexels" }

func (p *PexelsProvider) Resolve(ctx context.Context, term string) (string, bool) {
	page := p.browser.NewPage()
	defer page.Close()

	searchURL := fmt.Sprintf("%s/search/videos/%s/", p.baseURL, url.PathEscape(term))
	doc, err := page.Get(ctx, searchURL)
	if err != nil {
		log.Printf("[Provider pexels] search failed for %q: %v", term, err)
		return "", false
	}

	// Direct media URLs embedded in the listing win without a second hop.
	direct := p.directCandidates(doc)
	if clip, ok := pickRandom(direct, p.rng); ok {
		return clip, true
	}

	// Otherwise follow a bounded random sample of detail pages.
	var detailLinks []string
	doc.Find(`a[href*="/video/"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || denied(href, p.denylist) {
			return
		}
		detailLinks = append(detailLinks, absoluteURL(p.baseURL, href))
	})
	detailLinks = dedupe(detailLinks)

	for _, link := range sampleLinks(detailLinks, detailSampleSize, p.rng) {
		detail, err := page.Get(ctx, link)
		if err != nil {
			log.Printf("[Provider pexels] detail page failed: %v", err)
			continue
		}
		if clip, ok := pickRandom(p.directCandidates(detail), p.rng); ok {
			return clip, true
		}
	}

	return "", false
}

func (p *PexelsProvider) directCandidates(doc *goquery.Document) []string {
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
		collect(s.Attr("src"))
	})
	doc.Find(`meta[property="og:video"], meta[property="og:video:url"]`).Each(func(_ int, s *goquery.Selection) {
		collect(s.Attr("content"))
	})

	return dedupe(candidates)
}
