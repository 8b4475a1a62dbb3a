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

const pixabayBaseURL = "https://pixabay.com"

// PixabayProvider scrapes the Pixabay video search. Listing pages carry
// links into /videos/ detail pages whose <video> elements expose the CDN
// media URL.
type PixabayProvider struct {
	browser  browse.Browser
	baseURL  string
	denylist []string
	rng      *Rand
}

func NewPixabay(browser browse.Browser, denylist []string, rng *Rand) *PixabayProvider {
	return &PixabayProvider{
		browser:  browser,
		baseURL:  pixabayBaseURL,
		denylist: denylist,
		rng:      rng,
	}
}

// NewPixabayWithBaseURL is used by tests to point the adapter at a local server.
func NewPixabayWithBaseURL(browser browse.Browser, baseURL string, denylist []string, rng *Rand) *PixabayProvider {
	p := NewPixabay(browser, denylist, rng)
	p.baseURL = strings.TrimSuffix(baseURL, "/")
	return p
}

func (p *PixabayProvider) Name() string { return "pixabay" }

func (p *PixabayProvider) Resolve(ctx context.Context, term string) (string, bool) {
	page := p.browser.NewPage()
	defer page.Close()

	searchURL := fmt.Sprintf("%s/videos/search/%s/", p.baseURL, url.PathEscape(term))
	doc, err := page.Get(ctx, searchURL)
	if err != nil {
		log.Printf("[Provider pixabay] search failed for %q: %v", term, err)
		return "", false
	}

	var detailLinks []string
	doc.Find(`a[href^="/videos/"], a[href*="pixabay.com/videos/"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.Contains(href, "/search/") || denied(href, p.denylist) {
			return
		}
		detailLinks = append(detailLinks, absoluteURL(p.baseURL, href))
	})
	detailLinks = dedupe(detailLinks)

	if len(detailLinks) == 0 {
		// Listing layout changed or the page was a block interstitial.
		return "", false
	}

	for _, link := range sampleLinks(detailLinks, detailSampleSize, p.rng) {
		detail, err := page.Get(ctx, link)
		if err != nil {
			log.Printf("[Provider pixabay] detail page failed: %v", err)
			continue
		}

		var candidates []string
		detail.Find("video source, video").Each(func(_ int, s *goquery.Selection) {
			src, ok := s.Attr("src")
			if !ok {
				src, ok = s.Attr("data-src")
			}
			if !ok || src == "" {
				return
			}
			abs := absoluteURL(p.baseURL, src)
			if looksLikeVideoFile(abs) && !denied(abs, p.denylist) {
				candidates = append(candidates, abs)
			}
		})

		if clip, ok := pickRandom(dedupe(candidates), p.rng); ok {
			return clip, true
		}
	}

	return "", false
}
