// Package providers contains the video source adapters. Each adapter knows
// how to turn a search term into one candidate clip URL from one external
// site. Adapters are fully independent: they share only the browsing engine
// (as a page factory), absorb their own failures, and never abort a sibling.
// New sources are added by implementing Provider, not by touching the
// resolver's control flow.
package providers

import (
	"context"
	"math/rand"
	"net/url"
	"path"
	"strings"
	"sync"
)

// Provider resolves a search term to a candidate clip URL from one source.
// The bool result follows the comma-ok idiom: false means "this source has
// nothing", regardless of whether the cause was an empty result set, a
// blocked page, or a navigation failure.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, term string) (string, bool)
}

// detailSampleSize bounds how many detail pages an adapter follows per
// search. Following every result would multiply latency and request volume
// against sources that already rate-limit aggressively.
const detailSampleSize = 3

// Rand is a seedable, goroutine-safe random source shared by adapters.
// Selection among duplicate candidates is deliberately randomized (repeated
// identical queries should not pin the same clip), and seeding it makes that
// behavior assertable in tests.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.Shuffle(n, swap)
}

// denied reports whether a URL or page fragment carries a watermarked-vendor
// marker. The marker list is configuration; membership is not assumed here.
func denied(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// filterDenied drops denylisted candidates, preserving order.
func filterDenied(candidates []string, markers []string) []string {
	out := candidates[:0:0]
	for _, c := range candidates {
		if !denied(c, markers) {
			out = append(out, c)
		}
	}
	return out
}

// pickRandom selects one candidate uniformly at random.
func pickRandom(candidates []string, rng *Rand) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// sampleLinks returns up to n links in random order without repeats.
func sampleLinks(links []string, n int, rng *Rand) []string {
	shuffled := make([]string, len(links))
	copy(shuffled, links)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// looksLikeVideoFile reports whether a URL path ends in a known container
// extension, i.e. is a direct media URL rather than a detail page.
func looksLikeVideoFile(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(parsed.Path)) {
	case ".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi":
		return true
	}
	return false
}

// absoluteURL resolves href against base; relative links on listing pages
// need the site origin restored before they can be navigated.
func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// dedupe removes duplicate candidates, preserving first-seen order.
func dedupe(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
