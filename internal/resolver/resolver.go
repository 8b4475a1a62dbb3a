// Package resolver turns a scene's search query into exactly one clip URL.
// Resolution is total: providers are tried across escalating query
// variations, and when everything comes up empty the resolver falls back to
// a configured pool of known-good clips. The caller always gets a URL; it
// just isn't guaranteed to be relevant.
package resolver

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mdnazib963/ShortsCraft/internal/providers"
)

// shortQueryTokens is the token-prefix length of the last query variation.
// Long, specific queries often miss; the leading tokens carry the subject.
const shortQueryTokens = 3

// styleModifier widens the second variation toward footage that cuts well
// into a vertical short.
const styleModifier = "cinematic"

type Resolver struct {
	providers []providers.Provider
	fallback  []string

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a resolver over a fixed-priority provider list and a non-empty
// fallback pool. seed feeds the fallback selection so tests can pin it.
func New(provs []providers.Provider, fallback []string, seed int64) *Resolver {
	return &Resolver{
		providers: provs,
		fallback:  fallback,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// ResolveSceneClip returns a clip URL for the query. It never fails outward:
// every provider failing on every variation still produces a fallback clip.
func (r *Resolver) ResolveSceneClip(ctx context.Context, query string) string {
	for _, variation := range Variations(query) {
		if clip, ok := r.resolveVariation(ctx, variation); ok {
			return clip
		}
	}

	clip := r.fallback[r.pick(len(r.fallback))]
	log.Printf("[Resolver] all providers exhausted for %q, using fallback clip", query)
	return clip
}

// resolveVariation fans out to every provider concurrently, waits for all of
// them, then selects by fixed provider priority — not finish order — so the
// outcome is reproducible given deterministic providers.
func (r *Resolver) resolveVariation(ctx context.Context, term string) (string, bool) {
	results := make([]string, len(r.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range r.providers {
		g.Go(func() error {
			// Adapters absorb their own failures; an absent result is
			// just an empty slot.
			if clip, ok := p.Resolve(gctx, term); ok {
				results[i] = clip
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, clip := range results {
		if clip != "" {
			log.Printf("[Resolver] %q resolved by %s", term, r.providers[i].Name())
			return clip, true
		}
	}
	return "", false
}

func (r *Resolver) pick(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Variations returns the ordered query escalation list: the raw query, the
// query widened with a style modifier, and a token-prefix shortening.
// Later entries are tried only when every provider misses the earlier ones.
func Variations(query string) []string {
	query = strings.TrimSpace(query)
	variations := []string{query, query + " " + styleModifier}

	tokens := strings.Fields(query)
	if len(tokens) > shortQueryTokens {
		variations = append(variations, strings.Join(tokens[:shortQueryTokens], " "))
	}
	return variations
}
