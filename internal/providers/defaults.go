package providers

import "github.com/mdnazib963/ShortsCraft/internal/browse"

// Defaults returns the statically ordered provider list. The order is the
// resolver's selection priority: when several providers return a candidate in
// the same fan-out round, the earliest-listed one wins.
func Defaults(browser browse.Browser, denylist []string, rng *Rand) []Provider {
	return []Provider{
		NewPexels(browser, denylist, rng),
		NewPixabay(browser, denylist, rng),
		NewMixkit(browser, denylist, rng),
	}
}
