package resolver

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/providers"
)

// fakeProvider returns a fixed clip for terms matching matchTerm ("" = never),
// counting invocations.
type fakeProvider struct {
	name      string
	matchTerm string
	clip      string
	delay     time.Duration
	calls     atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Resolve(ctx context.Context, term string) (string, bool) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", false
		}
	}
	if f.matchTerm != "" && term == f.matchTerm {
		return f.clip, true
	}
	return "", false
}

var fallbackPool = []string{
	"https://cdn.example.com/fallback-1.mp4",
	"https://cdn.example.com/fallback-2.mp4",
}

func TestResolveTotalityWithAllAbsent(t *testing.T) {
	provs := []providers.Provider{
		&fakeProvider{name: "a"},
		&fakeProvider{name: "b"},
		&fakeProvider{name: "c"},
	}
	r := New(provs, fallbackPool, 42)

	clip := r.ResolveSceneClip(context.Background(), "sunrise over mountains timelapse")
	if clip == "" {
		t.Fatal("resolution must be total")
	}
	found := false
	for _, f := range fallbackPool {
		if clip == f {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a fallback pool clip, got %q", clip)
	}

	// Every variation must have been offered to every provider before
	// falling back.
	wantCalls := int32(len(Variations("sunrise over mountains timelapse")))
	for _, p := range provs {
		fp := p.(*fakeProvider)
		if got := fp.calls.Load(); got != wantCalls {
			t.Errorf("provider %s called %d times, want %d", fp.name, got, wantCalls)
		}
	}
}

func TestResolveSingleCandidateAnyPosition(t *testing.T) {
	for pos := 0; pos < 3; pos++ {
		provs := []providers.Provider{
			&fakeProvider{name: "a"},
			&fakeProvider{name: "b"},
			&fakeProvider{name: "c"},
		}
		provs[pos] = &fakeProvider{name: "hit", matchTerm: "city traffic", clip: "https://cdn.example.com/traffic.mp4"}

		r := New(provs, fallbackPool, 1)
		clip := r.ResolveSceneClip(context.Background(), "city traffic")
		if clip != "https://cdn.example.com/traffic.mp4" {
			t.Errorf("position %d: got %q", pos, clip)
		}
	}
}

func TestResolveFixedPriorityNotFirstFinisher(t *testing.T) {
	// The lower-priority provider answers instantly, the higher-priority one
	// slowly. Priority order must still win, across repeated runs.
	for run := 0; run < 5; run++ {
		slow := &fakeProvider{name: "slow-first", matchTerm: "ocean", clip: "https://cdn.example.com/first.mp4", delay: 30 * time.Millisecond}
		fast := &fakeProvider{name: "fast-second", matchTerm: "ocean", clip: "https://cdn.example.com/second.mp4"}

		r := New([]providers.Provider{slow, fast}, fallbackPool, 1)
		if clip := r.ResolveSceneClip(context.Background(), "ocean"); clip != "https://cdn.example.com/first.mp4" {
			t.Fatalf("run %d: expected priority winner, got %q", run, clip)
		}
	}
}

func TestResolveStopsEscalatingOnSuccess(t *testing.T) {
	p := &fakeProvider{name: "p", matchTerm: "night sky stars galaxy", clip: "https://cdn.example.com/stars.mp4"}
	r := New([]providers.Provider{p}, fallbackPool, 1)

	clip := r.ResolveSceneClip(context.Background(), "night sky stars galaxy")
	if clip != "https://cdn.example.com/stars.mp4" {
		t.Fatalf("got %q", clip)
	}
	// Raw query matched on the first variation; no escalation should follow.
	if got := p.calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestResolveEscalatesToShortVariant(t *testing.T) {
	// Provider only knows the 3-token prefix, so the resolver must walk
	// raw → styled → shortened.
	p := &fakeProvider{name: "p", matchTerm: "abandoned factory interior", clip: "https://cdn.example.com/factory.mp4"}
	r := New([]providers.Provider{p}, fallbackPool, 1)

	clip := r.ResolveSceneClip(context.Background(), "abandoned factory interior with broken windows")
	if clip != "https://cdn.example.com/factory.mp4" {
		t.Fatalf("got %q", clip)
	}
	if got := p.calls.Load(); got != 3 {
		t.Errorf("expected 3 calls (one per variation), got %d", got)
	}
}

func TestVariations(t *testing.T) {
	vs := Variations("deep forest walk at dawn")
	if len(vs) != 3 {
		t.Fatalf("expected 3 variations, got %v", vs)
	}
	if vs[0] != "deep forest walk at dawn" {
		t.Errorf("first variation must be the raw query, got %q", vs[0])
	}
	if !strings.HasSuffix(vs[1], " cinematic") {
		t.Errorf("second variation must append the style modifier, got %q", vs[1])
	}
	if vs[2] != "deep forest walk" {
		t.Errorf("third variation must be the token prefix, got %q", vs[2])
	}

	// Short queries skip the prefix variant.
	if vs := Variations("rain"); len(vs) != 2 {
		t.Errorf("short query should yield 2 variations, got %v", vs)
	}
}

func TestFallbackSeedDeterminism(t *testing.T) {
	empty := []providers.Provider{&fakeProvider{name: "a"}}

	first := New(empty, fallbackPool, 99).ResolveSceneClip(context.Background(), "x")
	second := New(empty, fallbackPool, 99).ResolveSceneClip(context.Background(), "x")
	if first != second {
		t.Errorf("same seed must yield the same fallback clip: %q vs %q", first, second)
	}
}
