package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mdnazib963/ShortsCraft/internal/browse"
)

var testDenylist = []string{"shutterstock", "pond5"}

func TestDenied(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/clip.mp4", false},
		{"https://www.ShutterStock.com/video/123.mp4", true},
		{"https://media.pond5.net/preview.mp4", true},
		{"", false},
	}
	for _, tc := range cases {
		if got := denied(tc.url, testDenylist); got != tc.want {
			t.Errorf("denied(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestLooksLikeVideoFile(t *testing.T) {
	if !looksLikeVideoFile("https://cdn.example.com/files/clip.mp4?dl=1") {
		t.Error("mp4 with query string should count as a video file")
	}
	if looksLikeVideoFile("https://example.com/video/12345/") {
		t.Error("detail page path should not count as a video file")
	}
}

func TestSampleLinksBounded(t *testing.T) {
	rng := NewRand(7)
	links := []string{"a", "b", "c", "d", "e", "f"}

	sampled := sampleLinks(links, detailSampleSize, rng)
	if len(sampled) != detailSampleSize {
		t.Fatalf("expected %d sampled links, got %d", detailSampleSize, len(sampled))
	}
	seen := map[string]bool{}
	for _, l := range sampled {
		if seen[l] {
			t.Errorf("link %q sampled twice", l)
		}
		seen[l] = true
	}

	// Fewer links than the sample size: all of them come back.
	small := sampleLinks([]string{"x"}, detailSampleSize, rng)
	if len(small) != 1 || small[0] != "x" {
		t.Errorf("expected [x], got %v", small)
	}
}

// pexelsTestServer serves a minimal listing page plus detail pages. The
// listing links three detail pages; only detail page 2 carries a clean clip,
// page 3 carries a denylisted one.
func pexelsTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/search/videos/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/video/ocean-waves-1/">one</a>
			<a href="/video/ocean-waves-2/">two</a>
			<a href="/video/ocean-waves-3/">three</a>
		</body></html>`)
	})
	mux.HandleFunc("/video/ocean-waves-1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>no media here</p></body></html>`)
	})
	mux.HandleFunc("/video/ocean-waves-2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><video><source src="%s/files/waves.mp4"></video></body></html>`, srv.URL)
	})
	mux.HandleFunc("/video/ocean-waves-3/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><video><source src="https://www.shutterstock.com/wm/waves.mp4"></video></body></html>`)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPexelsResolveFollowsDetailPages(t *testing.T) {
	srv := pexelsTestServer(t)
	engine := browse.NewEngine()
	defer engine.Release()

	p := NewPexelsWithBaseURL(engine, srv.URL, testDenylist, NewRand(1))

	// The sample covers all three detail links, so the single clean clip
	// must be found regardless of shuffle order.
	clip, ok := p.Resolve(context.Background(), "ocean waves")
	if !ok {
		t.Fatal("expected a candidate clip")
	}
	if !strings.HasSuffix(clip, "/files/waves.mp4") {
		t.Errorf("unexpected clip %q", clip)
	}
}

func TestPexelsResolveAbsorbsNavigationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden) // blocked
	}))
	defer srv.Close()

	engine := browse.NewEngine()
	defer engine.Release()

	p := NewPexelsWithBaseURL(engine, srv.URL, testDenylist, NewRand(1))
	if clip, ok := p.Resolve(context.Background(), "anything"); ok {
		t.Errorf("blocked page must map to absent, got %q", clip)
	}
}

func TestMixkitResolveDirectFromListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/free-stock-video/") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body>
			<video data-src="https://assets.mixkit.co/videos/1001/1001-720.mp4"></video>
			<video data-src="https://www.pond5.com/stock/999.mp4"></video>
		</body></html>`)
	}))
	defer srv.Close()

	engine := browse.NewEngine()
	defer engine.Release()

	p := NewMixkitWithBaseURL(engine, srv.URL, testDenylist, NewRand(3))
	clip, ok := p.Resolve(context.Background(), "city night")
	if !ok {
		t.Fatal("expected a candidate clip")
	}
	if clip != "https://assets.mixkit.co/videos/1001/1001-720.mp4" {
		t.Errorf("denylisted candidate leaked through: %q", clip)
	}
}

func TestPixabayResolveEmptyListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No results.</p></body></html>`)
	}))
	defer srv.Close()

	engine := browse.NewEngine()
	defer engine.Release()

	p := NewPixabayWithBaseURL(engine, srv.URL, testDenylist, NewRand(5))
	if _, ok := p.Resolve(context.Background(), "nonexistent topic"); ok {
		t.Error("empty listing must map to absent")
	}
}

func TestDefaultsOrder(t *testing.T) {
	engine := browse.NewEngine()
	defer engine.Release()

	list := Defaults(engine, testDenylist, NewRand(1))
	want := []string{"pexels", "pixabay", "mixkit"}
	if len(list) != len(want) {
		t.Fatalf("expected %d providers, got %d", len(want), len(list))
	}
	for i, p := range list {
		if p.Name() != want[i] {
			t.Errorf("provider %d = %s, want %s", i, p.Name(), want[i])
		}
	}
}
