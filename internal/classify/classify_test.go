package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifyVideoContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWithClient(srv.Client())
	if !c.Classify(context.Background(), srv.URL+"/clip") {
		t.Error("expected video/mp4 response to classify as valid")
	}
}

func TestClassifyExtensionFallback(t *testing.T) {
	// CDNs often report octet-stream for mp4 files; the path extension
	// should still carry the classification.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWithClient(srv.Client())
	if !c.Classify(context.Background(), srv.URL+"/files/clip.MP4") {
		t.Error("expected .mp4 path to classify as valid despite generic content type")
	}
	if c.Classify(context.Background(), srv.URL+"/files/page.html") {
		t.Error("expected non-video path with generic content type to classify as invalid")
	}
}

func TestClassifyNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWithClient(srv.Client())
	if c.Classify(context.Background(), srv.URL+"/gone.mp4") {
		t.Error("expected 404 to classify as invalid regardless of content type")
	}
}

func TestClassifyMalformedAndUnreachable(t *testing.T) {
	c := New()

	bad := []string{
		"",
		"not a url",
		"://missing-scheme",
		"ftp://example.com/clip.mp4",
		"http://",
	}
	for _, u := range bad {
		if c.Classify(context.Background(), u) {
			t.Errorf("expected %q to classify as invalid", u)
		}
	}

	// Closed server: connection refused must yield false, not panic.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	if c.Classify(context.Background(), url+"/clip.mp4") {
		t.Error("expected unreachable host to classify as invalid")
	}
}

func TestClassifyIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/webm")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWithClient(srv.Client())
	first := c.Classify(context.Background(), srv.URL+"/clip")
	second := c.Classify(context.Background(), srv.URL+"/clip")
	if first != second {
		t.Errorf("classification not idempotent: first=%v second=%v", first, second)
	}
}
