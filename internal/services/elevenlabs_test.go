package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/retry"
)

func testElevenLabs(url string) *ElevenLabsService {
	s := NewElevenLabsService("test-key", "")
	s.baseURL = url
	s.policy = retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retryable:   retry.RateLimitedOnly,
	}
	return s
}

func TestGenerateSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	resp, err := testElevenLabs(srv.URL).GenerateSpeech(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}
	if string(resp.AudioData) != "mp3-bytes" {
		t.Errorf("audio = %q", resp.AudioData)
	}
	if resp.Format != "mp3" {
		t.Errorf("format = %q", resp.Format)
	}
	if resp.DurationMs <= 0 {
		t.Errorf("duration estimate = %d", resp.DurationMs)
	}
}

func TestGenerateSpeechRetriesThrottling(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	if _, err := testElevenLabs(srv.URL).GenerateSpeech(context.Background(), "hello"); err != nil {
		t.Fatalf("GenerateSpeech should recover from throttling: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestGenerateSpeechServerErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := testElevenLabs(srv.URL).GenerateSpeech(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("client errors should not be retried, got %d requests", got)
	}
}
