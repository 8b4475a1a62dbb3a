package assembly

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/retry"
)

const downloadTimeout = 120 * time.Second

// Downloader stages media sources into a job workspace. A source can be a
// remote http(s) URL, an inline-encoded payload (data: URI), or a local file
// path — all three are handled uniformly so callers never branch on where
// narration audio came from.
type Downloader struct {
	client *http.Client
	policy retry.Policy
}

func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: downloadTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		policy: retry.Policy{
			MaxAttempts: 4,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
			Retryable:   retry.TransientNetwork,
		},
	}
}

// Fetch stages source at destPath.
func (d *Downloader) Fetch(ctx context.Context, source, destPath string) error {
	switch {
	case strings.HasPrefix(source, "data:"):
		return writeDataURI(source, destPath)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return d.fetchRemote(ctx, source, destPath)
	default:
		return copyLocal(source, destPath)
	}
}

// fetchRemote downloads with bounded retries; a transient network failure
// during export should not by itself sink the whole job.
func (d *Downloader) fetchRemote(ctx context.Context, url, destPath string) error {
	attempt := 0
	return d.policy.Do(ctx, func() error {
		attempt++
		if attempt > 1 {
			log.Printf("[Downloader] retry %d for %s", attempt-1, url)
		}

		dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if isRetryableStatus(resp.StatusCode) {
				return fmt.Errorf("download %s returned status %d: %w", url, resp.StatusCode, retry.ErrTransient)
			}
			return fmt.Errorf("download %s returned status %d", url, resp.StatusCode)
		}

		out, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", destPath, err)
		}
		defer out.Close()

		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}

// writeDataURI decodes an inline payload like
// "data:audio/mpeg;base64,SUQz..." straight to disk.
func writeDataURI(source, destPath string) error {
	comma := strings.IndexByte(source, ',')
	if comma < 0 {
		return fmt.Errorf("malformed data URI: no payload separator")
	}
	meta, payload := source[len("data:"):comma], source[comma+1:]

	var data []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("failed to decode inline payload: %w", err)
		}
	} else {
		data = []byte(payload)
	}

	if len(data) == 0 {
		return fmt.Errorf("inline payload is empty")
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	return nil
}

func copyLocal(source, destPath string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", source, err)
	}
	return nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}
