package catalog

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"asset-catalog/schema"
)

// Fetcher retrieves the bytes behind an ingestion URL. The catalog calls
// it without holding any index lock.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (content []byte, contentType string, err error)
}

// HTTPFetcher fetches over plain HTTP with a request timeout and a size
// ceiling.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

func (f *HTTPFetcher) Fetch(
	ctx context.Context,
	rawURL string,
) ([]byte, string, error) {
	// Last line of defense; the normalizer already rejected other schemes.
	if _, err := schema.ParseDownloadURL("url", rawURL); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Inner: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Inner: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", &FetchError{
			URL:   rawURL,
			Inner: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Inner: err}
	}
	if int64(len(content)) > f.maxBytes {
		return nil, "", &FetchError{
			URL:   rawURL,
			Inner: fmt.Errorf("response exceeds %d bytes", f.maxBytes),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = parsed
		}
	}

	return content, contentType, nil
}
