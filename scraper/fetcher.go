package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	userAgent    = "webradio-title/1.0"
	maxBodyBytes = 1 << 20
)

var ErrMalformedPayload = errors.New("malformed payload")

// Fetcher retrieves a station endpoint. Deadlines come from ctx.
type Fetcher interface {
	Fetch(ctx context.Context, uri string, headers map[string]string, kind PayloadKind) (Payload, error)
}

type HTTPFetcher struct {
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri string, headers map[string]string, kind PayloadKind) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return Payload{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-store")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("error fetching URL: %s, status code: %d", uri, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Payload{}, fmt.Errorf("read body: %w", err)
	}

	payload := Payload{Kind: kind, Text: string(body)}
	if kind == PayloadJSON {
		if err := json.Unmarshal(body, &payload.Data); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}
	return payload, nil
}
