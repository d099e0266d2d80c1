// Package notify delivers escalation payloads to external collaborators.
// Every delivery is best-effort: failures are returned to the caller for
// logging and never retried here.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds each collaborator call so a stalled downstream
// service cannot block a batch run.
const DefaultTimeout = 5 * time.Second

// Location is the wire form of a coordinate pair
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationFrom builds a wire location from optional coordinates, or nil
func LocationFrom(lat, lng *float64) *Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &Location{Lat: *lat, Lng: *lng}
}

type httpPoster struct {
	url    string
	client *http.Client
}

func newHTTPPoster(url string, timeout time.Duration) *httpPoster {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpPoster{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// postJSON sends the payload and treats any 2xx status as success
func (p *httpPoster) postJSON(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http request failed with status %s", resp.Status)
	}
	return nil
}
