package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPProvider talks to a jurisdiction's inmate-search service over JSON.
//
//	GET {base}/inmates?first_name=..&last_name=..
//	GET {base}/inmates/{id}
type HTTPProvider struct {
	jurisdiction string
	baseURL      string
	client       *http.Client
}

// NewHTTPProvider creates a provider client; timeout <= 0 means 30s.
func NewHTTPProvider(jurisdiction, baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		jurisdiction: jurisdiction,
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Jurisdiction() string { return p.jurisdiction }

func (p *HTTPProvider) QueryByName(ctx context.Context, firstName, lastName string) ([]Record, error) {
	q := url.Values{}
	q.Set("first_name", firstName)
	q.Set("last_name", lastName)
	return p.get(ctx, p.baseURL+"/inmates?"+q.Encode())
}

func (p *HTTPProvider) QueryByID(ctx context.Context, id int64) ([]Record, error) {
	return p.get(ctx, p.baseURL+"/inmates/"+strconv.FormatInt(id, 10))
}

func (p *HTTPProvider) get(ctx context.Context, u string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for i := range records {
		if records[i].Jurisdiction == "" {
			records[i].Jurisdiction = p.jurisdiction
		}
	}
	return records, nil
}
