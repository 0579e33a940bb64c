// Package shipclient drives the key-gated shipping endpoints from a mailroom workstation.
package shipclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrWrongUnit a request is headed somewhere other than the unit being packed.
var ErrWrongUnit = errors.New("request destined for another unit")

// Address a mailing address as served by the shipping endpoints.
type Address struct {
	Name      string `json:"name"`
	Addressee string `json:"addressee"`
	Street1   string `json:"street1"`
	Street2   string `json:"street2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
}

// Postage the outcome of buying postage for one package.
type Postage struct {
	Weight       int // ounces
	Postage      int // US cents
	TrackingCode string
	TrackingURL  string
}

// StatusError a non-200 answer from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Client posts to the server with the application key as a form field.
type Client struct {
	baseURL string
	key     string
	client  *http.Client
}

// New creates a client; timeout <= 0 means 30s.
func New(baseURL, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) ReturnAddress(ctx context.Context) (Address, error) {
	var a Address
	err := c.post(ctx, "/return_address", nil, &a)
	return a, err
}

// UnitAutoIDs maps unit names to their autoids.
func (c *Client) UnitAutoIDs(ctx context.Context) (map[string]uint, error) {
	ids := make(map[string]uint)
	err := c.post(ctx, "/unit_autoids", nil, &ids)
	return ids, err
}

func (c *Client) UnitAddress(ctx context.Context, unitAutoID uint) (Address, error) {
	var a Address
	err := c.post(ctx, "/unit_address/"+strconv.FormatUint(uint64(unitAutoID), 10), nil, &a)
	return a, err
}

func (c *Client) RequestAddress(ctx context.Context, requestID uint) (Address, error) {
	var a Address
	err := c.post(ctx, "/request_address/"+strconv.FormatUint(uint64(requestID), 10), nil, &a)
	return a, err
}

// RequestDestination returns the name of the unit the request ships to.
func (c *Client) RequestDestination(ctx context.Context, requestID uint) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	err := c.post(ctx, "/request_destination/"+strconv.FormatUint(uint64(requestID), 10), nil, &out)
	return out.Name, err
}

// ShipRequests records one shipment covering every request id.
func (c *Client) ShipRequests(ctx context.Context, requestIDs []uint, p Postage) error {
	form := url.Values{}
	for _, id := range requestIDs {
		form.Add("request_ids", strconv.FormatUint(uint64(id), 10))
	}
	form.Set("weight", strconv.Itoa(p.Weight))
	form.Set("postage", strconv.Itoa(p.Postage))
	form.Set("tracking_code", p.TrackingCode)
	form.Set("tracking_url", p.TrackingURL)
	return c.post(ctx, "/ship_requests", form, nil)
}

// Rejected a request left out of a bulk shipment and why.
type Rejected struct {
	RequestID uint
	Err       error
}

// ShipBulk checks every request against unit and ships the ones that match
// as one package. Requests for other units, or whose destination cannot be
// resolved, are returned instead of shipped.
func (c *Client) ShipBulk(ctx context.Context, unit string, requestIDs []uint, p Postage) ([]uint, []Rejected, error) {
	var (
		shipped  []uint
		rejected []Rejected
	)
	for _, id := range requestIDs {
		dest, err := c.RequestDestination(ctx, id)
		if err != nil {
			rejected = append(rejected, Rejected{RequestID: id, Err: err})
			continue
		}
		if !strings.EqualFold(dest, unit) {
			rejected = append(rejected, Rejected{
				RequestID: id,
				Err:       fmt.Errorf("%w: request %d goes to '%s' not '%s'", ErrWrongUnit, id, dest, unit),
			})
			continue
		}
		shipped = append(shipped, id)
	}
	if len(shipped) == 0 {
		return nil, rejected, errors.New("no requests were selected")
	}
	if err := c.ShipRequests(ctx, shipped, p); err != nil {
		return nil, rejected, err
	}
	return shipped, rejected, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, dst interface{}) error {
	if form == nil {
		form = url.Values{}
	}
	form.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
