// Package blob mirrors collections to a hosted JSON bin service. Each
// collection lives in its own bin; the bin id is assigned by the service on
// first save and remembered locally.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the hosted bin API endpoint.
const DefaultBaseURL = "https://api.jsonbin.io/v3/b"

// envelope wraps the collection value with sync metadata. The remote side
// stores the envelope verbatim; readers unwrap data.
type envelope struct {
	Data        json.RawMessage `json:"data"`
	LastUpdated string          `json:"lastUpdated"`
	Version     string          `json:"version"`
}

const envelopeVersion = "1.0"

// Client talks to the bin service. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client authenticating with apiKey. baseURL may be
// empty to use the hosted service.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Create stores data in a new bin named after the collection and returns
// the service-assigned bin id.
func (c *Client) Create(ctx context.Context, name string, data json.RawMessage) (string, error) {
	body, err := marshalEnvelope(data)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.apiKey)
	req.Header.Set("X-Bin-Name", name)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create bin: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("create bin: %w", err)
	}

	var created struct {
		Metadata struct {
			ID string `json:"id"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("create bin: decode response: %w", err)
	}
	if created.Metadata.ID == "" {
		return "", fmt.Errorf("create bin: response carried no bin id")
	}
	return created.Metadata.ID, nil
}

// Replace overwrites the bin's contents with data.
func (c *Client) Replace(ctx context.Context, id string, data json.RawMessage) error {
	body, err := marshalEnvelope(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/"+id, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("replace bin %s: %w", id, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("replace bin %s: %w", id, err)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Fetch returns the latest value stored in the bin, unwrapped from its
// envelope. Bins written before the envelope format was introduced are
// returned as-is.
func (c *Client) Fetch(ctx context.Context, id string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+id+"/latest", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Master-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bin %s: %w", id, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("fetch bin %s: %w", id, err)
	}

	var fetched struct {
		Record json.RawMessage `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return nil, fmt.Errorf("fetch bin %s: decode response: %w", id, err)
	}
	var env envelope
	if err := json.Unmarshal(fetched.Record, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data, nil
	}
	return fetched.Record, nil
}

func marshalEnvelope(data json.RawMessage) ([]byte, error) {
	body, err := json.Marshal(envelope{
		Data:        data,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Version:     envelopeVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return body, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
}
