// Package airtable implements a minimal Airtable REST client covering the
// record listing and retrieval operations the clip catalog needs.
package airtable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

const defaultBaseURL = "https://api.airtable.com"

// Record is a single Airtable record. Fields carries the raw column values;
// callers map them onto domain types.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// APIError is a non-2xx response from the Airtable API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Airtable REST API. BaseURL is overridable for tests.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

func New() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListRecords fetches every record from the given base and table, following
// the offset cursor until the API stops returning one.
func (c *Client) ListRecords(ctx context.Context, apiKey, baseID, table string) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		u := fmt.Sprintf("%s/v0/%s/%s", c.BaseURL, url.PathEscape(baseID), url.PathEscape(table))
		if offset != "" {
			u += "?offset=" + url.QueryEscape(offset)
		}

		page, err := c.get(ctx, apiKey, u)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(ctx context.Context, apiKey, baseID, table, id string) (*Record, error) {
	u := fmt.Sprintf("%s/v0/%s/%s/%s", c.BaseURL, url.PathEscape(baseID), url.PathEscape(table), url.PathEscape(id))

	body, err := c.do(ctx, apiKey, u)
	if err != nil {
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, fmt.Errorf("airtable: decoding record: %w", err)
	}
	return rec, nil
}

func (c *Client) get(ctx context.Context, apiKey, u string) (*listResponse, error) {
	body, err := c.do(ctx, apiKey, u)
	if err != nil {
		return nil, err
	}

	resp := &listResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("airtable: decoding list response: %w", err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, apiKey, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("airtable: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airtable: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("airtable: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
