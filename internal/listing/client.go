package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/stockroom/internal/listquery"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Client calls list actions of a running server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets baseURL. A nil hc uses a client with a 10s timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// URL returns the address of list for filters.
func (c *Client) URL(list string, filters urlstate.FilterSet, schema urlstate.Schema) string {
	u := c.baseURL + "/api/" + list
	if q := urlstate.Encode(filters, schema).String(); q != "" {
		u += "?" + q
	}
	return u
}

// Fetcher adapts the list action named by schema into a listquery fetcher.
// Error payloads are returned as responses so the query reports them as
// action errors.
func Fetcher[T any](c *Client, schema urlstate.Schema) listquery.Fetcher[T] {
	return func(ctx context.Context, filters urlstate.FilterSet) (*listquery.Response[T], error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(schema.Name, filters, schema), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return nil, err
		}
		var out listquery.Response[T]
		if err := json.Unmarshal(body, &out); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return &listquery.Response[T]{Error: fmt.Sprintf("%s: %s", schema.Name, resp.Status)}, nil
			}
			return nil, fmt.Errorf("decode %s: %w", schema.Name, err)
		}
		if resp.StatusCode >= http.StatusBadRequest && out.Error == "" {
			out.Error = fmt.Sprintf("%s: %s", schema.Name, resp.Status)
		}
		return &out, nil
	}
}
