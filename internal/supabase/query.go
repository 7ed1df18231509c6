package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// From starts a PostgREST query against a table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table}
}

// Query builds a PostgREST request. Filters accumulate; every terminal
// method (Get, Insert, Update, Delete) applies them to the request URL so a
// mutation can never run unfiltered by accident.
type Query struct {
	client  *Client
	table   string
	columns string
	filters url.Values
}

// Select sets the columns to return.
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column string, value string) *Query {
	if q.filters == nil {
		q.filters = url.Values{}
	}
	q.filters.Add(column, "eq."+value)
	return q
}

// Get runs a SELECT and decodes the resulting rows into dest.
func (q *Query) Get(ctx context.Context, dest any) error {
	req, err := q.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return err
	}
	body, err := q.client.do(req)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// Insert runs an INSERT with return=representation and decodes the created
// rows into dest.
func (q *Query) Insert(ctx context.Context, row any, dest any) error {
	return q.mutate(ctx, http.MethodPost, row, dest)
}

// Update runs an UPDATE of the filtered rows with return=representation and
// decodes the updated rows into dest.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	return q.mutate(ctx, http.MethodPatch, patch, dest)
}

// Delete removes the filtered rows and decodes them into dest, so callers
// can tell a deletion from a no-op on a missing row.
func (q *Query) Delete(ctx context.Context, dest any) error {
	return q.mutate(ctx, http.MethodDelete, nil, dest)
}

func (q *Query) mutate(ctx context.Context, method string, payload any, dest any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("supabase: marshal payload: %w", err)
		}
	}

	req, err := q.newRequest(ctx, method, body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, err := q.client.do(req)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(respBody, dest)
}

func (q *Query) newRequest(ctx context.Context, method string, body []byte) (*http.Request, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)

	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for column, values := range q.filters {
		for _, v := range values {
			params.Add(column, v)
		}
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	q.client.setHeaders(req)
	return req, nil
}
