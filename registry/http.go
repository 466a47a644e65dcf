package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// errorEnvelope is the registry's error response body.
type errorEnvelope struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// do performs one JSON API call. A non-nil body is sent as JSON; a
// non-nil out receives the decoded response body. Rate-limited calls
// (429) are retried with exponential backoff before failing.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	op := func() error {
		err := c.doOnce(ctx, method, path, query, payload, out)
		if err != nil && !errors.Is(err, ErrRateLimited) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			newExponentialBackOff(c.rateLimitInterval),
			uint64(max(c.rateLimitRetries, 0)),
		),
		ctx,
	)
	return backoff.Retry(op, bo)
}

func newExponentialBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	return bo
}

// doOnce performs a single request/response exchange.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("X-API-Version", strconv.Itoa(c.apiVersion))

	c.log().Debug("registry request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.log().Debug("registry error", "method", method, "path", path,
			"status", apiErr.Status, "code", apiErr.Code)
		return fmt.Errorf("%s %s: %w", method, path, apiErr)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// decodeAPIError builds an APIError from a non-2xx response.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		apiErr.Code = env.Code
		apiErr.Detail = env.Detail
	}
	if apiErr.Code == "" && resp.StatusCode == 429 {
		apiErr.Code = "too_many_requests"
	}
	return apiErr
}

// ListParams are the shared pagination parameters for list calls.
type ListParams struct {
	Limit  int
	Order  string
	Search string
	Page   string
}

// values encodes the parameters, dropping zero values.
func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Page != "" {
		q.Set("page", p.Page)
	}
	return q
}
