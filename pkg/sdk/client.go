package curalink

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
	"strings"
	"time"

	chiTransport "github.com/kailas-cloud/curalink/internal/transport/chi"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client is the curalink SDK entry point. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	service string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the gateway at baseURL (scheme://host[:port]).
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("curalink: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("curalink: base url %q must be http(s)://host", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		service: cfg.service,
		http:    hc,
		obs:     obs,
	}, nil
}

// Session returns a new Session bound to this client.
func (c *Client) Session() *Session {
	return &Session{client: c}
}

// withService fills webAppService from WithService when the query left it empty.
func (c *Client) withService(q url.Values) url.Values {
	if c.service != "" && q.Get(chiTransport.ServiceParam) == "" {
		q.Set(chiTransport.ServiceParam, c.service)
	}
	return q
}

// response carries the headers the gateway reports alongside a body.
type response struct {
	total           int
	archiveRequests int
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest any) (response, error) {
	return c.do(ctx, http.MethodGet, path, q, nil, dest)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, dest any) (response, error) {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return response{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return response{}, decodeError(resp)
	}
	return readInto(resp, dest)
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (*http.Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("curalink: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("curalink: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("curalink: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func readInto(resp *http.Response, dest any) (response, error) {
	out := response{
		total:           headerInt(resp.Header, chiTransport.HeaderTotalCount, -1),
		archiveRequests: headerInt(resp.Header, chiTransport.HeaderArchiveRequests, 0),
	}
	if dest == nil {
		return out, nil
	}
	if raw, ok := dest.(*json.RawMessage); ok {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return out, fmt.Errorf("curalink: read response: %w", err)
		}
		*raw = b
		return out, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return out, fmt.Errorf("curalink: decode response: %w", err)
	}
	return out, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body chiTransport.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil {
		apiErr.Code = string(body.Code)
		apiErr.Message = body.Message
	}
	return apiErr
}

func headerInt(h http.Header, key string, fallback int) int {
	v := h.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Archives lists the archives the gateway is configured with.
func (c *Client) Archives(ctx context.Context) (_ []Archive, err error) {
	start := time.Now()
	defer func() { c.obs.observe("archives", start, err) }()

	var out []Archive
	if _, err = c.get(ctx, "/api/archives", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health checks the gateway. A degraded gateway answers 503 with a report,
// which is returned without an error.
func (c *Client) Health(ctx context.Context) (_ HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	resp, err := c.send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return HealthStatus{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeError(resp)
	}
	var body chiTransport.HealthResponse
	if _, err = readInto(resp, &body); err != nil {
		return HealthStatus{}, err
	}
	checks := make(map[string]string, len(body.Checks))
	for k, v := range body.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:   string(body.Status),
		Checks:   checks,
		Archives: body.Archives,
	}, nil
}

// errEmptyName guards lookups that need a path id.
var errEmptyName = errors.New("curalink: name is required")
