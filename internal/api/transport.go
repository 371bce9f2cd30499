package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "http://127.0.0.1:10000"
	defaultUserAgent = "hactl/0.1"
	defaultTimeout   = 5 * time.Second
	maxBodyBytes     = 8 << 20
)

// Response is a raw HTTP response. Every status is returned normally so callers
// can inspect 4xx and 5xx bodies.
type Response struct {
	Status int
	Body   []byte
}

// Transport issues requests against the control-plane base URL. It never
// retries and never queues; concurrent calls are independent.
type Transport struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewTransport builds a Transport for baseURL. A zero timeout uses the default.
func NewTransport(baseURL string, timeout time.Duration) (*Transport, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Transport{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// URL resolves path against the base URL.
func (t *Transport) URL(path string) string {
	return t.baseURL.JoinPath(path).String()
}

// Do sends one request. body, when non-nil, is encoded as JSON. The only
// errors returned are *TransportError values.
func (t *Transport) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.URL(path), reader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
