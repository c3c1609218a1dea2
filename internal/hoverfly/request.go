package hoverfly

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNilClient is returned when an operation is invoked on a nil adapter or facade.
var ErrNilClient = errors.New("client is nil")

// RequestConfig carries per-request header overrides.
type RequestConfig struct {
	Headers map[string]string
}

// Response is the envelope returned by every adapter call.
type Response[T any] struct {
	Data       T
	Status     int
	StatusText string
	Headers    map[string]string
}

// Requester performs raw requests against a fixed base URL. It is implemented
// by *Request and can be replaced in tests.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, cfg *RequestConfig) (Response[[]byte], error)
}

// Ensure Request implements Requester at compile time.
var _ Requester = (*Request)(nil)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	Status     int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
	if e.StatusText != "" {
		msg += " " + e.StatusText
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Request talks to the admin API rooted at a base URL fixed at construction.
type Request struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       logrus.FieldLogger
}

const (
	defaultAdminBind = "127.0.0.1:8888"
	defaultAPIPath   = "/api/v2"
	defaultUserAgent = "hoverdeck/0.1"
	requestTimeout   = 5 * time.Second
	maxErrorBody     = 512
)

// Option customises a Request.
type Option func(*Request)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Request) {
		if client != nil {
			r.http = client
		}
	}
}

// WithLogger routes request logging to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Request) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(r *Request) {
		if agent = strings.TrimSpace(agent); agent != "" {
			r.userAgent = agent
		}
	}
}

// NewRequest builds a Request for the admin API at adminBind. A bare
// host:port gets the http scheme and the /api/v2 prefix.
func NewRequest(adminBind string, opts ...Option) (*Request, error) {
	base, err := parseBaseURL(adminBind)
	if err != nil {
		return nil, err
	}
	r := &Request{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// BaseURL returns the fixed base URL requests are resolved against.
func (r *Request) BaseURL() string {
	if r == nil {
		return ""
	}
	return r.baseURL.String()
}

// Get performs a GET against path.
func (r *Request) Get(ctx context.Context, path string, cfg *RequestConfig) (Response[[]byte], error) {
	return r.Do(ctx, http.MethodGet, path, nil, cfg)
}

// Post performs a POST with a JSON encoded body.
func (r *Request) Post(ctx context.Context, path string, body any, cfg *RequestConfig) (Response[[]byte], error) {
	return r.Do(ctx, http.MethodPost, path, body, cfg)
}

// Delete performs a DELETE without a body.
func (r *Request) Delete(ctx context.Context, path string, cfg *RequestConfig) (Response[[]byte], error) {
	return r.Do(ctx, http.MethodDelete, path, nil, cfg)
}

// Do executes a single request. There are no retries: transport failures are
// returned wrapped and non-2xx responses return a *StatusError alongside the
// envelope.
func (r *Request) Do(ctx context.Context, method, path string, body any, cfg *RequestConfig) (Response[[]byte], error) {
	if r == nil {
		return Response[[]byte]{}, ErrNilClient
	}
	reqURL, err := r.resolve(path)
	if err != nil {
		return Response[[]byte]{}, err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Response[[]byte]{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return Response[[]byte]{}, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cfg != nil {
		for k, v := range cfg.Headers {
			req.Header.Set(k, v)
		}
	}

	entry := r.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       reqURL.Path,
	})

	started := time.Now()
	resp, err := r.http.Do(req)
	if err != nil {
		entry.WithError(err).Debug("admin request failed")
		return Response[[]byte]{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response[[]byte]{}, fmt.Errorf("read response: %w", err)
	}

	out := Response[[]byte]{
		Data:       payload,
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    flattenHeaders(resp.Header),
	}
	entry.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("admin request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{
			Method:     method,
			Path:       path,
			Status:     resp.StatusCode,
			StatusText: out.StatusText,
			Body:       truncateBody(payload),
		}
	}
	return out, nil
}

// Get performs a GET and decodes the body into T.
func Get[T any](ctx context.Context, r Requester, path string, cfg *RequestConfig) (Response[T], error) {
	if r == nil {
		return Response[T]{}, ErrNilClient
	}
	return decode[T](r.Do(ctx, http.MethodGet, path, nil, cfg))
}

// Post performs a POST with body and decodes the response into T.
func Post[T any](ctx context.Context, r Requester, path string, body any, cfg *RequestConfig) (Response[T], error) {
	if r == nil {
		return Response[T]{}, ErrNilClient
	}
	return decode[T](r.Do(ctx, http.MethodPost, path, body, cfg))
}

// Delete performs a DELETE and decodes the response into T.
func Delete[T any](ctx context.Context, r Requester, path string, cfg *RequestConfig) (Response[T], error) {
	if r == nil {
		return Response[T]{}, ErrNilClient
	}
	return decode[T](r.Do(ctx, http.MethodDelete, path, nil, cfg))
}

func decode[T any](raw Response[[]byte], err error) (Response[T], error) {
	out := Response[T]{
		Status:     raw.Status,
		StatusText: raw.StatusText,
		Headers:    raw.Headers,
	}
	if err != nil {
		return out, err
	}
	if len(bytes.TrimSpace(raw.Data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw.Data, &out.Data); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (r *Request) resolve(path string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return nil, fmt.Errorf("path %q must be relative", path)
	}
	u := r.baseURL.JoinPath(rel.Path)
	u.RawQuery = rel.RawQuery
	return u, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		out[strings.ToLower(k)] = v[0]
	}
	return out
}

func truncateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		return text[:maxErrorBody] + "…"
	}
	return text
}

func parseBaseURL(adminBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(adminBind)
	if trimmed == "" {
		trimmed = defaultAdminBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse admin bind %q: %w", adminBind, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse admin bind %q: missing host", adminBind)
	}
	if strings.Trim(u.Path, "/") == "" {
		u.Path = defaultAPIPath
	}
	u.Path = "/" + strings.Trim(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
