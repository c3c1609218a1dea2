package hoverfly

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "http://127.0.0.1:8888/api/v2" {
		t.Fatalf("base = %q, want http://127.0.0.1:8888/api/v2", u.String())
	}

	u, err = parseBaseURL("https://proxy.example.com:1234/admin/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://proxy.example.com:1234/admin" {
		t.Fatalf("base = %q, want path kept and query dropped", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL returned nil error for missing host")
	}
}

func TestRequest_DoBuildsEnvelope(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotAgent, gotRequestID, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotCustom = r.Header.Get("X-Custom")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Trace", "abc")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"mode":"spy"}`)
	}))
	t.Cleanup(server.Close)

	r, err := NewRequest(server.URL)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	resp, err := Get[ModeView](ctx, r, "/hoverfly/mode?x=1", &RequestConfig{Headers: map[string]string{"X-Custom": "yes"}})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if gotPath != "/api/v2/hoverfly/mode" || gotQuery != "x=1" {
		t.Fatalf("request = %s?%s, want /api/v2/hoverfly/mode?x=1", gotPath, gotQuery)
	}
	if !strings.HasPrefix(gotAgent, "hoverdeck/") {
		t.Fatalf("User-Agent = %q, want hoverdeck/*", gotAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-Id not set")
	}
	if gotCustom != "yes" {
		t.Fatalf("X-Custom = %q, want header override applied", gotCustom)
	}
	if resp.Data.Mode != "spy" {
		t.Fatalf("Data = %#v, want mode spy", resp.Data)
	}
	if resp.Status != http.StatusAccepted || resp.StatusText != "Accepted" {
		t.Fatalf("status = %d %q, want 202 Accepted", resp.Status, resp.StatusText)
	}
	if resp.Headers["x-trace"] != "abc" {
		t.Fatalf("Headers = %v, want x-trace=abc", resp.Headers)
	}
}

func TestRequest_PostSendsJSONBody(t *testing.T) {
	t.Parallel()

	var gotBody, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	r, err := NewRequest(server.URL)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	resp, err := Post[struct{}](context.Background(), r, "/hoverfly/mode", ModeView{Mode: "capture"}, nil)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if gotBody != `{"mode":"capture"}` {
		t.Fatalf("body = %q, want encoded mode", gotBody)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestRequest_StatusAndDecodeErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/hoverfly":
			_, _ = io.WriteString(w, "{not-json")
		case "/api/v2/cache":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	r, err := NewRequest(server.URL)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	_, err = Get[MainInfo](context.Background(), r, "/hoverfly", nil)
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("Get error = %v, want decode response error", err)
	}

	resp, err := Delete[DeleteCache](context.Background(), r, "/cache", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Delete error = %v, want *StatusError", err)
	}
	if statusErr.Status != http.StatusInternalServerError || statusErr.Body != "nope" {
		t.Fatalf("StatusError = %#v, want 500 with body nope", statusErr)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Fatalf("envelope status = %d, want 500 passed through", resp.Status)
	}
}

func TestRequest_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	r, err := NewRequest(addr)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	_, err = r.Get(context.Background(), "/hoverfly", nil)
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("Get error = %v, want execute request error", err)
	}
}

func TestRequest_RejectsAbsolutePaths(t *testing.T) {
	r, err := NewRequest("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	if _, err := r.Get(context.Background(), "http://elsewhere/api", nil); err == nil {
		t.Fatalf("Get returned nil error for absolute URL")
	}
}

func TestNilRequester(t *testing.T) {
	var r *Request
	if _, err := r.Get(context.Background(), "/hoverfly", nil); !errors.Is(err, ErrNilClient) {
		t.Fatalf("nil Request error = %v, want ErrNilClient", err)
	}
	var a *API
	if _, err := a.FetchMainInfo(context.Background()); !errors.Is(err, ErrNilClient) {
		t.Fatalf("nil API error = %v, want ErrNilClient", err)
	}
}
