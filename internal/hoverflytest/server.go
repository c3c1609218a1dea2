// Package hoverflytest serves a fake proxy admin API for tests.
package hoverflytest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/five82/hoverdeck/internal/hoverfly"
)

// Call records one request received by the fake.
type Call struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
	Headers  http.Header
}

// Server is an httptest server speaking the admin API under /api/v2.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	main     hoverfly.MainInfo
	mode     string
	state    map[string]string
	logs     []hoverfly.LogsItem
	cache    *string
	failures map[string]int
	shutdown bool
}

// New starts a fake admin API and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		mode:     "simulate",
		state:    map[string]string{},
		failures: map[string]int{},
		main: hoverfly.MainInfo{
			Destination: ".",
			Mode:        "simulate",
			Arguments:   hoverfly.Arguments{MatchingStrategy: "strongest"},
			Version:     "v1.10.0",
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record)

	api := e.Group("/api/v2")
	api.GET("/hoverfly", s.handleMainInfo)
	api.GET("/hoverfly/mode", s.handleMode)
	api.GET("/state", s.handleState)
	api.GET("/logs", s.handleLogs)
	api.DELETE("/cache", s.handleDeleteCache)
	api.DELETE("/shutdown", s.handleShutdown)

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

// SetMainInfo replaces the MainInfo payload.
func (s *Server) SetMainInfo(info hoverfly.MainInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.main = info
	s.mode = info.Mode
}

// SetLogs replaces the log records. Their Time fields must be RFC3339 for
// the from filter to apply.
func (s *Server) SetLogs(logs []hoverfly.LogsItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append([]hoverfly.LogsItem(nil), logs...)
}

// SetState replaces the state store.
func (s *Server) SetState(state map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = make(map[string]string, len(state))
	for k, v := range state {
		s.state[k] = v
	}
}

// SetCache sets the identifier returned by DELETE /cache.
func (s *Server) SetCache(cache *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = cache
}

// Fail makes requests to path (relative to /api/v2) answer with status.
// A zero status clears the failure.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// Calls returns a copy of the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded requests matching method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == "/api/v2"+path {
			out = append(out, c)
		}
	}
	return out
}

// ShutdownRequested reports whether DELETE /shutdown has been received.
func (s *Server) ShutdownRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:   req.Method,
			Path:     req.URL.Path,
			RawQuery: req.URL.RawQuery,
			Body:     string(body),
			Headers:  req.Header.Clone(),
		})
		status := s.failures[trimPrefix(req.URL.Path)]
		s.mu.Unlock()

		if status != 0 {
			return c.JSON(status, map[string]string{"error": http.StatusText(status)})
		}
		return next(c)
	}
}

func (s *Server) handleMainInfo(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.main)
}

func (s *Server) handleMode(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, hoverfly.ModeView{Mode: s.mode})
}

func (s *Server) handleState(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, hoverfly.StateView{State: s.state})
}

func (s *Server) handleLogs(c echo.Context) error {
	var from int64
	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from"})
		}
		from = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]hoverfly.LogsItem, 0, len(s.logs))
	for _, item := range s.logs {
		if from > 0 {
			ts := item.ParsedTime()
			if ts.IsZero() || ts.Unix() < from {
				continue
			}
		}
		logs = append(logs, item)
	}
	return c.JSON(http.StatusOK, hoverfly.LogsResponse{Logs: logs})
}

func (s *Server) handleDeleteCache(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, hoverfly.DeleteCache{Cache: s.cache})
}

func (s *Server) handleShutdown(c echo.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	return c.NoContent(http.StatusOK)
}

func trimPrefix(path string) string {
	const prefix = "/api/v2"
	if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return path
}
