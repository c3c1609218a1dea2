package hoverfly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MainInfo mirrors the configuration snapshot returned by GET /hoverfly.
type MainInfo struct {
	Cors          CorsInfo    `json:"cors"`
	Destination   string      `json:"destination"`
	Middleware    *Middleware `json:"middleware,omitempty"`
	Mode          string      `json:"mode"`
	Arguments     Arguments   `json:"arguments"`
	IsWebServer   bool        `json:"isWebServer"`
	Usage         Usage       `json:"usage"`
	Version       string      `json:"version"`
	UpstreamProxy string      `json:"upstreamProxy"`
}

// CorsInfo describes the proxy's CORS policy.
type CorsInfo struct {
	Enabled          bool   `json:"enabled"`
	AllowOrigin      string `json:"allowOrigin,omitempty"`
	AllowMethods     string `json:"allowMethods,omitempty"`
	AllowHeaders     string `json:"allowHeaders,omitempty"`
	PreflightMaxAge  int64  `json:"preflightMaxAge,omitempty"`
	AllowCredentials bool   `json:"allowCredentials,omitempty"`
}

// Middleware describes the configured middleware, if any.
type Middleware struct {
	Binary string `json:"binary"`
	Script string `json:"script"`
	Remote string `json:"remote"`
}

// IsZero reports whether no middleware is configured.
func (m *Middleware) IsZero() bool {
	return m == nil || (m.Binary == "" && m.Script == "" && m.Remote == "")
}

// Arguments holds mode arguments.
type Arguments struct {
	MatchingStrategy string `json:"matchingStrategy"`
}

// Usage wraps per-mode request counters.
type Usage struct {
	Counters Counters `json:"counters"`
}

// Counters counts requests handled in each mode.
type Counters struct {
	Capture    int64 `json:"capture"`
	Diff       int64 `json:"diff"`
	Modify     int64 `json:"modify"`
	Simulate   int64 `json:"simulate"`
	Spy        int64 `json:"spy"`
	Synthesize int64 `json:"synthesize"`
}

// Total sums all counters.
func (c Counters) Total() int64 {
	return c.Capture + c.Diff + c.Modify + c.Simulate + c.Spy + c.Synthesize
}

// DeleteCache is the result of DELETE /cache.
type DeleteCache struct {
	Cache *string `json:"cache"`
}

// ModeView is returned by GET /hoverfly/mode.
type ModeView struct {
	Mode string `json:"mode"`
}

// StateView is returned by GET /state.
type StateView struct {
	State map[string]string `json:"state"`
}

// LogsResponse is returned by GET /logs.
type LogsResponse struct {
	Logs []LogsItem `json:"logs"`
}

// LogsQuery filters GET /logs. From is seconds since the epoch.
type LogsQuery struct {
	From *int64
}

// LogsFrom returns a query starting at t, truncated to whole seconds.
func LogsFrom(t time.Time) LogsQuery {
	from := t.Unix()
	return LogsQuery{From: &from}
}

// Equal reports whether both queries carry the same filter.
func (q LogsQuery) Equal(other LogsQuery) bool {
	switch {
	case q.From == nil && other.From == nil:
		return true
	case q.From == nil || other.From == nil:
		return false
	default:
		return *q.From == *other.From
	}
}

func (q LogsQuery) String() string {
	if q.From == nil {
		return "all"
	}
	return "from=" + strconv.FormatInt(*q.From, 10)
}

// LogsItem is a single proxy log record. Exactly one group of the optional
// context fields is expected to be set; see Context.
type LogsItem struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`

	// Logged when the webserver starts.
	WebserverDestination string `json:"Destination,omitempty"`
	WebserverMode        string `json:"Mode,omitempty"`
	WebserverPort        Port   `json:"WebserverPort,omitempty"`

	// Logged when the proxy starts.
	Destination string `json:"destination,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Port        Port   `json:"port,omitempty"`

	Middleware string `json:"middleware,omitempty"`
	Payload    string `json:"payload,omitempty"`

	Command string `json:"command,omitempty"`
	Stdin   string `json:"stdin,omitempty"`

	Failed     *int64 `json:"failed,omitempty"`
	Successful *int64 `json:"successful,omitempty"`
	Total      *int64 `json:"total,omitempty"`

	AdminPort Port            `json:"AdminPort,omitempty"`
	JSON      json.RawMessage `json:"json,omitempty"`
}

// ParsedTime returns the record timestamp, or the zero time when unparsable.
func (l LogsItem) ParsedTime() time.Time {
	return parseTime(l.Time)
}

// Port accepts either a JSON string or number.
type Port string

// UnmarshalJSON implements json.Unmarshaler.
func (p *Port) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = Port(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	*p = Port(n.String())
	return nil
}

// LogContextKind is the discriminant inferred for a LogsItem.
type LogContextKind int

const (
	LogContextNone LogContextKind = iota
	LogContextWebserver
	LogContextProxy
	LogContextMiddleware
	LogContextCommand
	LogContextCounters
	LogContextAdminPort
	LogContextJSON
)

func (k LogContextKind) String() string {
	switch k {
	case LogContextWebserver:
		return "webserver"
	case LogContextProxy:
		return "proxy"
	case LogContextMiddleware:
		return "middleware"
	case LogContextCommand:
		return "command"
	case LogContextCounters:
		return "counters"
	case LogContextAdminPort:
		return "admin-port"
	case LogContextJSON:
		return "json"
	default:
		return "none"
	}
}

// LogField is one key=value pair of additional context.
type LogField struct {
	Key   string
	Value string
}

// LogContext is the additional context of a LogsItem as a tagged union.
type LogContext struct {
	Kind   LogContextKind
	Fields []LogField
}

func (c LogContext) String() string {
	parts := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		parts = append(parts, f.Key+"="+f.Value)
	}
	return strings.Join(parts, " ")
}

// Context infers which group of optional fields is populated. The backend
// sends no type tag, so groups are checked in a fixed precedence and the
// first complete group wins.
func (l LogsItem) Context() LogContext {
	switch {
	case l.WebserverDestination != "" && l.WebserverMode != "" && l.WebserverPort != "":
		return LogContext{Kind: LogContextWebserver, Fields: []LogField{
			{"Destination", l.WebserverDestination},
			{"Mode", l.WebserverMode},
			{"WebserverPort", string(l.WebserverPort)},
		}}
	case l.Destination != "" && l.Mode != "" && l.Port != "":
		return LogContext{Kind: LogContextProxy, Fields: []LogField{
			{"destination", l.Destination},
			{"mode", l.Mode},
			{"port", string(l.Port)},
		}}
	case l.Middleware != "" && l.Payload != "":
		return LogContext{Kind: LogContextMiddleware, Fields: []LogField{
			{"middleware", l.Middleware},
			{"payload", l.Payload},
		}}
	case l.Command != "" && l.Stdin != "":
		return LogContext{Kind: LogContextCommand, Fields: []LogField{
			{"command", l.Command},
			{"stdin", l.Stdin},
		}}
	case l.Failed != nil && l.Successful != nil && l.Total != nil:
		return LogContext{Kind: LogContextCounters, Fields: []LogField{
			{"failed", strconv.FormatInt(*l.Failed, 10)},
			{"successful", strconv.FormatInt(*l.Successful, 10)},
			{"total", strconv.FormatInt(*l.Total, 10)},
		}}
	case l.AdminPort != "":
		return LogContext{Kind: LogContextAdminPort, Fields: []LogField{
			{"AdminPort", string(l.AdminPort)},
		}}
	case len(l.JSON) > 0 && !bytes.Equal(bytes.TrimSpace(l.JSON), []byte("null")):
		return LogContext{Kind: LogContextJSON, Fields: []LogField{
			{"json", jsonText(l.JSON)},
		}}
	default:
		return LogContext{Kind: LogContextNone}
	}
}

// jsonText unquotes JSON strings and compacts anything else.
func jsonText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
