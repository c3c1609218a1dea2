package hoverfly

import (
	"context"
	"net/url"
	"strconv"
)

// Facade is the set of named admin operations the state layer depends on.
// It is implemented by *API and can be faked in tests.
type Facade interface {
	FetchMainInfo(ctx context.Context) (Response[MainInfo], error)
	FetchDeleteCache(ctx context.Context) (Response[DeleteCache], error)
	FetchShutdown(ctx context.Context) (Response[struct{}], error)
	FetchLogs(ctx context.Context, query LogsQuery) (Response[LogsResponse], error)
	FetchStatus(ctx context.Context) (Response[ModeView], error)
	FetchServerState(ctx context.Context) (Response[StateView], error)
}

// Ensure API implements Facade at compile time.
var _ Facade = (*API)(nil)

const (
	pathMainInfo = "/hoverfly"
	pathMode     = "/hoverfly/mode"
	pathCache    = "/cache"
	pathShutdown = "/shutdown"
	pathLogs     = "/logs"
	pathState    = "/state"
)

// API maps admin operations onto fixed paths of a Requester.
type API struct {
	req Requester
}

// NewAPI wraps req.
func NewAPI(req Requester) *API {
	return &API{req: req}
}

// FetchMainInfo retrieves the proxy configuration snapshot.
func (a *API) FetchMainInfo(ctx context.Context) (Response[MainInfo], error) {
	if a == nil {
		return Response[MainInfo]{}, ErrNilClient
	}
	return Get[MainInfo](ctx, a.req, pathMainInfo, nil)
}

// FetchDeleteCache clears the proxy cache.
func (a *API) FetchDeleteCache(ctx context.Context) (Response[DeleteCache], error) {
	if a == nil {
		return Response[DeleteCache]{}, ErrNilClient
	}
	return Delete[DeleteCache](ctx, a.req, pathCache, nil)
}

// FetchShutdown asks the proxy to shut down.
func (a *API) FetchShutdown(ctx context.Context) (Response[struct{}], error) {
	if a == nil {
		return Response[struct{}]{}, ErrNilClient
	}
	return Delete[struct{}](ctx, a.req, pathShutdown, nil)
}

// FetchLogs retrieves log records, optionally starting at query.From.
func (a *API) FetchLogs(ctx context.Context, query LogsQuery) (Response[LogsResponse], error) {
	if a == nil {
		return Response[LogsResponse]{}, ErrNilClient
	}
	rel := &url.URL{Path: pathLogs}
	if query.From != nil {
		values := url.Values{}
		values.Set("from", strconv.FormatInt(*query.From, 10))
		rel.RawQuery = values.Encode()
	}
	return Get[LogsResponse](ctx, a.req, rel.String(), nil)
}

// FetchStatus retrieves the current proxy mode. A successful answer is what
// marks the proxy as online.
func (a *API) FetchStatus(ctx context.Context) (Response[ModeView], error) {
	if a == nil {
		return Response[ModeView]{}, ErrNilClient
	}
	return Get[ModeView](ctx, a.req, pathMode, nil)
}

// FetchServerState retrieves the proxy's key/value state store.
func (a *API) FetchServerState(ctx context.Context) (Response[StateView], error) {
	if a == nil {
		return Response[StateView]{}, ErrNilClient
	}
	return Get[StateView](ctx, a.req, pathState, nil)
}
