package state

import (
	"context"
	"maps"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/hoverfly"
)

// Slice keys, as they appear in logs.
const (
	SliceMain        = "main"
	SliceStatus      = "status"
	SliceCache       = "cache"
	SliceShutdown    = "shutdown"
	SliceLogs        = "logs"
	SliceServerState = "serverState"
)

// Snapshot is a copy of every slice at a point in time.
type Snapshot struct {
	Main        Resource[hoverfly.MainInfo]
	Status      Resource[hoverfly.ModeView]
	Cache       Resource[hoverfly.DeleteCache]
	Shutdown    Resource[struct{}]
	Logs        Resource[hoverfly.LogsResponse]
	LogsQuery   hoverfly.LogsQuery
	ServerState Resource[hoverfly.StateView]

	// Online is true when the most recent completed status fetch succeeded.
	Online bool
}

// Store composes all slices into one state tree. The facade is passed in
// explicitly and shared by every slice.
type Store struct {
	Main        *Slice[struct{}, hoverfly.MainInfo]
	Status      *Slice[struct{}, hoverfly.ModeView]
	Cache       *Slice[struct{}, hoverfly.DeleteCache]
	Shutdown    *Slice[struct{}, struct{}]
	Logs        *Slice[hoverfly.LogsQuery, hoverfly.LogsResponse]
	ServerState *Slice[struct{}, hoverfly.StateView]

	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

type storeOptions struct {
	policy Policy
	log    logrus.FieldLogger
}

// StoreOption customises NewStore.
type StoreOption func(*storeOptions)

// WithPolicy sets the ordering policy of every slice.
func WithPolicy(p Policy) StoreOption {
	return func(o *storeOptions) { o.policy = p }
}

// WithLogger routes slice logging to logger.
func WithLogger(logger logrus.FieldLogger) StoreOption {
	return func(o *storeOptions) {
		if logger != nil {
			o.log = logger
		}
	}
}

// NewStore builds the store around api.
func NewStore(api hoverfly.Facade, opts ...StoreOption) *Store {
	o := storeOptions{policy: LatestIssued, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{subs: make(map[int]chan struct{})}
	s.Main = newSlice(SliceMain, api, fetchMainInfo, o.policy, s.broadcast, o.log)
	s.Status = newSlice(SliceStatus, api, fetchStatus, o.policy, s.broadcast, o.log)
	s.Cache = newSlice(SliceCache, api, fetchDeleteCache, o.policy, s.broadcast, o.log)
	s.Shutdown = newSlice(SliceShutdown, api, fetchShutdown, o.policy, s.broadcast, o.log)
	s.Logs = newSlice(SliceLogs, api, fetchLogs, o.policy, s.broadcast, o.log)
	s.ServerState = newSlice(SliceServerState, api, fetchServerState, o.policy, s.broadcast, o.log)
	return s
}

// Snapshot returns a copy of the current state tree.
func (s *Store) Snapshot() Snapshot {
	status, settled, _ := s.Status.view()
	logs, _, query := s.Logs.view()
	return Snapshot{
		Main:        s.Main.State(),
		Status:      status,
		Cache:       s.Cache.State(),
		Shutdown:    s.Shutdown.State(),
		Logs:        cloneLogs(logs),
		LogsQuery:   query,
		ServerState: cloneServerState(s.ServerState.State()),
		Online:      settled.Status() == StatusSuccess,
	}
}

// Subscribe returns a channel that receives a signal after any slice
// transition. Signals coalesce: a slow reader sees at least one pending
// signal, not one per transition. The returned func unsubscribes.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func data[T any](resp hoverfly.Response[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Data, nil
}

func fetchMainInfo(ctx context.Context, api hoverfly.Facade, _ struct{}) (hoverfly.MainInfo, error) {
	return data(api.FetchMainInfo(ctx))
}

func fetchStatus(ctx context.Context, api hoverfly.Facade, _ struct{}) (hoverfly.ModeView, error) {
	return data(api.FetchStatus(ctx))
}

func fetchDeleteCache(ctx context.Context, api hoverfly.Facade, _ struct{}) (hoverfly.DeleteCache, error) {
	return data(api.FetchDeleteCache(ctx))
}

func fetchShutdown(ctx context.Context, api hoverfly.Facade, _ struct{}) (struct{}, error) {
	return data(api.FetchShutdown(ctx))
}

func fetchLogs(ctx context.Context, api hoverfly.Facade, query hoverfly.LogsQuery) (hoverfly.LogsResponse, error) {
	return data(api.FetchLogs(ctx, query))
}

func fetchServerState(ctx context.Context, api hoverfly.Facade, _ struct{}) (hoverfly.StateView, error) {
	return data(api.FetchServerState(ctx))
}

func cloneLogs(r Resource[hoverfly.LogsResponse]) Resource[hoverfly.LogsResponse] {
	v, ok := r.Value()
	if !ok || len(v.Logs) == 0 {
		return r
	}
	dup := make([]hoverfly.LogsItem, len(v.Logs))
	copy(dup, v.Logs)
	return Succeeded(hoverfly.LogsResponse{Logs: dup})
}

func cloneServerState(r Resource[hoverfly.StateView]) Resource[hoverfly.StateView] {
	v, ok := r.Value()
	if !ok || v.State == nil {
		return r
	}
	return Succeeded(hoverfly.StateView{State: maps.Clone(v.State)})
}
