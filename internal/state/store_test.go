package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/hoverdeck/internal/hoverfly"
)

// fakeFacade answers from fields and records calls. Logs requests block on
// a per-from gate when one is registered.
type fakeFacade struct {
	mu         sync.Mutex
	main       hoverfly.MainInfo
	mainErr    error
	mainCalls  int
	cacheCalls int
	logsCalls  []hoverfly.LogsQuery
	gates      map[int64]chan struct{}
	started    chan hoverfly.LogsQuery
}

func newFakeFacade() *fakeFacade {
	return &fakeFacade{
		gates:   map[int64]chan struct{}{},
		started: make(chan hoverfly.LogsQuery, 8),
	}
}

func (f *fakeFacade) gate(from int64) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[from] = ch
	return ch
}

func (f *fakeFacade) FetchMainInfo(ctx context.Context) (hoverfly.Response[hoverfly.MainInfo], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mainCalls++
	if f.mainErr != nil {
		return hoverfly.Response[hoverfly.MainInfo]{}, f.mainErr
	}
	return hoverfly.Response[hoverfly.MainInfo]{Data: f.main, Status: 200, StatusText: "OK"}, nil
}

func (f *fakeFacade) FetchDeleteCache(ctx context.Context) (hoverfly.Response[hoverfly.DeleteCache], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cacheCalls++
	id := "cleared"
	return hoverfly.Response[hoverfly.DeleteCache]{Data: hoverfly.DeleteCache{Cache: &id}, Status: 200}, nil
}

func (f *fakeFacade) FetchShutdown(ctx context.Context) (hoverfly.Response[struct{}], error) {
	return hoverfly.Response[struct{}]{Status: 200}, nil
}

func (f *fakeFacade) FetchLogs(ctx context.Context, query hoverfly.LogsQuery) (hoverfly.Response[hoverfly.LogsResponse], error) {
	f.mu.Lock()
	f.logsCalls = append(f.logsCalls, query)
	var gate chan struct{}
	if query.From != nil {
		gate = f.gates[*query.From]
	}
	f.mu.Unlock()

	select {
	case f.started <- query:
	default:
	}
	if gate != nil {
		<-gate
	}
	msg := query.String()
	return hoverfly.Response[hoverfly.LogsResponse]{
		Data:   hoverfly.LogsResponse{Logs: []hoverfly.LogsItem{{Msg: msg}}},
		Status: 200,
	}, nil
}

func (f *fakeFacade) FetchStatus(ctx context.Context) (hoverfly.Response[hoverfly.ModeView], error) {
	return hoverfly.Response[hoverfly.ModeView]{Data: hoverfly.ModeView{Mode: "simulate"}, Status: 200}, nil
}

func (f *fakeFacade) FetchServerState(ctx context.Context) (hoverfly.Response[hoverfly.StateView], error) {
	return hoverfly.Response[hoverfly.StateView]{Data: hoverfly.StateView{State: map[string]string{"k": "v"}}, Status: 200}, nil
}

func from(v int64) hoverfly.LogsQuery {
	return hoverfly.LogsQuery{From: &v}
}

func waitResult[T any](t *testing.T, ch <-chan Resource[T]) Resource[T] {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return Resource[T]{}
	}
}

func TestStore_InitialStateIsIdle(t *testing.T) {
	s := NewStore(newFakeFacade())
	snap := s.Snapshot()
	assert.Equal(t, StatusIdle, snap.Main.Status())
	assert.Equal(t, StatusIdle, snap.Logs.Status())
	assert.Equal(t, StatusIdle, snap.Cache.Status())
	assert.False(t, snap.Online)
}

func TestSlice_LoadingBeforeResponse(t *testing.T) {
	api := newFakeFacade()
	release := api.gate(1)
	s := NewStore(api)

	done := s.Logs.Trigger(context.Background(), from(1))
	assert.Equal(t, StatusLoading, s.Logs.State().Status())

	<-api.started
	assert.Equal(t, StatusLoading, s.Logs.State().Status(), "still loading while the call is blocked")

	close(release)
	res := waitResult(t, done)
	assert.Equal(t, StatusSuccess, res.Status())
	assert.Equal(t, StatusSuccess, s.Logs.State().Status())
}

func TestSlice_SuccessCarriesDecodedBody(t *testing.T) {
	api := newFakeFacade()
	api.main = hoverfly.MainInfo{Mode: "spy", Version: "v1"}
	s := NewStore(api)

	res := s.Main.Do(context.Background(), struct{}{})
	v, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, api.main, v)
	assert.NoError(t, res.Err())

	got, ok := s.Snapshot().Main.Value()
	require.True(t, ok)
	assert.Equal(t, api.main, got)
}

func TestSlice_FailureBecomesErrorState(t *testing.T) {
	api := newFakeFacade()
	boom := errors.New("connection refused")
	api.mainErr = boom
	s := NewStore(api)

	res := s.Main.Do(context.Background(), struct{}{})
	assert.Equal(t, StatusError, res.Status())
	assert.ErrorIs(t, s.Main.State().Err(), boom)
	_, ok := s.Main.State().Value()
	assert.False(t, ok)
}

func TestSlice_RetriggerResetsToLoading(t *testing.T) {
	api := newFakeFacade()
	api.mainErr = errors.New("down")
	s := NewStore(api)
	s.Main.Do(context.Background(), struct{}{})
	require.Equal(t, StatusError, s.Main.State().Status())

	api.mu.Lock()
	api.mainErr = nil
	api.mu.Unlock()

	done := s.Main.Trigger(context.Background(), struct{}{})
	// The trigger is synchronous up to the loading transition, but the fake
	// may already have answered, so accept either loading or success here.
	st := s.Main.State().Status()
	assert.Contains(t, []Status{StatusLoading, StatusSuccess}, st)
	waitResult(t, done)
	assert.Equal(t, StatusSuccess, s.Main.State().Status())
	assert.Equal(t, StatusSuccess, s.Main.Settled().Status())
}

func TestSlice_LogsPassesFromExactly(t *testing.T) {
	api := newFakeFacade()
	s := NewStore(api)

	s.Logs.Do(context.Background(), from(1700000000))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.logsCalls, 1)
	require.NotNil(t, api.logsCalls[0].From)
	assert.Equal(t, int64(1700000000), *api.logsCalls[0].From)
	assert.Equal(t, from(1700000000), s.Logs.Params())
}

func TestSlice_CacheDeletionOncePerInvocation(t *testing.T) {
	api := newFakeFacade()
	s := NewStore(api)

	s.Cache.Do(context.Background(), struct{}{})
	s.Cache.Do(context.Background(), struct{}{})

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 2, api.cacheCalls)
	v, ok := s.Cache.State().Value()
	require.True(t, ok)
	assert.Equal(t, "cleared", *v.Cache)
}

func TestSlice_IdempotentTrigger(t *testing.T) {
	api := newFakeFacade()
	api.main = hoverfly.MainInfo{Mode: "simulate"}
	s := NewStore(api)

	first, _ := s.Main.Do(context.Background(), struct{}{}).Value()
	second, _ := s.Main.Do(context.Background(), struct{}{}).Value()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, api.mainCalls)
}

func runRace(t *testing.T, policy Policy) Snapshot {
	t.Helper()
	api := newFakeFacade()
	releaseA := api.gate(100)
	releaseB := api.gate(200)
	s := NewStore(api, WithPolicy(policy))

	doneA := s.Logs.Trigger(context.Background(), from(100))
	<-api.started
	doneB := s.Logs.Trigger(context.Background(), from(200))
	<-api.started

	close(releaseB)
	waitResult(t, doneB)
	close(releaseA)
	resA := waitResult(t, doneA)
	assert.Equal(t, StatusSuccess, resA.Status(), "the superseded call still reports its own outcome")

	return s.Snapshot()
}

func TestSlice_RaceLatestIssuedKeepsNewest(t *testing.T) {
	snap := runRace(t, LatestIssued)
	v, ok := snap.Logs.Value()
	require.True(t, ok)
	assert.Equal(t, "from=200", v.Logs[0].Msg)
	assert.Equal(t, from(200), snap.LogsQuery)
}

func TestSlice_RaceCompletionOrderLastWriteWins(t *testing.T) {
	snap := runRace(t, CompletionOrder)
	v, ok := snap.Logs.Value()
	require.True(t, ok)
	assert.Equal(t, "from=100", v.Logs[0].Msg)
	assert.Equal(t, from(100), snap.LogsQuery)
}

func TestStore_SubscribeSignalsTransitions(t *testing.T) {
	s := NewStore(newFakeFacade())
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Status.Do(context.Background(), struct{}{})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no signal after transition")
	}
	assert.True(t, s.Snapshot().Online)

	unsubscribe()
	unsubscribe()
	s.Status.Do(context.Background(), struct{}{})
	// Drain anything sent before unsubscribing; nothing new may arrive.
	select {
	case <-ch:
	default:
	}
	select {
	case <-ch:
		t.Fatal("signal after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_SnapshotClonesCollections(t *testing.T) {
	s := NewStore(newFakeFacade())
	s.Logs.Do(context.Background(), hoverfly.LogsQuery{})
	s.ServerState.Do(context.Background(), struct{}{})

	snap := s.Snapshot()
	logs, _ := snap.Logs.Value()
	logs.Logs[0].Msg = "mutated"
	st, _ := snap.ServerState.Value()
	st.State["k"] = "mutated"

	again := s.Snapshot()
	logs2, _ := again.Logs.Value()
	st2, _ := again.ServerState.Value()
	assert.Equal(t, "all", logs2.Logs[0].Msg)
	assert.Equal(t, "v", st2.State["k"])
}

func TestSlice_NilFacadeFails(t *testing.T) {
	s := NewStore(nil)
	res := s.Main.Do(context.Background(), struct{}{})
	assert.ErrorIs(t, res.Err(), hoverfly.ErrNilClient)
}

func TestStore_SnapshotPairsLogsWithTheirQuery(t *testing.T) {
	s := NewStore(newFakeFacade())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int64(1); ctx.Err() == nil; i++ {
			s.Logs.Do(ctx, from(i))
		}
	}()

	deadline := time.Now().Add(300 * time.Millisecond)
	checked := 0
	for time.Now().Before(deadline) {
		snap := s.Snapshot()
		v, ok := snap.Logs.Value()
		if !ok {
			continue
		}
		require.Len(t, v.Logs, 1)
		require.Equal(t, snap.LogsQuery.String(), v.Logs[0].Msg, "logs labelled with another query")
		checked++
	}
	cancel()
	<-done
	assert.Positive(t, checked)
}

func TestStore_SnapshotOnlineMatchesSettledStatus(t *testing.T) {
	s := NewStore(newFakeFacade())
	ctx := context.Background()

	assert.False(t, s.Snapshot().Online)
	s.Status.Do(ctx, struct{}{})
	snap := s.Snapshot()
	assert.True(t, snap.Online)
	assert.Equal(t, StatusSuccess, snap.Status.Status())

	// A poll in flight keeps the last settled result.
	s.Status.Trigger(ctx, struct{}{})
	assert.True(t, s.Snapshot().Online)
}
