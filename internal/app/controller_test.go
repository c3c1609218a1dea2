package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/hoverdeck/internal/state"
)

func TestController_ClearCacheRefetchesMainInfo(t *testing.T) {
	store, srv := newTestStore(t)
	c := NewController(context.Background(), store, nil, quietLogger())

	c.ClearCache()
	require.Eventually(t, func() bool {
		return store.Cache.State().Status() == state.StatusSuccess &&
			store.Main.State().Status() == state.StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	assert.Len(t, srv.CallsTo(http.MethodDelete, "/cache"), 1)
	assert.Len(t, srv.CallsTo(http.MethodGet, "/hoverfly"), 1)
}

func TestController_ClearCacheFailureSkipsRefetch(t *testing.T) {
	store, srv := newTestStore(t)
	srv.Fail("/cache", http.StatusInternalServerError)
	c := NewController(context.Background(), store, nil, quietLogger())

	c.ClearCache()
	require.Eventually(t, func() bool {
		return store.Cache.State().Status() == state.StatusError
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, srv.CallsTo(http.MethodGet, "/hoverfly"))
}

func TestController_Shutdown(t *testing.T) {
	store, srv := newTestStore(t)
	c := NewController(context.Background(), store, nil, quietLogger())

	c.Shutdown()
	require.Eventually(t, func() bool {
		return store.Shutdown.State().Status() == state.StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, srv.ShutdownRequested())
}

func TestController_SetLogsFrom(t *testing.T) {
	store, _ := newTestStore(t)
	p := NewLogsPoller(store, time.Hour, quietLogger())
	c := NewController(context.Background(), store, p, quietLogger())

	from := time.Unix(1700000000, 0)
	c.SetLogsFrom(&from)
	require.NotNil(t, p.Query().From)
	assert.Equal(t, int64(1700000000), *p.Query().From)

	c.SetLogsFrom(nil)
	assert.Nil(t, p.Query().From)
}
