package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"commerce-console/internal/client"
	"commerce-console/internal/orchestrator"
	"commerce-console/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsole(t *testing.T, hits *int64) *orchestrator.Console {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]struct{}{})
	}))
	t.Cleanup(srv.Close)

	hc := srv.Client()
	return orchestrator.New(
		client.NewCatalog(srv.URL, hc),
		client.NewGroupBuys(srv.URL, hc),
		client.NewOrders(srv.URL, hc),
		client.NewUsers(srv.URL, hc),
		session.NewManager(session.NewMemoryStore(), time.Hour),
		nil,
		5,
	)
}

func TestRefresherReloadsOnInterval(t *testing.T) {
	var hits int64
	r := NewRefresher(newConsole(t, &hits), 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&hits) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	r.Stop()
	require.NoError(t, <-done)
}

func TestRefresherZeroIntervalDisabled(t *testing.T) {
	var hits int64
	r := NewRefresher(newConsole(t, &hits), 0)
	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, int64(0), atomic.LoadInt64(&hits))
}

func TestRefresherStopsOnContextCancel(t *testing.T) {
	var hits int64
	r := NewRefresher(newConsole(t, &hits), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop on context cancel")
	}
}
