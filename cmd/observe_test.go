package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline/loopline/internal/hub"
	"github.com/loopline/loopline/sim"
)

func TestObserver_RecordsHubTraffic(t *testing.T) {
	// GIVEN a hub serving websocket observers
	h := hub.New()
	clients := make(chan int, 4)
	h.ClientsChanged = func(n int) { clients <- n }
	done := make(chan struct{})
	defer close(done)
	go h.Run(done)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWs))
	defer srv.Close()

	// WHEN an observer connects and the hub sends a snapshot and an event
	rec := &Recorder{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- NewObserver("ws"+strings.TrimPrefix(srv.URL, "http")).Run(ctx, func(msg ObservedMessage) bool {
			rec.Record(msg)
			return len(rec.Messages()) < 2
		})
	}()
	select {
	case n := <-clients:
		require.Equal(t, 1, n)
	case <-ctx.Done():
		t.Fatal("observer never connected")
	}
	h.BroadcastSnapshot(sim.Snapshot{Line: "L1", State: sim.StateInactive, Stop: -1, Queues: []int{1, 0}})
	h.Sink("L1").Emit(sim.Event{Kind: sim.EventMissed, Stop: 0})

	// THEN both are recorded and the observer stops on its own
	require.NoError(t, <-errc)
	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "snapshot", msgs[0].Type)
	assert.Equal(t, "event", msgs[1].Type)
	assert.Equal(t, 1, rec.EventCount(sim.EventMissed))
	assert.Contains(t, describe(msgs[0]), "inactive")
	assert.Contains(t, describe(msgs[1]), "missed")
}

func TestObserver_DialFailure(t *testing.T) {
	err := NewObserver("ws://127.0.0.1:1/ws").Run(context.Background(), func(ObservedMessage) bool { return true })
	assert.Error(t, err)
}
