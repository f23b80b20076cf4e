package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline/loopline/sim"
)

type received struct {
	Type    string          `json:"type"`
	Line    string          `json:"line"`
	Payload json.RawMessage `json:"payload"`
}

func startHub(t *testing.T) (*Hub, string, chan int) {
	t.Helper()
	h := New()
	counts := make(chan int, 8)
	h.ClientsChanged = func(n int) { counts <- n }
	done := make(chan struct{})
	go h.Run(done)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWs))
	t.Cleanup(func() {
		srv.Close()
		close(done)
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http"), counts
}

func waitCount(t *testing.T, counts chan int, want int) {
	t.Helper()
	select {
	case n := <-counts:
		require.Equal(t, want, n)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %d clients", want)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg received
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsSnapshotsAndEvents(t *testing.T) {
	// GIVEN one connected observer
	h, url, counts := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitCount(t, counts, 1)

	// WHEN a snapshot and an event are broadcast
	h.BroadcastSnapshot(sim.Snapshot{Line: "L1", State: sim.StateTravelling, Stop: 2})
	h.Sink("L1").Emit(sim.Event{Kind: sim.EventDeparted, Stop: 2})

	// THEN the observer receives both, in order
	first := readMessage(t, conn)
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, "L1", first.Line)
	var snap sim.Snapshot
	require.NoError(t, json.Unmarshal(first.Payload, &snap))
	assert.Equal(t, sim.StateTravelling, snap.State)

	second := readMessage(t, conn)
	assert.Equal(t, "event", second.Type)
	var ev sim.Event
	require.NoError(t, json.Unmarshal(second.Payload, &ev))
	assert.Equal(t, sim.EventDeparted, ev.Kind)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	_, url, counts := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitCount(t, counts, 1)

	require.NoError(t, conn.Close())

	waitCount(t, counts, 0)
}

func TestHub_BroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	h := New()
	assert.NotPanics(t, func() {
		for i := 0; i < sendBuffer*2; i++ {
			h.BroadcastSnapshot(sim.Snapshot{Line: "L1"})
		}
	})
}
