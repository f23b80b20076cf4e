package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loopline/loopline/sim"
)

var (
	observeURL   string // websocket endpoint of a serving line
	observeCount int    // stop after this many messages; 0 runs until interrupted
)

// ObservedMessage is one decoded frame from a serving line.
type ObservedMessage struct {
	Type     string          `json:"type"`
	Line     string          `json:"line"`
	Payload  json.RawMessage `json:"payload"`
	Received time.Time       `json:"-"`
}

// Observer follows a serving line over its websocket.
type Observer struct {
	url    string
	dialer *websocket.Dialer
}

func NewObserver(url string) *Observer {
	return &Observer{url: url, dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second}}
}

// Run reads frames until ctx ends, the server closes, or handle returns false.
func (o *Observer) Run(ctx context.Context, handle func(ObservedMessage) bool) error {
	conn, _, err := o.dialer.DialContext(ctx, o.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", o.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		var msg ObservedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logrus.Warnf("observe: undecodable frame: %v", err)
			continue
		}
		msg.Received = time.Now()
		if !handle(msg) {
			return nil
		}
	}
}

// Recorder keeps observed messages (goroutine-safe).
type Recorder struct {
	mu       sync.Mutex
	messages []ObservedMessage
	events   map[sim.EventKind]int
}

// Record stores msg and counts it when it carries an event.
func (r *Recorder) Record(msg ObservedMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	if msg.Type != "event" {
		return
	}
	var ev sim.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return
	}
	if r.events == nil {
		r.events = make(map[sim.EventKind]int)
	}
	r.events[ev.Kind]++
}

// Messages returns all recorded messages.
func (r *Recorder) Messages() []ObservedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ObservedMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// EventCount returns how many events of kind were observed.
func (r *Recorder) EventCount(kind sim.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[kind]
}

func describe(msg ObservedMessage) string {
	switch msg.Type {
	case "event":
		var ev sim.Event
		if err := json.Unmarshal(msg.Payload, &ev); err == nil {
			return fmt.Sprintf("%s event %-18s stop=%d %s", msg.Line, ev.Kind, ev.Stop, ev.Detail)
		}
	case "snapshot":
		var s sim.Snapshot
		if err := json.Unmarshal(msg.Payload, &s); err == nil {
			return fmt.Sprintf("%s %-10s stop=%d onboard=%d queues=%v fare=%d", s.Line, s.State, s.Stop, s.Onboard, s.Queues, s.Fare)
		}
	}
	return fmt.Sprintf("%s %s %s", msg.Line, msg.Type, msg.Payload)
}

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Follow a serving line's websocket feed",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		rec := &Recorder{}
		err := NewObserver(observeURL).Run(ctx, func(msg ObservedMessage) bool {
			rec.Record(msg)
			fmt.Println(describe(msg))
			return observeCount == 0 || len(rec.Messages()) < observeCount
		})
		if err != nil {
			logrus.Fatalf("observe: %v", err)
		}
	},
}

func init() {
	observeCmd.Flags().StringVar(&observeURL, "url", "ws://localhost:8090/ws", "Websocket endpoint of a serving line")
	observeCmd.Flags().IntVar(&observeCount, "count", 0, "Stop after this many messages (0 = until interrupted)")
	rootCmd.AddCommand(observeCmd)
}
