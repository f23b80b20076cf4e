// Implements the stop queues, which hold riders waiting for the vehicle.
// Riders are enqueued on arrival at a stop and drained in one step when the
// vehicle boards them.

package sim

import (
	"fmt"
	"strings"
	"sync"
)

// StopQueue represents a bounded FIFO queue of riders waiting at one stop.
// The capacity limits queuing only: once accepted, every rider boards.
type StopQueue struct {
	mu       sync.Mutex
	capacity int
	queue    []*Rider // FIFO queue of riders
}

// NewStopQueue creates an empty queue holding at most capacity riders.
func NewStopQueue(capacity int) *StopQueue {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewStopQueue: capacity must be positive, got %d", capacity))
	}
	return &StopQueue{capacity: capacity}
}

// Enqueue adds a rider to the back of the queue. It returns false and
// leaves the queue unchanged when the queue is full or already holds r.
func (sq *StopQueue) Enqueue(r *Rider) bool {
	if r == nil {
		panic("Enqueue: rider must not be nil")
	}
	sq.mu.Lock()
	defer sq.mu.Unlock()
	if len(sq.queue) >= sq.capacity || sq.indexOf(r) >= 0 {
		return false
	}
	sq.queue = append(sq.queue, r)
	return true
}

// DequeueAll removes and returns every queued rider in boarding order.
func (sq *StopQueue) DequeueAll() []*Rider {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	drained := sq.queue
	sq.queue = nil
	return drained
}

// Contains reports whether r is queued here.
func (sq *StopQueue) Contains(r *Rider) bool {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	return sq.indexOf(r) >= 0
}

// Len returns the number of riders in the queue.
func (sq *StopQueue) Len() int {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	return len(sq.queue)
}

// Items returns a copy of the queue contents in boarding order.
func (sq *StopQueue) Items() []*Rider {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	out := make([]*Rider, len(sq.queue))
	copy(out, sq.queue)
	return out
}

func (sq *StopQueue) indexOf(r *Rider) int {
	for i, q := range sq.queue {
		if q == r {
			return i
		}
	}
	return -1
}

func (sq *StopQueue) String() string {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range sq.queue {
		sb.WriteString(val.ID)
		if i < len(sq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// StopQueues is the stop queue manager: one independently locked queue per
// stop on the loop. Stops never contend with each other.
type StopQueues struct {
	stops []*StopQueue
}

// NewStopQueues creates stopCount empty queues, each bounded by maxQueueSize.
func NewStopQueues(stopCount, maxQueueSize int) *StopQueues {
	if stopCount < 2 {
		panic(fmt.Sprintf("NewStopQueues: a loop needs at least 2 stops, got %d", stopCount))
	}
	stops := make([]*StopQueue, stopCount)
	for i := range stops {
		stops[i] = NewStopQueue(maxQueueSize)
	}
	return &StopQueues{stops: stops}
}

// Count returns the number of stops.
func (m *StopQueues) Count() int {
	return len(m.stops)
}

// Enqueue queues r at stop and marks it waiting. A rejected rider keeps its
// state; the caller decides where it waits instead.
func (m *StopQueues) Enqueue(stop int, r *Rider) bool {
	if !m.stop(stop).Enqueue(r) {
		return false
	}
	r.State = RiderWaiting
	r.Stop = stop
	return true
}

// DequeueAll drains the queue at stop. Used only by the vehicle's boarding step.
func (m *StopQueues) DequeueAll(stop int) []*Rider {
	return m.stop(stop).DequeueAll()
}

// Contains reports whether r is queued at stop.
func (m *StopQueues) Contains(stop int, r *Rider) bool {
	return m.stop(stop).Contains(r)
}

// Size returns the number of riders queued at stop.
func (m *StopQueues) Size(stop int) int {
	return m.stop(stop).Len()
}

// Items returns a copy of the riders queued at stop.
func (m *StopQueues) Items(stop int) []*Rider {
	return m.stop(stop).Items()
}

func (m *StopQueues) stop(i int) *StopQueue {
	if i < 0 || i >= len(m.stops) {
		panic(fmt.Sprintf("stop index %d out of range [0, %d)", i, len(m.stops)))
	}
	return m.stops[i]
}
