package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type orderSink struct {
	name string
	log  *[]string
}

func (s orderSink) Emit(ev Event) { *s.log = append(*s.log, s.name+":"+string(ev.Kind)) }

func TestMultiSink_FansOutInOrder(t *testing.T) {
	var log []string
	m := MultiSink{orderSink{"a", &log}, LogSink{}, orderSink{"b", &log}}

	m.Emit(Event{Kind: EventSpawned})
	m.Emit(Event{Kind: EventSkipped, Stop: 0})

	assert.Equal(t, []string{"a:spawned", "b:spawned", "a:skipped", "b:skipped"}, log)
}

func TestEventRecorder_Count(t *testing.T) {
	r := &EventRecorder{}
	r.Emit(Event{Kind: EventArrived, Stop: 1})
	r.Emit(Event{Kind: EventArrived, Stop: 2})
	r.Emit(Event{Kind: EventDeparted, Stop: 1})

	assert.Equal(t, 2, r.Count(EventArrived))
	assert.Equal(t, 1, r.Count(EventDeparted))
	assert.Zero(t, r.Count(EventWanted))
}
