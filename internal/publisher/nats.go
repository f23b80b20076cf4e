// Package publisher forwards vehicle events and snapshots to NATS.
//
// Subjects:
//
//	<prefix>.<line>.events.<kind>
//	<prefix>.<line>.snapshot
package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
)

type NATSPublisher struct {
	nc          *nats.Conn
	pub         conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// conn is the slice of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("loopline"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logrus.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	p := newPublisher(nc, prefix, logSubjects, m)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, prefix string, logSubjects bool, m PublisherMetrics) *NATSPublisher {
	return &NATSPublisher{pub: c, prefix: subjectToken(prefix), logSubjects: logSubjects, metrics: m}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			logrus.Warnf("nats drain: %v", err)
		}
		p.nc.Close()
	}
}

// EventMessage is the payload published for every vehicle event.
type EventMessage struct {
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
	sim.Event
}

func (p *NATSPublisher) PublishEvent(line string, ev sim.Event) error {
	subject := fmt.Sprintf("%s.%s.events.%s", p.prefix, subjectToken(line), subjectToken(string(ev.Kind)))
	return p.publish(subject, EventMessage{Line: line, Timestamp: time.Now().UTC(), Event: ev})
}

func (p *NATSPublisher) PublishSnapshot(snap sim.Snapshot) error {
	subject := fmt.Sprintf("%s.%s.snapshot", p.prefix, subjectToken(snap.Line))
	return p.publish(subject, snap)
}

func (p *NATSPublisher) publish(subject string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		logrus.Debugf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.pub.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// Sink adapts the publisher to a sim.EventSink for one line. Publish
// failures are logged and never reach the vehicle.
func (p *NATSPublisher) Sink(line string) sim.EventSink {
	return eventSink{p: p, line: line}
}

type eventSink struct {
	p    *NATSPublisher
	line string
}

func (s eventSink) Emit(ev sim.Event) {
	if err := s.p.PublishEvent(s.line, ev); err != nil {
		logrus.Warnf("publishing %s event: %v", ev.Kind, err)
	}
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
