// Package metrics exposes a running line as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
)

// Collector owns a private registry so tests and multiple lines never
// collide on the default one.
type Collector struct {
	reg *prometheus.Registry

	Events *prometheus.CounterVec // kind label: sim.EventKind

	VehicleActive prometheus.Gauge
	NightService  prometheus.Gauge
	Onboard       prometheus.Gauge
	QueueDepth    *prometheus.GaugeVec // stop label: stop index
	Fare          prometheus.Gauge
	NextDeparture prometheus.Gauge // seconds
	PlayerAboard  prometheus.Gauge

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	WSClients       prometheus.Gauge

	TickDuration    prometheus.Histogram
	PublishDuration prometheus.Histogram

	SecsPerMinute prometheus.Gauge
	TickInterval  prometheus.Gauge // seconds
	SimHour       prometheus.Gauge
	SimDay        prometheus.Gauge
}

func NewCollector(secsPerMinute float64, tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loopline_events_total",
			Help: "Vehicle events by kind.",
		}, []string{"kind"}),
		VehicleActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_vehicle_active",
			Help: "1 while a run is in progress.",
		}),
		NightService: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_night_service",
			Help: "1 while the current run is a night service.",
		}),
		Onboard: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_onboard_riders",
			Help: "Managed riders on the vehicle.",
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "loopline_queue_depth",
			Help: "Riders waiting per stop.",
		}, []string{"stop"}),
		Fare: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_fare",
			Help: "Fare quoted for boarding now.",
		}),
		NextDeparture: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_next_departure_seconds",
			Help: "Real seconds until the next run, 0 during a run.",
		}),
		PlayerAboard: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_player_aboard",
			Help: "1 while the player rides the vehicle.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loopline_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loopline_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_ws_clients",
			Help: "Connected websocket observers.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loopline_tick_duration_seconds",
			Help:    "Wall time spent in one vehicle update.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loopline_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		SecsPerMinute: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_real_seconds_per_sim_minute",
			Help: "Clock speed factor.",
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_tick_interval_seconds",
			Help: "Serve loop tick interval in seconds.",
		}),
		SimHour: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_sim_hour",
			Help: "Simulated hour of day.",
		}),
		SimDay: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loopline_sim_day",
			Help: "Simulated day index.",
		}),
	}

	reg.MustRegister(
		c.Events,
		c.VehicleActive, c.NightService, c.Onboard, c.QueueDepth,
		c.Fare, c.NextDeparture, c.PlayerAboard,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.WSClients,
		c.TickDuration, c.PublishDuration,
		c.SecsPerMinute, c.TickInterval, c.SimHour, c.SimDay,
	)

	c.SecsPerMinute.Set(secsPerMinute)
	c.TickInterval.Set(tickInterval.Seconds())

	return c
}

// Emit counts a vehicle event. Collector is a sim.EventSink.
func (c *Collector) Emit(ev sim.Event) {
	c.Events.WithLabelValues(string(ev.Kind)).Inc()
}

// ObserveSnapshot copies the vehicle's observable state into the gauges.
func (c *Collector) ObserveSnapshot(s sim.Snapshot) {
	c.VehicleActive.Set(boolGauge(s.State != sim.StateInactive))
	c.NightService.Set(boolGauge(s.Night))
	c.PlayerAboard.Set(boolGauge(s.PlayerAboard))
	c.Onboard.Set(float64(s.Onboard))
	c.Fare.Set(float64(s.Fare))
	c.NextDeparture.Set(s.NextDeparture)
	for i, n := range s.Queues {
		c.QueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(n))
	}
}

func (c *Collector) ObserveTick(d time.Duration) { c.TickDuration.Observe(d.Seconds()) }

// ObserveClock records the simulated time. Its signature matches a
// clock.SimClock listener.
func (c *Collector) ObserveClock(hour float64, day int) {
	c.SimHour.Set(hour)
	c.SimDay.Set(float64(day))
}

// PublisherMetrics implementation.
func (c *Collector) NATSPublishedInc()               { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()              { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration)  { c.PublishDuration.Observe(d.Seconds()) }
func (c *Collector) NATSSetConnected(connected bool) { c.NATSConnected.Set(boolGauge(connected)) }
func (c *Collector) ClientsChanged(n int)            { c.WSClients.Set(float64(n)) }

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("metrics server error: %v", err)
		}
	}()
	logrus.Infof("metrics listening on %s", addr)
	return srv
}
