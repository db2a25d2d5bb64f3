// Package metrics exposes Prometheus collectors for the channel scan and the
// dev-service lifecycle.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the schemaflow Prometheus collectors. Register once per
// registerer; repeated Register calls are no-ops.
type Collectors struct {
	ChannelsConfigured *prometheus.CounterVec
	DevServiceStarts   prometheus.Counter
	DevServiceReuses   prometheus.Counter
	DevServiceStops    prometheus.Counter
	OverlayBuilds      prometheus.Counter

	mu         sync.Mutex
	registered bool
}

// New creates unregistered collectors under the schemaflow namespace.
func New() *Collectors {
	return &Collectors{
		ChannelsConfigured: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schemaflow",
				Name:      "channels_configured_total",
				Help:      "Channels that received synthesized configuration, by direction.",
			},
			[]string{"direction"},
		),
		DevServiceStarts: newCounter("devservice_starts_total",
			"Backing-service containers started."),
		DevServiceReuses: newCounter("devservice_reuses_total",
			"EnsureRunning calls satisfied by an already-running backing service."),
		DevServiceStops: newCounter("devservice_stops_total",
			"Backing-service teardowns."),
		OverlayBuilds: newCounter("overlay_builds_total",
			"Lazy property-overlay builds."),
	}
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schemaflow",
		Name:      name,
		Help:      help,
	})
}

// Register attaches the collectors to reg. Passing nil uses the default
// registerer. AlreadyRegisteredError is tolerated so overlapping test runs in
// one process do not fail.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registered {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	collectors := []prometheus.Collector{
		c.ChannelsConfigured,
		c.DevServiceStarts,
		c.DevServiceReuses,
		c.DevServiceStops,
		c.OverlayBuilds,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	c.registered = true
	return nil
}
