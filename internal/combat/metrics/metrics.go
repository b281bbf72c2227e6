// Package metrics exposes prometheus collectors for combat throughput,
// mirroring the counter/histogram shape this codebase's server package
// registers for request handling, scoped here to combat execution
// instead of transport.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every metric one Arena (or standalone simulator run)
// reports. Callers register it once against a prometheus.Registerer of
// their choosing; it is not registered against the global default
// registry automatically, so tests can construct their own.
type Collectors struct {
	CombatsTotal     prometheus.Counter
	TicksTotal       prometheus.Counter
	EventsEmitted    *prometheus.CounterVec
	CombatDuration   prometheus.Histogram
	SkillErrorsTotal prometheus.Counter
}

// New constructs a fresh, unregistered Collectors.
func New() *Collectors {
	return &Collectors{
		CombatsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "combatcore",
			Name:      "combats_total",
			Help:      "Total number of combats simulated.",
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "combatcore",
			Name:      "ticks_total",
			Help:      "Total number of simulation ticks processed.",
		}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "combatcore",
			Name:      "events_emitted_total",
			Help:      "Total number of events emitted, by event type.",
		}, []string{"type"}),
		CombatDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "combatcore",
			Name:      "combat_duration_seconds",
			Help:      "Simulated duration of completed combats.",
			Buckets:   prometheus.LinearBuckets(2, 4, 15),
		}),
		SkillErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "combatcore",
			Name:      "skill_errors_total",
			Help:      "Total number of recoverable skill_error events.",
		}),
	}
}

// MustRegister registers every collector against reg.
func (c *Collectors) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.CombatsTotal, c.TicksTotal, c.EventsEmitted, c.CombatDuration, c.SkillErrorsTotal)
}

// ObserveEvent records one emitted event of the given type.
func (c *Collectors) ObserveEvent(eventType string) {
	if c == nil {
		return
	}
	c.EventsEmitted.WithLabelValues(eventType).Inc()
}
