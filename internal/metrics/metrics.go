package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry *prometheus.Registry

	phases        *prometheus.CounterVec
	activeMatches prometheus.Gauge
	frozen        prometheus.Counter
	finished      *prometheus.CounterVec
	rconCalls     *prometheus.CounterVec
	queueSize     prometheus.Gauge
	mmrChange     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbot",
			Name:      "phase_entered_total",
			Help:      "Lifecycle phases entered, by state.",
		}, []string{"state"}),
		activeMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchbot",
			Name:      "active_matches",
			Help:      "Match lifecycles currently running.",
		}),
		frozen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchbot",
			Name:      "frozen_matches_total",
			Help:      "Matches frozen after an unexpected failure.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbot",
			Name:      "matches_finished_total",
			Help:      "Matches that reached the end of their lifecycle, by outcome.",
		}, []string{"outcome"}),
		rconCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbot",
			Name:      "rcon_commands_total",
			Help:      "Remote console commands by command and result.",
		}, []string{"command", "result"}),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchbot",
			Name:      "queue_size",
			Help:      "Players waiting in the queue.",
		}),
		mmrChange: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchbot",
			Name:      "mmr_change",
			Help:      "Settled rating changes.",
			Buckets:   prometheus.LinearBuckets(-80, 10, 17),
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.phases,
		m.activeMatches,
		m.frozen,
		m.finished,
		m.rconCalls,
		m.queueSize,
		m.mmrChange,
	)
	return m
}

func (m *Metrics) PhaseEntered(state string) {
	m.phases.WithLabelValues(state).Inc()
}

func (m *Metrics) MatchStarted() {
	m.activeMatches.Inc()
}

func (m *Metrics) MatchStopped() {
	m.activeMatches.Dec()
}

func (m *Metrics) MatchFrozen() {
	m.frozen.Inc()
}

// MatchFinished records the terminal outcome: "complete", "abandoned" or "aborted".
func (m *Metrics) MatchFinished(outcome string) {
	m.finished.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RconCall(command string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.rconCalls.WithLabelValues(command, result).Inc()
}

func (m *Metrics) QueueSize(n int) {
	m.queueSize.Set(float64(n))
}

func (m *Metrics) MMRChange(delta int) {
	m.mmrChange.Observe(float64(delta))
}
