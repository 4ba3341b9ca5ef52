package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spin_the_wheel"

var (
	// Registry holds the bot's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	spins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wheel",
			Name:      "spins_total",
			Help:      "Total number of spins by outcome.",
		},
		[]string{"outcome"},
	)

	prizesGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wheel",
			Name:      "prizes_granted_total",
			Help:      "Prizes granted to users.",
		},
		[]string{"prize"},
	)

	duplicateGrants = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wheel",
			Name:      "duplicate_grants_total",
			Help:      "Prizes won by users that already held them.",
		},
		[]string{"prize"},
	)

	revocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wheel",
			Name:      "revocations_total",
			Help:      "Timed rewards removed.",
		},
		[]string{"kind"},
	)

	scheduledPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pending_tasks",
			Help:      "Deferred tasks waiting to fire.",
		},
	)

	schedulingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "failures_total",
			Help:      "Deferred tasks that could not be scheduled.",
		},
	)

	buttonPresses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "button",
			Name:      "presses_total",
			Help:      "Big red button presses that granted the role.",
		},
	)

	buttonActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "button",
			Name:      "active",
			Help:      "1 while the big red button is active.",
		},
	)

	effects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "effects",
			Name:      "executed_total",
			Help:      "Chat side effects executed by status.",
		},
		[]string{"effect", "status"},
	)

	effectsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "effects",
			Name:      "dropped_total",
			Help:      "Chat side effects dropped because the queue was full.",
		},
	)
)

func init() {
	Registry.MustRegister(
		spins,
		prizesGranted,
		duplicateGrants,
		revocations,
		scheduledPending,
		schedulingFailures,
		buttonPresses,
		buttonActive,
		effects,
		effectsDropped,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordSpin(outcome string) {
	spins.WithLabelValues(outcome).Inc()
}

func RecordPrizeGranted(prize string) {
	prizesGranted.WithLabelValues(prize).Inc()
}

func RecordDuplicateGrant(prize string) {
	duplicateGrants.WithLabelValues(prize).Inc()
}

func RecordRevocation(kind string) {
	revocations.WithLabelValues(kind).Inc()
}

func SetScheduledPending(n int) {
	scheduledPending.Set(float64(n))
}

func RecordSchedulingFailure() {
	schedulingFailures.Inc()
}

func RecordButtonPress() {
	buttonPresses.Inc()
}

func SetButtonActive(active bool) {
	if active {
		buttonActive.Set(1)
		return
	}
	buttonActive.Set(0)
}

func RecordEffect(effect string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	effects.WithLabelValues(effect, status).Inc()
}

func RecordEffectDropped() {
	effectsDropped.Inc()
}
