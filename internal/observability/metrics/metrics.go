package metrics

import "github.com/prometheus/client_golang/prometheus"

// Extraction outcomes recorded by ObserveExtraction.
const (
	ExtractionComplete   = "complete"
	ExtractionIncomplete = "incomplete"
	ExtractionAbsent     = "absent"
)

// AssistantMetrics exposes counters/histograms for the simulator and lead extraction flows.
type AssistantMetrics struct {
	sessionsStarted prometheus.Counter
	turnsTotal      *prometheus.CounterVec
	turnLatency     prometheus.Histogram
	extractions     *prometheus.CounterVec
	leadsPromoted   *prometheus.CounterVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadassist",
			Subsystem: "simulator",
			Name:      "sessions_started_total",
			Help:      "Total simulator sessions started or restarted",
		}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadassist",
			Subsystem: "simulator",
			Name:      "turns_total",
			Help:      "Total conversational turns by backend outcome",
		}, []string{"status"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadassist",
			Subsystem: "simulator",
			Name:      "turn_latency_seconds",
			Help:      "Latency of the language-model round trip for a turn",
			Buckets:   prometheus.DefBuckets,
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadassist",
			Subsystem: "extraction",
			Name:      "total",
			Help:      "Lead extraction calls by outcome",
		}, []string{"outcome"}),
		leadsPromoted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadassist",
			Subsystem: "leads",
			Name:      "promoted_total",
			Help:      "Leads promoted into the lead store",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.turnsTotal, m.turnLatency, m.extractions, m.leadsPromoted)
	return m
}

func (m *AssistantMetrics) ObserveSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// ObserveTurn records a turn with status "ok" or "error" and its backend latency.
func (m *AssistantMetrics) ObserveTurn(status string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.turnLatency.Observe(seconds)
}

func (m *AssistantMetrics) ObserveExtraction(outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
}

func (m *AssistantMetrics) ObserveLeadPromoted(source string) {
	if m == nil {
		return
	}
	m.leadsPromoted.WithLabelValues(source).Inc()
}
