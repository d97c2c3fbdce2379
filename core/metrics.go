package orchestration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "examvoice"

var (
	turnTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "turn_transitions_total",
		Help:      "Turn state transitions by source and target state.",
	}, []string{"from", "to"})

	speechRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "speech_requests_total",
		Help:      "Speech requests by outcome.",
	}, []string{"outcome"})

	speechQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "speech_queue_depth",
		Help:      "Speech requests waiting behind the current utterance.",
	})

	listeningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "listening_window_seconds",
		Help:      "Duration of listening windows.",
		Buckets:   []float64{0.5, 1, 2, 4, 6, 8, 10, 15},
	})

	recognitionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "recognition_failures_total",
		Help:      "Listening windows that ended without a transcript, by kind.",
	}, []string{"kind"})

	droppedTranscripts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "dropped_transcripts_total",
		Help:      "Final transcripts discarded because their screen lost focus.",
	})

	recognizedIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "intents_total",
		Help:      "Interpreted intents by kind and screen.",
	}, []string{"screen", "intent"})
)

var autoSubmits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: metricsNamespace,
	Name:      "auto_submits_total",
	Help:      "Timed activities ended by their countdown.",
})
