// Package metrics exposes prometheus instrumentation for test sessions.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded when a session ends.
const (
	OutcomeFinished  = "finished"
	OutcomeTimeout   = "timeout"
	OutcomeAbandoned = "abandoned"
)

var (
	sessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_sessions_started_total",
			Help: "Number of test sessions started",
		},
		[]string{"test"},
	)

	sessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_sessions_ended_total",
			Help: "Number of test sessions ended, by outcome",
		},
		[]string{"test", "outcome"},
	)

	answers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_answers_total",
			Help: "Number of evaluated answers",
		},
		[]string{"test", "correct"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exam_sessions_active",
			Help: "Number of test sessions in progress",
		},
	)
)

// SessionStarted records a new session.
func SessionStarted(testID string) {
	sessionsStarted.WithLabelValues(testID).Inc()
	activeSessions.Inc()
}

// SessionEnded records a session reaching a terminal state.
func SessionEnded(testID, outcome string) {
	sessionsEnded.WithLabelValues(testID, outcome).Inc()
	activeSessions.Dec()
}

// AnswerRecorded records one evaluated answer.
func AnswerRecorded(testID string, correct bool) {
	answers.WithLabelValues(testID, strconv.FormatBool(correct)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
