// Package metrics exposes quiz session counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"timed-quiz-service/internal/domain"
)

// Recorder implements app.Recorder on top of Prometheus collectors.
type Recorder struct {
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	score    *prometheus.HistogramVec
	degraded *prometheus.CounterVec
}

// NewRecorder registers the quiz collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions started.",
		}, []string{"quiz"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_finished_total",
			Help: "Quiz sessions finished, by reason.",
		}, []string{"quiz", "reason"}),
		score: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_score_percent",
			Help:    "Score of finished quiz sessions.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"quiz"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_report_degraded_total",
			Help: "Reports rendered as zero attempted because handoff data was missing or corrupt.",
		}, []string{"quiz"}),
	}
	reg.MustRegister(r.started, r.finished, r.score, r.degraded)
	return r
}

func (r *Recorder) SessionStarted(quizID string) {
	r.started.WithLabelValues(quizID).Inc()
}

func (r *Recorder) SessionFinished(quizID string, reason domain.FinishReason, scorePercent float64) {
	r.finished.WithLabelValues(quizID, string(reason)).Inc()
	r.score.WithLabelValues(quizID).Observe(scorePercent)
}

func (r *Recorder) ReportDegraded(quizID string) {
	r.degraded.WithLabelValues(quizID).Inc()
}
