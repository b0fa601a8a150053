package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/app"
)

// RouterConfig collects what NewRouter needs.
type RouterConfig struct {
	Service       *app.QuizService
	DefaultQuizID string
	Logger        zerolog.Logger
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the websocket, report and operational endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	ws := NewWSHandler(cfg.Service, cfg.DefaultQuizID, cfg.Logger)
	reports := NewReportHandler(cfg.Service, cfg.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ws", ws.ServeWS)
	mux.HandleFunc("GET /quizzes/{quizId}/sessions/{sessionId}/report", reports.Report)
	mux.HandleFunc("GET /quizzes/{quizId}/sessions/{sessionId}/report.svg", reports.Chart)
	mux.HandleFunc("GET /quizzes/{quizId}/sessions/{sessionId}/review", reports.Review)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}
