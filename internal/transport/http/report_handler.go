package http

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/report"
)

// ReportHandler serves finished-session reports read from the handoff slot.
type ReportHandler struct {
	service *app.QuizService
	logger  zerolog.Logger
}

func NewReportHandler(service *app.QuizService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Report handles GET /quizzes/{quizId}/sessions/{sessionId}/report.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Report(r.Context(), r.PathValue("quizId"), r.PathValue("sessionId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Chart handles GET /quizzes/{quizId}/sessions/{sessionId}/report.svg.
func (h *ReportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Report(r.Context(), r.PathValue("quizId"), r.PathValue("sessionId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := report.RenderSVG(&buf, view.Stats, report.DefaultGeometry); err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Review handles GET /quizzes/{quizId}/sessions/{sessionId}/review.
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Review(r.Context(), r.PathValue("quizId"), r.PathValue("sessionId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *ReportHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("report request failed")
	respondDomainError(w, err)
}
