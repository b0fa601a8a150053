package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// WSHandler drives one quiz session per WebSocket connection.
type WSHandler struct {
	service       *app.QuizService
	defaultQuizID string
	logger        zerolog.Logger
	upgrader      websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, defaultQuizID string, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service:       service,
		defaultQuizID: defaultQuizID,
		logger:        logger.With().Str("component", "ws_handler").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID int    `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	SessionID      string `json:"sessionId"`
	QuizID         string `json:"quizId"`
	Title          string `json:"title"`
	TimeLimit      int    `json:"timeLimit"`
	TotalQuestions int    `json:"totalQuestions"`
}

// questionView is the current question without its correct answer.
type questionView struct {
	ID      int             `json:"id"`
	Text    string          `json:"text"`
	Options []domain.Option `json:"options"`
}

type statePayload struct {
	domain.SessionState
	Question *questionView `json:"question,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		quizID = h.defaultQuizID
	}
	if quizID == "" {
		respondError(w, http.StatusBadRequest, errCodeBadRequest, "missing quizId")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	pushError := func(err error) {
		push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	push(outboundMessage[any]{Type: "started", Payload: newStartedPayload(session)})
	stopWatch := h.watch(ctx, session, send)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				pushError(errors.New("invalid select payload"))
				continue
			}
			if err := session.SelectOption(payload.QuestionID, payload.OptionID); err != nil {
				pushError(err)
			}
		case "next":
			if err := session.Next(); err != nil {
				pushError(err)
			}
		case "previous":
			session.Previous()
		case "finish":
			session.Finish()
		case "restart":
			stopWatch()
			next, err := h.service.Restart(ctx, session.ID())
			if err != nil {
				pushError(err)
				stopWatch = func() {}
				continue
			}
			session = next
			push(outboundMessage[any]{Type: "started", Payload: newStartedPayload(session)})
			stopWatch = h.watch(ctx, session, send)
		default:
			pushError(errors.New("unsupported message type"))
		}
	}

	stopWatch()
	h.service.End(session.ID())
	close(send)
	<-writerDone
}

// watch forwards session snapshots to send, followed by the report once the session finishes.
// The returned function stops forwarding and releases the subscription.
func (h *WSHandler) watch(ctx context.Context, session *app.Session, send chan<- outboundMessage[any]) func() {
	updates, cancel := session.Subscribe()
	stop := make(chan struct{})
	done := make(chan struct{})
	questions := session.Questions()

	deliver := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-stop:
			return false
		}
	}

	go func() {
		defer close(done)
		reported := false
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				if !deliver(outboundMessage[any]{Type: "state", Payload: newStatePayload(questions, state)}) {
					return
				}
				if !state.Finished || reported {
					continue
				}
				reported = true
				view, err := h.service.Report(ctx, state.QuizID, state.SessionID)
				if err != nil {
					h.logger.Error().Err(err).Str("session_id", state.SessionID).Msg("build report")
					if !deliver(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
						return
					}
					continue
				}
				if !deliver(outboundMessage[any]{Type: "report", Payload: view}) {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			cancel()
		})
	}
}

func newStartedPayload(session *app.Session) startedPayload {
	set := session.Questions()
	return startedPayload{
		SessionID:      session.ID(),
		QuizID:         set.ID,
		Title:          set.Title,
		TimeLimit:      set.TimeLimitSeconds,
		TotalQuestions: set.Len(),
	}
}

func newStatePayload(set domain.QuestionSet, state domain.SessionState) statePayload {
	payload := statePayload{SessionState: state}
	if state.Finished {
		return payload
	}
	if q, ok := set.Question(state.CurrentQuestionIndex); ok {
		payload.Question = &questionView{ID: q.ID, Text: q.Text, Options: q.Options}
	}
	return payload
}
