package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// WSHandler exposes the single quiz of this process to one websocket player at a time.
type WSHandler struct {
	service  *app.QuizService
	defaults domain.QuizParameters
	upgrader websocket.Upgrader
	busy     atomic.Bool
}

func NewWSHandler(service *app.QuizService, defaults domain.QuizParameters) *WSHandler {
	return &WSHandler{
		service:  service,
		defaults: defaults,
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

type startPayload struct {
	Amount             int    `json:"amount"`
	Category           int    `json:"category"`
	Difficulty         string `json:"difficulty"`
	PerQuestionSeconds int    `json:"perQuestionSeconds"`
}

// answerPayload carries the chosen option; a null or missing option means "none".
type answerPayload struct {
	Option *string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz machine.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if !h.busy.CompareAndSwap(false, true) {
		http.Error(w, "a quiz is already in progress", http.StatusConflict)
		return
	}
	defer h.busy.Store(false)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	machine := h.service.Machine()
	defer machine.Reset()

	updates, cancel := machine.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var helpers sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	deliver := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		case <-writerDone:
		}
	}

	helpers.Add(1)
	go func() {
		defer helpers.Done()
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				deliver(outboundMessage[any]{Type: "state", Payload: snap})
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					deliver(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid start payload"}})
					continue
				}
			}
			params := h.mergeDefaults(payload)
			helpers.Add(1)
			go func() {
				defer helpers.Done()
				if notice := h.service.Begin(ctx, params); notice != nil {
					deliver(outboundMessage[any]{Type: "notice", Payload: errorPayload{Message: "Failed to fetch questions: " + notice.Error()}})
				}
			}()
		case "answer":
			var payload answerPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					deliver(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
					continue
				}
			}
			machine.SubmitAnswer(payload.Option)
		case "next":
			machine.Advance()
		case "reset":
			machine.Reset()
		default:
			deliver(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	stop()
	close(closeSignals)
	helpers.Wait()
	close(send)
	<-writerDone
}

func (h *WSHandler) mergeDefaults(p startPayload) domain.QuizParameters {
	params := h.defaults
	if p.Amount > 0 {
		params.Amount = p.Amount
	}
	if p.Category > 0 {
		params.Category = p.Category
	}
	if p.Difficulty != "" {
		params.Difficulty = domain.Difficulty(p.Difficulty)
	}
	if p.PerQuestionSeconds > 0 {
		params.PerQuestionSeconds = p.PerQuestionSeconds
	}
	return params
}
