package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/MegatronPika/question-bank-system/internal/app"
	"github.com/MegatronPika/question-bank-system/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs an interactive practice loop over a websocket: the client
// requests random questions and submits answers, the server streams back
// questions and verdicts.
type WSHandler struct {
	service  *app.TrainerService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.TrainerService) *WSHandler {
	return &WSHandler{
		service: service,
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

type questionRequestPayload struct {
	Mode domain.PracticeMode `json:"mode"`
}

type answerPayload struct {
	QuestionID int           `json:"question_id"`
	Answer     domain.Answer `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type wsErrorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// practice use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Single writer goroutine; the read loop below only feeds this channel.
	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
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
		case "question":
			var payload questionRequestPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: wsErrorPayload{Message: "invalid question request"}}
					continue
				}
			}
			if payload.Mode == "" {
				payload.Mode = domain.ModeAll
			}
			question, err := h.service.SelectPracticeQuestion(r.Context(), userID, payload.Mode)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: wsErrorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: toQuestionPayload(question)}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: wsErrorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := h.service.SubmitPracticeAnswer(r.Context(), userID, payload.QuestionID, payload.Answer)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: wsErrorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "verdict", Payload: result}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: wsErrorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}
