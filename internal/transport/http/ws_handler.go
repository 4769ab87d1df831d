package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"exam-simulator/internal/app"
	"exam-simulator/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.ExamService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ExamService) *WSHandler {
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

type selectPayload struct {
	Index int `json:"index"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS starts a test session for the caller and streams its events over a
// websocket. Closing the socket before completion abandons the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	testID := domain.TestID(r.URL.Query().Get("testId"))
	if userID == "" || testID == "" {
		http.Error(w, "missing userId or testId", http.StatusBadRequest)
		return
	}

	session, err := h.service.StartTest(r.Context(), userID, testID)
	if err != nil {
		writeError(w, err)
		return
	}
	sessionID := session.ID()
	defer func() {
		// no-op when the session already completed
		_ = h.service.Abandon(r.Context(), userID, sessionID)
	}()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	// sessions outlive the server's read/write timeouts
	_ = conn.UnderlyingConn().SetDeadline(time.Time{})

	events, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(time.Second))
	}()

	enqueue := func(msg outboundMessage) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	enqueue(outboundMessage{Type: "started", Payload: session.Snapshot()})

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					// terminal: unblock the reader so the socket winds down
					_ = conn.SetReadDeadline(time.Now())
					return
				}
				if !enqueue(outboundMessage{Type: string(ev.Type), Payload: ev}) {
					return
				}
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
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid select payload"}})
				continue
			}
			if _, err := h.service.SelectAnswer(r.Context(), userID, sessionID, payload.Index); err != nil {
				enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "next":
			if _, err := h.service.Advance(r.Context(), userID, sessionID); err != nil {
				enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "quit":
			if err := h.service.Abandon(r.Context(), userID, sessionID); err != nil {
				enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		default:
			enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}
