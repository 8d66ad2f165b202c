package game

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tungcyang/bullscows/internal/httpapi"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// writeLoop drains send and keeps the connection alive with pings.
func (c *ClientConn) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.WriteMessage(websocket.TextMessage, msg)
		case <-ticker.C:
			_ = c.ws.WriteMessage(websocket.PingMessage, []byte{})
		}
	}
}

// handleWS attaches a WebSocket to a session: /ws/{id}?token=...
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id, _ := httpapi.SessionIDFromContext(r.Context())
	sess, ok := s.sessions.Get(id)
	if !ok {
		httpapi.WriteError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	cc := newClientConn(ws)
	sess.Attach(cc)
	s.log.DebugContext(r.Context(), "ws attached", "session", id)

	go cc.writeLoop()

	sess.SendState()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.SendError("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case "submit_guess":
			var p SubmitGuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				sess.SendError("bad_input", "invalid payload")
				continue
			}
			if _, err := sess.SubmitGuess(p.Guess); err != nil {
				sess.SendError(sessionErrorCode(err), err.Error())
			}

		case "submit_reply":
			var p SubmitReplyPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				sess.SendError("bad_input", "invalid payload")
				continue
			}
			if err := sess.SubmitReply(p.Response); err != nil {
				sess.SendError(sessionErrorCode(err), err.Error())
			}

		case "get_state":
			sess.SendState()

		default:
			sess.SendError("unknown_type", "unknown message type")
		}
	}

	sess.Detach(cc)
	cc.Close()
	s.log.DebugContext(r.Context(), "ws detached", "session", id)
}
