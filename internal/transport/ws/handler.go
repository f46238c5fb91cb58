package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"surveyassistant/internal/pkg/logger"
	"surveyassistant/internal/service"
	"surveyassistant/internal/survey"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	submitTimeout  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
	log        logger.ILogger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, sessionSvc *service.SessionService, log logger.ILogger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
		log:        log,
	}
}

// RespondentWS handles GET /v1/ws/sessions/{sessionId}
func (h *Handler) RespondentWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateRespondentToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.SessionID != sessionID {
		http.Error(w, "token not valid for this session", http.StatusForbidden)
		return
	}

	h.serve(w, r, sessionID, false)
}

// WatchWS handles GET /v1/ws/sessions/{sessionId}/watch for hosts
func (h *Handler) WatchWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	if _, err := h.authSvc.ValidateHostToken(token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	h.serve(w, r, sessionID, true)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, sessionID string, watcher bool) {
	current, err := h.sessionSvc.Current(sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(logModule, "websocket upgrade failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}

	conn := &Connection{
		SessionID: sessionID,
		Watcher:   watcher,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}
	h.hub.Register(conn)
	h.sendReply(conn, current)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// sendReply delivers a prompt, or the final document once finished, to
// one connection.
func (h *Handler) sendReply(conn *Connection, reply *survey.Reply) {
	if reply.Done {
		h.hub.SendTo(conn, MsgCompleted, reply)
		return
	}
	h.hub.SendTo(conn, MsgPrompt, reply)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn(logModule, "websocket read failed", map[string]interface{}{"session_id": conn.SessionID, "error": err.Error()})
			}
			break
		}
		if conn.Watcher {
			continue
		}
		h.handleMessage(conn, data)
	}
}

func (h *Handler) handleMessage(conn *Connection, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.hub.SendTo(conn, MsgError, map[string]string{"error": "invalid message"})
		return
	}
	if msg.Type != MsgAnswer {
		h.hub.SendTo(conn, MsgError, map[string]string{"error": "unsupported message type"})
		return
	}
	var answer AnswerPayload
	if err := json.Unmarshal(msg.Payload, &answer); err != nil {
		h.hub.SendTo(conn, MsgError, map[string]string{"error": "invalid answer payload"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	reply, replayed, err := h.sessionSvc.SubmitAnswer(ctx, conn.SessionID, answer.Text)
	if err != nil {
		h.hub.SendTo(conn, MsgError, map[string]string{"error": err.Error()})
		return
	}
	// Fresh replies reach this socket through the session broadcast.
	if replayed {
		h.sendReply(conn, reply)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
