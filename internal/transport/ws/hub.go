package ws

import (
	"encoding/json"
	"sync"

	"surveyassistant/internal/pkg/logger"
)

const logModule = "ws"

// MessageType defines the type of WebSocket message
type MessageType string

// Server -> client
const (
	MsgPrompt    MessageType = "prompt"
	MsgCompleted MessageType = "completed"
	MsgError     MessageType = "error"
)

// Client -> server
const (
	MsgAnswer MessageType = "answer"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AnswerPayload is the payload of an answer message
type AnswerPayload struct {
	Text string `json:"text"`
}

// Connection represents a WebSocket connection to one session
type Connection struct {
	SessionID string
	Watcher   bool // host connections only receive events
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message for every connection of a session, or
// only for To when it is set
type BroadcastMessage struct {
	SessionID string
	To        *Connection
	Message   *Message
}

// Hub manages WebSocket connections per survey session
type Hub struct {
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string

	log logger.ILogger
}

// NewHub creates a new WebSocket hub
func NewHub(log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string, 16),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug(logModule, "connection registered", map[string]interface{}{"session_id": conn.SessionID, "watcher": conn.Watcher})

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.SessionID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.conns, conn.SessionID)
					}
				}
			}
			h.mu.Unlock()

		case sessionID := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.conns[sessionID] {
				close(conn.Send)
			}
			delete(h.conns, sessionID)
			h.mu.Unlock()
			h.log.Info(logModule, "session sockets closed", map[string]interface{}{"session_id": sessionID})

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error(logModule, "failed to encode message", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.SessionID] {
				if msg.To != nil && msg.To != conn {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Count returns how many sockets are open for a session
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// BroadcastToSession sends a message to every socket of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error(logModule, "failed to encode payload", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// SendTo sends a message to a single registered connection
func (h *Hub) SendTo(conn *Connection, msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error(logModule, "failed to encode payload", map[string]interface{}{"session_id": conn.SessionID, "error": err.Error()})
		return
	}
	h.broadcast <- &BroadcastMessage{
		SessionID: conn.SessionID,
		To:        conn,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// DisconnectSession closes every socket of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.disconnect <- sessionID
}
