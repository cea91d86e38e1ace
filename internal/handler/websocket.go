package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
	"github.com/coderunr/editor/internal/session"
	"github.com/coderunr/editor/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// WebSocketConnection streams one session's state and view to a browser and
// accepts its edits and keydown events.
type WebSocketConnection struct {
	conn     *websocket.Conn
	session  *session.Session
	catalog  *catalogue.Catalogue
	eventBus chan types.WebSocketMessage
	logger   *logrus.Entry
	mutex    sync.Mutex
	closed   bool
}

// HandleWebSocket attaches a websocket view to an existing session
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.sendFailure(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	wsConn := &WebSocketConnection{
		conn:     conn,
		session:  s,
		catalog:  h.sessions.Catalogue(),
		eventBus: make(chan types.WebSocketMessage, 100),
		logger: h.logger.WithFields(logrus.Fields{
			"component":  "websocket",
			"session_id": s.ID,
		}),
	}

	unsubscribeView := s.Subscribe(func(v editor.View) {
		info := viewInfo(v)
		wsConn.sendMessage(types.WebSocketMessage{Type: "view", View: &info})
	})
	unsubscribeState := s.SubscribeState(func(st editor.State) {
		state := editorState(st)
		wsConn.sendMessage(types.WebSocketMessage{Type: "state", State: &state})
	})
	defer unsubscribeView()
	defer unsubscribeState()

	go wsConn.eventSender()

	state := editorState(s.State())
	view := viewInfo(s.View())
	wsConn.sendMessage(types.WebSocketMessage{Type: "state", State: &state})
	wsConn.sendMessage(types.WebSocketMessage{Type: "view", View: &view})

	wsConn.logger.Debug("WebSocket attached")
	wsConn.handleMessages()
}

// handleMessages reads client messages until the connection ends
func (wsConn *WebSocketConnection) handleMessages() {
	defer wsConn.close(websocket.CloseNormalClosure, "Connection closed")

	wsConn.conn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg types.WebSocketMessage
		if err := wsConn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsConn.logger.WithError(err).Warn("WebSocket read error")
			}
			return
		}

		wsConn.conn.SetReadDeadline(time.Now().Add(pongWait))
		wsConn.session.Touch(time.Now())

		if err := wsConn.handleMessage(msg); err != nil {
			wsConn.sendError(err.Error())
		}
	}
}

// handleMessage applies a single client message to the session
func (wsConn *WebSocketConnection) handleMessage(msg types.WebSocketMessage) error {
	switch msg.Type {
	case "keydown":
		if msg.Key == nil {
			return errors.New("keydown requires a key")
		}
		if wsConn.session.HandleKey(keyEvent(*msg.Key)) {
			wsConn.sendMessage(types.WebSocketMessage{Type: "handled", Seq: wsConn.session.View().Seq})
		}
		return nil
	case "language":
		id, err := wsConn.catalog.Parse(msg.Language)
		if err != nil {
			return err
		}
		wsConn.session.SelectLanguage(id)
		return nil
	case "source":
		wsConn.session.SetSource(msg.Text)
		return nil
	case "stdin":
		wsConn.session.SetStdin(msg.Text)
		return nil
	case "run":
		seq, _ := wsConn.session.Submit()
		if seq == 0 {
			return errors.New("session is closed")
		}
		wsConn.sendMessage(types.WebSocketMessage{Type: "submitted", Seq: seq})
		return nil
	default:
		return errors.New("Unknown message type: " + msg.Type)
	}
}

// eventSender writes queued events and keeps the connection alive with pings
func (wsConn *WebSocketConnection) eventSender() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-wsConn.eventBus:
			if !ok {
				return
			}
			if !wsConn.write(func() error { return wsConn.conn.WriteJSON(event) }) {
				return
			}
		case <-ticker.C:
			if !wsConn.write(func() error {
				return wsConn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}) {
				return
			}
		}
	}
}

func (wsConn *WebSocketConnection) write(fn func() error) bool {
	wsConn.mutex.Lock()
	defer wsConn.mutex.Unlock()

	if wsConn.closed {
		return false
	}
	wsConn.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := fn(); err != nil {
		wsConn.logger.WithError(err).Error("Failed to send WebSocket message")
		return false
	}
	return true
}

// sendMessage queues a message for the client
func (wsConn *WebSocketConnection) sendMessage(msg types.WebSocketMessage) {
	wsConn.mutex.Lock()
	defer wsConn.mutex.Unlock()

	if wsConn.closed {
		return
	}
	select {
	case wsConn.eventBus <- msg:
	default:
		wsConn.logger.Warn("Event bus full, dropping message")
	}
}

// sendError queues an error message
func (wsConn *WebSocketConnection) sendError(message string) {
	wsConn.sendMessage(types.WebSocketMessage{
		Type:  "error",
		Error: message,
	})
}

// close closes the WebSocket connection
func (wsConn *WebSocketConnection) close(code int, message string) {
	wsConn.mutex.Lock()
	defer wsConn.mutex.Unlock()

	if wsConn.closed {
		return
	}

	wsConn.closed = true
	close(wsConn.eventBus)

	wsConn.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, message),
		time.Now().Add(time.Second))

	wsConn.conn.Close()
}
