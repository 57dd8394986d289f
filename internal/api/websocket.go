package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
)

// WebSocket message types for the notification stream
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected    = "connected"
	MsgTypeNotification = "notification"
	MsgTypePong         = "pong"
	MsgTypeError        = "error"
)

const wsWriteTimeout = 10 * time.Second

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error frame.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler pushes notifications to connected clients
type WebSocketHandler struct {
	feed     NotificationFeed
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new notification stream handler
func NewWebSocketHandler(feed NotificationFeed) *WebSocketHandler {
	return &WebSocketHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// HandleWebSocket upgrades the connection, replays notifications newer than
// ?after=<id> and then streams new ones until the client disconnects.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	after, err := parseAfter(c)
	if err != nil {
		return err
	}

	// subscribe before replaying so nothing falls between the two
	updates, cancel := wsh.feed.Subscribe()
	defer cancel()

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	logger.Debugf("[WebSocket] Client connected for notifications")

	if !wsh.send(ws, WSMessage{Type: MsgTypeConnected}) {
		return nil
	}

	last := after
	for _, n := range wsh.feed.Since(after) {
		if !wsh.sendNotification(ws, n) {
			return nil
		}
		last = n.ID
	}

	pings := make(chan struct{}, 1)
	done := make(chan struct{})
	go wsh.readLoop(ws, pings, done)

	for {
		select {
		case <-done:
			logger.Debugf("[WebSocket] Client disconnected")
			return nil
		case <-pings:
			if !wsh.send(ws, WSMessage{Type: MsgTypePong}) {
				return nil
			}
		case n, ok := <-updates:
			if !ok {
				return nil
			}
			if n.ID <= last {
				continue
			}
			if !wsh.sendNotification(ws, n) {
				return nil
			}
			last = n.ID
		}
	}
}

// readLoop consumes client frames; it closes done when the connection ends.
func (wsh *WebSocketHandler) readLoop(ws *websocket.Conn, pings chan<- struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("[WebSocket] Connection error: %v", err)
			}
			return
		}
		if msg.Type == MsgTypePing {
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}

func (wsh *WebSocketHandler) sendNotification(ws *websocket.Conn, n notify.Notification) bool {
	return wsh.send(ws, WSMessage{Type: MsgTypeNotification, Payload: mustJSON(n)})
}

func (wsh *WebSocketHandler) send(ws *websocket.Conn, msg WSMessage) bool {
	msg.Timestamp = time.Now().UnixMilli()
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := ws.WriteJSON(msg); err != nil {
		logger.Warnf("[WebSocket] Failed to send message: %v", err)
		return false
	}
	return true
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
