package realtime

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/middleware"
	"menuwise/internal/respond"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ServeWS upgrades the request and streams events for ?topic=. Without a
// topic the caller is subscribed to its own user topic.
func (h *Hub) ServeWS(c *gin.Context) {
	userID := middleware.UserID(c)
	topic := c.Query("topic")
	if topic == "" {
		topic = UserTopic(userID)
	}
	if err := authorizeTopic(topic, userID); err != nil {
		respond.Error(c, err)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	cl := h.subscribe(userID, topic)
	go h.writePump(conn, cl)
	h.readPump(conn, cl)
}

func authorizeTopic(topic, userID string) error {
	kind, id, ok := strings.Cut(topic, ":")
	if !ok || id == "" {
		return apperror.ValidationFailed("topic", "topic must look like user:<id>, menu:<id> or dish:<id>")
	}

	switch kind {
	case "user":
		if id != userID {
			return apperror.Forbidden("cannot subscribe to another user's events")
		}
	case "menu", "dish":
	default:
		return apperror.ValidationFailed("topic", "unknown topic kind "+kind)
	}
	return nil
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// readPump only keeps the connection alive; clients never send commands.
func (h *Hub) readPump(conn *websocket.Conn, cl *client) {
	defer func() {
		h.unregister(cl)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", slog.String("topic", cl.topic), slog.Any("error", err))
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(cl)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(cl)
				return
			}
		}
	}
}
