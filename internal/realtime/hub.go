package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	EventUserHealth  = "user.health_score"
	EventUserCalorie = "user.calories"
	EventDishScored  = "dish.scored"
	EventDishRated   = "dish.rated"
	EventMenuScore   = "menu.health_score"
)

const sendBuffer = 16

// Publisher fans an event out to every subscriber of topic.
type Publisher interface {
	Publish(topic, eventType string, data any)
}

type discard struct{}

func (discard) Publish(string, string, any) {}

// Discard drops every event. Services fall back to it when no hub is wired.
var Discard Publisher = discard{}

// OrDiscard returns p, or Discard when p is nil.
func OrDiscard(p Publisher) Publisher {
	if p == nil {
		return Discard
	}
	return p
}

func UserTopic(id string) string { return "user:" + id }
func MenuTopic(id string) string { return "menu:" + id }
func DishTopic(id string) string { return "dish:" + id }

type Event struct {
	Type  string    `json:"type"`
	Topic string    `json:"topic"`
	Data  any       `json:"data,omitempty"`
	At    time.Time `json:"at"`
}

type client struct {
	userID string
	topic  string
	send   chan []byte
}

// Hub keeps websocket subscribers grouped by topic.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*client]struct{}
	origins []string
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		topics:  make(map[string]map[*client]struct{}),
		origins: allowedOrigins,
		logger:  logger,
	}
}

func (h *Hub) Publish(topic, eventType string, data any) {
	msg, err := json.Marshal(Event{Type: eventType, Topic: topic, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.logger.Error("marshal realtime event", slog.String("type", eventType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[topic] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping realtime event for slow subscriber",
				slog.String("topic", topic),
				slog.String("user_id", c.userID),
			)
		}
	}
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// subscribe creates a client on topic with the welcome event already
// queued, then registers it. Publishers only ever see the client once its
// buffer holds the welcome, so neither side can block on it.
func (h *Hub) subscribe(userID, topic string) *client {
	cl := &client{userID: userID, topic: topic, send: make(chan []byte, sendBuffer)}
	welcome, _ := json.Marshal(Event{Type: "connected", Topic: topic, At: time.Now().UTC()})
	cl.send <- welcome
	h.register(cl)
	return cl
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if h.topics[c.topic] == nil {
		h.topics[c.topic] = make(map[*client]struct{})
	}
	h.topics[c.topic][c] = struct{}{}
	h.mu.Unlock()
}

// unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.topics[c.topic]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.topics, c.topic)
	}
	close(c.send)
}
