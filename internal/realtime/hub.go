package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Topics carried over the hub. Each event payload is the full refreshed
// snapshot of its collection, so subscribers replace rather than patch.
const (
	TopicProperties    = "estateflow:properties"
	TopicContracts     = "estateflow:contracts"
	TopicUsers         = "estateflow:users"
	TopicConversations = "estateflow:conversations"
	TopicNotifications = "estateflow:notifications"
)

// Event is one published snapshot. Origin identifies the publishing instance
// so the redis bridge can drop its own echoes.
type Event struct {
	Topic   string          `json:"topic"`
	Origin  string          `json:"origin,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans domain snapshots out to subscribers. Local subscribers are served
// in-process; with a redis client attached the event also crosses instance
// boundaries, and Run feeds remote events back into the local fanout.
type Hub struct {
	rdb    *redis.Client
	log    zerolog.Logger
	origin string

	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

func NewHub(rdb *redis.Client, log zerolog.Logger) *Hub {
	return &Hub{
		rdb:    rdb,
		log:    log,
		origin: uuid.NewString(),
		subs:   map[string]map[int]chan Event{},
	}
}

// Subscribe registers for a topic and returns the event channel together
// with an unsubscribe function. The channel is buffered; a subscriber that
// falls behind loses events rather than blocking publishers.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan Event, 16)
	if h.subs[topic] == nil {
		h.subs[topic] = map[int]chan Event{}
	}
	h.subs[topic][id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[topic][id]; ok {
			delete(h.subs[topic], id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish serializes the payload and delivers it to every subscriber of the
// topic. With redis attached the event is also broadcast to other instances.
func (h *Hub) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ev := Event{Topic: topic, Origin: h.origin, Payload: raw}
	h.deliver(ev)

	if h.rdb != nil {
		wire, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if err := h.rdb.Publish(ctx, topic, wire).Err(); err != nil {
			h.log.Error().Err(err).Str("topic", topic).Msg("redis publish failed")
			return err
		}
	}
	return nil
}

func (h *Hub) deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Run bridges redis pub/sub into the local fanout. It blocks until the
// context is canceled. A hub without redis has nothing to bridge.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}
	sub := h.rdb.Subscribe(ctx,
		TopicProperties, TopicContracts, TopicUsers, TopicConversations, TopicNotifications)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.log.Warn().Err(err).Str("topic", msg.Channel).Msg("dropping malformed hub event")
				continue
			}
			if ev.Origin == h.origin {
				continue
			}
			ev.Topic = msg.Channel
			h.deliver(ev)
		}
	}
}
