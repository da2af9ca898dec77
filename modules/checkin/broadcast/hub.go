package broadcast

import (
	"errors"
	"sync"

	"go-coordinator/core/metrics"
	"go-coordinator/core/utils"
)

var ErrHubClosed = errors.New("broadcast hub closed")

// Subscription receives every payload published on its topic after it was
// created. Payloads that arrive while the buffer is full are dropped.
type Subscription struct {
	id    string
	topic string
	ch    chan []byte
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) Topic() string {
	return s.topic
}

// C is closed when the subscription is removed or the hub shuts down.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Hub is an in-process topic fan-out. Publish never blocks on a slow
// subscriber.
type Hub struct {
	mu     sync.RWMutex
	buffer int
	topics map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		buffer: buffer,
		topics: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) Subscribe(topic string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	sub := &Subscription{id: utils.GenerateID(), topic: topic, ch: make(chan []byte, h.buffer)}
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	metrics.ActiveSubscribers.Inc()
	return sub, nil
}

// Unsubscribe is idempotent.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.topics[sub.topic]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
	close(sub.ch)
	metrics.ActiveSubscribers.Dec()
}

// Publish returns how many subscribers accepted the payload.
func (h *Hub) Publish(topic string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- payload:
			delivered++
			metrics.BroadcastDelivered.Inc()
		default:
			metrics.BroadcastDropped.Inc()
		}
	}
	return delivered
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close ends every subscription. Later Subscribe calls fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for topic, subs := range h.topics {
		for sub := range subs {
			close(sub.ch)
			metrics.ActiveSubscribers.Dec()
		}
		delete(h.topics, topic)
	}
}
