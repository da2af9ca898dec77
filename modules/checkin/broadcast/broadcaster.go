package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"go-coordinator/core/cache"
	"go-coordinator/core/logger"
)

// Broadcaster delivers an accepted update to every subscriber of a topic.
type Broadcaster interface {
	Broadcast(ctx context.Context, topic string, payload []byte) error
}

// LocalBroadcaster reaches subscribers of this process only.
type LocalBroadcaster struct {
	hub *Hub
}

func NewLocalBroadcaster(hub *Hub) *LocalBroadcaster {
	return &LocalBroadcaster{hub: hub}
}

func (b *LocalBroadcaster) Broadcast(_ context.Context, topic string, payload []byte) error {
	delivered := b.hub.Publish(topic, payload)
	logger.Debug("Broadcast:Local:Published", "topic", topic, "delivered", delivered)
	return nil
}

type envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBroadcaster publishes on a shared cache channel so that every replica
// running a RedisRelay delivers the update to its own subscribers.
type RedisBroadcaster struct {
	cache   cache.Cache
	channel string
}

func NewRedisBroadcaster(c cache.Cache, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{cache: c, channel: channel}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, topic string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("broadcast: payload for %s is not JSON", topic)
	}
	body, err := json.Marshal(envelope{Topic: topic, Payload: payload})
	if err != nil {
		return err
	}
	if err := b.cache.Publish(ctx, b.channel, body); err != nil {
		logger.Error("Broadcast:Redis:Publish:Error", "channel", b.channel, "error", err)
		return err
	}
	return nil
}

// RedisRelay feeds messages from the shared channel into the local hub.
type RedisRelay struct {
	cache   cache.Cache
	channel string
	hub     *Hub
}

func NewRedisRelay(c cache.Cache, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{cache: c, channel: channel, hub: hub}
}

// Start subscribes before returning so no message published afterwards is
// missed, then relays until ctx is done or the subscription ends.
func (r *RedisRelay) Start(ctx context.Context) (<-chan struct{}, error) {
	sub, err := r.cache.Subscribe(ctx, r.channel)
	if err != nil {
		return nil, fmt.Errorf("relay subscribe %s: %w", r.channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer sub.Close()
		r.run(ctx, sub)
	}()

	logger.Info("Broadcast:Relay:Started", "channel", r.channel)
	return done, nil
}

func (r *RedisRelay) run(ctx context.Context, sub cache.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-sub.Messages():
			if !ok {
				logger.Warn("Broadcast:Relay:SubscriptionClosed", "channel", r.channel)
				return
			}
			var msg envelope
			if err := json.Unmarshal(raw, &msg); err != nil || msg.Topic == "" {
				logger.Warn("Broadcast:Relay:Decode:Error", "channel", r.channel, "error", err)
				continue
			}
			r.hub.Publish(msg.Topic, []byte(msg.Payload))
		}
	}
}
