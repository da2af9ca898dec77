package cache

import (
	"context"
	"sync"
	"time"

	"go-coordinator/core/clock"
)

// MemoryCache is the single-process Cache. Pub/sub only reaches subscribers
// in the same process.
type MemoryCache struct {
	mu       sync.Mutex
	clock    clock.Clock
	policy   LoginPolicy
	counters map[string]*counter
	subs     map[string]map[*memorySubscription]struct{}
}

type counter struct {
	value     int
	expiresAt time.Time
}

func NewMemoryCache(policy LoginPolicy, clk clock.Clock) *MemoryCache {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryCache{
		clock:    clk,
		policy:   policy,
		counters: make(map[string]*counter),
		subs:     make(map[string]map[*memorySubscription]struct{}),
	}
}

// live returns the counter for key, dropping it if expired. Caller holds mu.
func (c *MemoryCache) live(key string) *counter {
	entry, ok := c.counters[key]
	if !ok {
		return nil
	}
	if !entry.expiresAt.IsZero() && !c.clock.Now().Before(entry.expiresAt) {
		delete(c.counters, key)
		return nil
	}
	return entry
}

func (c *MemoryCache) IncrementLoginAttempt(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.live(key)
	if entry == nil {
		entry = &counter{}
		if c.policy.BlockFor > 0 {
			entry.expiresAt = c.clock.Now().Add(c.policy.BlockFor)
		}
		c.counters[key] = entry
	}
	entry.value++
	return nil
}

func (c *MemoryCache) IsLoginBlocked(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.live(key)
	if entry == nil {
		return false, nil
	}
	return entry.value >= c.policy.MaxAttempts, nil
}

func (c *MemoryCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counters, key)
	return nil
}

// Publish hands the payload to every subscriber of channel. A subscriber that
// is not keeping up loses the message.
func (c *MemoryCache) Publish(_ context.Context, channel string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sub := range c.subs[channel] {
		msg := make([]byte, len(payload))
		copy(msg, payload)
		select {
		case sub.out <- msg:
		default:
		}
	}
	return nil
}

func (c *MemoryCache) Subscribe(_ context.Context, channel string) (Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &memorySubscription{cache: c, channel: channel, out: make(chan []byte, 64)}
	if c.subs[channel] == nil {
		c.subs[channel] = make(map[*memorySubscription]struct{})
	}
	c.subs[channel][sub] = struct{}{}
	return sub, nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for channel, subs := range c.subs {
		for sub := range subs {
			close(sub.out)
		}
		delete(c.subs, channel)
	}
	return nil
}

type memorySubscription struct {
	cache   *MemoryCache
	channel string
	out     chan []byte
}

func (s *memorySubscription) Messages() <-chan []byte {
	return s.out
}

func (s *memorySubscription) Close() error {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	subs := s.cache.subs[s.channel]
	if _, ok := subs[s]; !ok {
		return nil
	}
	delete(subs, s)
	close(s.out)
	return nil
}
