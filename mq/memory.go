package mq

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type memSub struct {
	pattern string
	ch      chan Event
}

// MemoryBus is an in-process Bus used when no Redis address is configured.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[*memSub]struct{}
	log  *zap.Logger
}

func NewMemoryBus(log *zap.Logger) *MemoryBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryBus{subs: make(map[*memSub]struct{}), log: log}
}

func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	// Round-trip through JSON so subscribers see the same shapes as over Redis.
	data, err := encode(ev)
	if err != nil {
		return err
	}
	ev, err = decode(data)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if !matches(s.pattern, ev.Type) {
			continue
		}
		select {
		case s.ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		default:
			b.log.Warn("subscriber full, dropping event", zap.String("type", ev.Type))
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, pattern string, h Handler) error {
	s := &memSub{pattern: pattern, ch: make(chan Event, 256)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.ch:
			if err := h(ctx, ev); err != nil {
				b.log.Error("event handler", zap.String("type", ev.Type), zap.Error(err))
			}
		}
	}
}

// Subscribers reports how many subscriptions are active.
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
