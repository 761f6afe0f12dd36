package mq

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus carries events over Redis pub/sub on channels "<prefix>.<type>".
type RedisBus struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisBus(client *redis.Client, prefix string, log *zap.Logger) *RedisBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBus{client: client, prefix: prefix, log: log}
}

func (b *RedisBus) Channel(eventType string) string {
	return b.prefix + "." + eventType
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.Channel(ev.Type), data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, pattern string, h Handler) error {
	sub := b.client.PSubscribe(ctx, b.Channel(pattern))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.Info("listening for events", zap.String("pattern", b.Channel(pattern)))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decode([]byte(msg.Payload))
			if err != nil {
				b.log.Warn("dropping event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if err := h(ctx, ev); err != nil {
				b.log.Error("event handler", zap.String("type", ev.Type), zap.Error(err))
			}
		}
	}
}
