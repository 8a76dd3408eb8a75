package event

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/trellis-ldp/ldpcore/pkg/logger"
)

// RedisBus publishes envelopes to a Redis Pub/Sub channel, for multi-
// instance deployments where WebsocketBus's in-memory subscriber list
// would not fan out across processes.
type RedisBus struct {
	client  *redis.Client
	channel string
	log     *logger.Logger
}

func NewRedisBus(client *redis.Client, channel string, log *logger.Logger) *RedisBus {
	return &RedisBus{client: client, channel: channel, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, envelope Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe returns a channel of envelopes received on the Redis channel,
// for in-process consumers that want to react to events published by any
// instance.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Envelope, func() error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	out := make(chan Envelope)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				if b.log != nil {
					b.log.WithError(err).Warn("discarding malformed event envelope from redis")
				}
				continue
			}
			out <- envelope
		}
	}()

	return out, pubsub.Close
}

var _ Bus = (*RedisBus)(nil)
