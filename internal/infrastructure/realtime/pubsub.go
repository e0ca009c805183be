package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
)

var errSubscriptionClosed = errors.New("subscription closed")

// RedisBus relays meeting events between API instances over a Redis pub/sub channel.
type RedisBus struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger

	resubscribe func() *backoff.ExponentialBackOff
}

// NewRedisBus creates a bus on the given channel
func NewRedisBus(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		logger:  logger,
		resubscribe: func() *backoff.ExponentialBackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(500*time.Millisecond),
				backoff.WithMaxInterval(30*time.Second),
				backoff.WithMaxElapsedTime(0),
			)
		},
	}
}

// Publish sends ev to every subscribed instance.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	err = b.client.Publish(ctx, b.channel, payload).Err()
	metrics.RecordPubSub("publish", err)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe delivers every event on the channel to handle until ctx is cancelled. A failed
// or dropped subscription is reopened with exponential backoff.
func (b *RedisBus) Subscribe(ctx context.Context, handle func(Event)) error {
	policy := b.resubscribe()
	err := backoff.RetryNotify(func() error {
		confirmed, err := b.listen(ctx, handle)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if confirmed {
			policy.Reset()
		}
		if err == nil {
			err = errSubscriptionClosed
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		b.logger.Warn("⚠️  Meeting event subscription lost, retrying",
			zap.String("channel", b.channel),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// listen runs one subscription. confirmed reports whether Redis acknowledged it.
func (b *RedisBus) listen(ctx context.Context, handle func(Event)) (confirmed bool, err error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so publishes right after startup are not lost.
	_, err = sub.Receive(ctx)
	metrics.RecordPubSub("subscribe", err)
	if err != nil {
		return false, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("📡 Subscribed to meeting events", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-ch:
			if !ok {
				return true, nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				metrics.RecordPubSub("receive", err)
				b.logger.Warn("discarding malformed event", zap.Error(err))
				continue
			}
			metrics.RecordPubSub("receive", nil)
			handle(ev)
		}
	}
}
