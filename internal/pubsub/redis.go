// Package pubsub relays chat frames between server instances over Redis.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "meetup:chat"

// envelope carries either a frame for a room or, with EvictUserID set, the
// order to drop that user's connections from the room.
type envelope struct {
	Origin      string          `json:"origin"`
	MeetupID    uint            `json:"meetupId"`
	Frame       json.RawMessage `json:"frame,omitempty"`
	EvictUserID uint            `json:"evictUserId,omitempty"`
}

// Sink receives what other instances publish.
type Sink interface {
	Deliver(meetupID uint, frame []byte)
	DeliverEviction(meetupID, userID uint)
}

// RedisBus publishes frames to a Redis channel and delivers frames published
// by other instances. Frames this instance published are skipped on receipt.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	origin  string
}

func NewRedisBus(rdb *redis.Client, channel string) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{rdb: rdb, channel: channel, origin: uuid.NewString()}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (b *RedisBus) Publish(ctx context.Context, meetupID uint, frame []byte) error {
	return b.publish(ctx, envelope{Origin: b.origin, MeetupID: meetupID, Frame: frame})
}

func (b *RedisBus) PublishEviction(ctx context.Context, meetupID, userID uint) error {
	return b.publish(ctx, envelope{Origin: b.origin, MeetupID: meetupID, EvictUserID: userID})
}

func (b *RedisBus) publish(ctx context.Context, env envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes and hands every foreign envelope to sink until ctx is done.
// ready, if non-nil, is closed once the subscription is confirmed.
func (b *RedisBus) Run(ctx context.Context, sink Sink, ready chan<- struct{}) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("redis subscription closed")
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("pubsub: malformed envelope", "error", err)
				continue
			}
			if env.Origin == b.origin || env.MeetupID == 0 {
				continue
			}
			if env.EvictUserID != 0 {
				sink.DeliverEviction(env.MeetupID, env.EvictUserID)
				continue
			}
			sink.Deliver(env.MeetupID, env.Frame)
		}
	}
}
