// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// outboxEntry is the JSON document pushed to the mail outbox.
type outboxEntry struct {
	Message
	QueuedAt time.Time `json:"queued_at"`
}

// RedisNotifier hands verification emails to an external mail worker by
// appending them to a Redis list. The worker pops from the head of the list.
type RedisNotifier struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisNotifier returns a notifier that RPUSHes to key. codeTTL is only
// used to render the message body.
func NewRedisNotifier(client *redis.Client, key string, codeTTL time.Duration) *RedisNotifier {
	return &RedisNotifier{client: client, key: key, ttl: codeTTL, now: time.Now}
}

// Send enqueues the message. A Redis error is returned as is so the caller can
// withdraw the challenge.
func (notifier *RedisNotifier) Send(ctx context.Context, recipient, code string) error {
	payload, err := json.Marshal(outboxEntry{
		Message:  ComposeMessage(recipient, code, notifier.ttl),
		QueuedAt: notifier.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("auth_outbox_encode_failed: %w", err)
	}

	if err := notifier.client.RPush(ctx, notifier.key, payload).Err(); err != nil {
		return fmt.Errorf("auth_outbox_push_failed: %w", err)
	}
	return nil
}
