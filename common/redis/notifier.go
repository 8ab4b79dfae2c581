package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// New dials Redis and wraps the connection in a Client, matching the
// constructor shape bootstrap.Setup expects (addr/password/db/logger) rather
// than requiring callers to build a *redis.Client by hand first.
func New(addr, password string, db int, logger Logger) *Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return NewClient(rdb, logger)
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.redis.Close()
}

// instanceChangedChannel is the pub/sub channel carrying entity_id payloads
// every time a mutating instance operation commits.
const instanceChangedChannel = "instance.changed"

// NotifyInstanceChanged publishes the entity_id of an instance that just
// completed a mutating operation (start, restore, complete, navigate_to,
// set_variables, variable patch, remote-id update).
// Subscribers (UI gateways, other engine processes) use this to know when a
// cached Definition/Instance pair needs re-fetching.
func (c *Client) NotifyInstanceChanged(ctx context.Context, entityID string) error {
	if err := c.PublishEvent(ctx, instanceChangedChannel, entityID); err != nil {
		return fmt.Errorf("notify instance changed: %w", err)
	}
	return nil
}

// SubscribeInstanceChanged returns a channel of entity_ids as they change.
// Callers must eventually cancel ctx to stop the underlying subscription.
func (c *Client) SubscribeInstanceChanged(ctx context.Context) <-chan string {
	sub := c.redis.Subscribe(ctx, instanceChangedChannel)
	out := make(chan string)

	go func() {
		defer close(out)
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
				out <- msg.Payload
			}
		}
	}()

	return out
}
