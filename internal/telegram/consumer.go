package telegram

import (
	"context"
	"log"
	"time"
)

const pollTimeout = 30 * time.Second

// Handler processes one update. Implementations must be safe for concurrent
// calls; the consumer runs one goroutine per update.
type Handler interface {
	HandleUpdate(ctx context.Context, u Update)
}

// Consumer long-polls getUpdates and dispatches each update to the handler.
// Offsets advance past every fetched update, so a handler failure never
// blocks the stream.
type Consumer struct {
	client  *Client
	handler Handler
}

func NewConsumer(client *Client, handler Handler) *Consumer {
	return &Consumer{client: client, handler: handler}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried after
// a short backoff.
func (c *Consumer) Run(ctx context.Context) {
	var offset int64
	for {
		updates, err := c.client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("telegram: consumer stopped")
				return
			}
			log.Printf("telegram: getUpdates error: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			go c.dispatch(ctx, u)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, u Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("telegram: handler panic on update %d: %v", u.UpdateID, r)
		}
	}()
	c.handler.HandleUpdate(ctx, u)
}
