package loki

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// EventPusher is satisfied by *Client.
type EventPusher interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// ForwardOptions tunes Forward. Zero values select the defaults.
type ForwardOptions struct {
	PushTimeout time.Duration // per attempt, default 10s
	Attempts    int           // default 3
	Backoff     time.Duration // doubled after each failed attempt, default 500ms
}

func (o ForwardOptions) withDefaults() ForwardOptions {
	if o.PushTimeout <= 0 {
		o.PushTimeout = 10 * time.Second
	}
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	return o
}

// Forward reads messages from r and pushes each to p until ctx is done. A message
// that still fails after the configured attempts is logged and dropped.
// Returns the number of messages pushed.
func Forward(ctx context.Context, r MessageReader, p EventPusher, opts ForwardOptions) int {
	opts = opts.withDefaults()
	pushed := 0
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return pushed
			}
			log.Printf("worker: kafka read error: %v", err)
			if !sleep(ctx, opts.Backoff) {
				return pushed
			}
			continue
		}
		if pushWithRetry(ctx, p, msg, opts) {
			pushed++
		}
	}
}

func pushWithRetry(ctx context.Context, p EventPusher, msg kafka.Message, opts ForwardOptions) bool {
	backoff := opts.Backoff
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		pushCtx, cancel := context.WithTimeout(ctx, opts.PushTimeout)
		err := p.PushEventJSON(pushCtx, msg.Value)
		cancel()
		if err == nil {
			return true
		}
		log.Printf("worker: loki push failed (offset %d, attempt %d/%d): %v", msg.Offset, attempt, opts.Attempts, err)
		if attempt == opts.Attempts || !sleep(ctx, backoff) {
			break
		}
		backoff *= 2
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
