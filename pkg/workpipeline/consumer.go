package workpipeline

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/logx"
)

// Handler processes one dequeued message. Per spec.md §7, transport errors
// are logged and acked (no retry, no dead-letter queue — the next turn is
// another chance); handlers always "ack" by simply returning, since BRPop
// already removed the message from the list.
type Handler func(ctx context.Context, msg Message) error

// consumer runs a bounded pool of goroutines against one queue key,
// mirroring the reference repo's jobx.Client worker-loop shape (N
// goroutines each blocking on a dequeue call in a loop) but scoped to a
// single discovered queue instead of a static set.
type consumer struct {
	queueKey string
	rdb      *redis.Client
	handler  Handler
	prefetch int
	timeout  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func startConsumer(ctx context.Context, rdb *redis.Client, queueKey string, prefetch int, timeout time.Duration, handler Handler) *consumer {
	cctx, cancel := context.WithCancel(ctx)
	c := &consumer{
		queueKey: queueKey,
		rdb:      rdb,
		handler:  handler,
		prefetch: prefetch,
		timeout:  timeout,
		cancel:   cancel,
	}
	for range prefetch {
		c.wg.Add(1)
		go c.loop(cctx)
	}
	return c
}

func (c *consumer) loop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result, err := c.rdb.BRPop(ctx, c.timeout, c.queueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			logx.WithError(err).Warnf("workpipeline: dequeue error on %s", c.queueKey)
			continue
		}

		// result[0] = key, result[1] = payload
		msg, err := unmarshalMessage([]byte(result[1]))
		if err != nil {
			logx.WithError(err).Warnf("workpipeline: malformed message on %s", c.queueKey)
			continue
		}

		if err := c.handler(ctx, msg); err != nil {
			logx.WithError(err).Warnf("workpipeline: handler failed on %s", c.queueKey)
		}
	}
}

// stop cancels the consumer's goroutines and waits for them to exit.
func (c *consumer) stop() {
	c.cancel()
	c.wg.Wait()
}
