package workpipeline

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/config"
	"github.com/memoria-systems/memoria/pkg/logx"
)

// Dispatcher runs the dynamic per-user queue fan-out from spec.md §4.5 and
// §9: a periodic enumeration loop against Redis's SCAN (the closest
// Redis-native analogue to a broker's management/queue-enumeration API), an
// append-mostly consumers map, pruned when a queue disappears from a scan.
type Dispatcher struct {
	rdb           *redis.Client
	cfg           config.WorkPipelineConfig
	memoryHandler Handler
	logHandler    Handler
	logger        *logx.Entry

	mu        sync.Mutex
	consumers map[string]*consumer
}

// NewDispatcher wires a Dispatcher. memoryHandler drives the Memory
// Engine's write-path for each dequeued exchange; logHandler appends the
// exchange to the durable chat log.
func NewDispatcher(rdb *redis.Client, cfg config.WorkPipelineConfig, memoryHandler, logHandler Handler) *Dispatcher {
	return &Dispatcher{
		rdb:           rdb,
		cfg:           cfg,
		memoryHandler: memoryHandler,
		logHandler:    logHandler,
		logger:        logx.WithField("component", "workpipeline"),
		consumers:     make(map[string]*consumer),
	}
}

// Start launches the discovery loop and the queue-cleanup loop. It returns
// immediately; both loops run until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.discoveryLoop(ctx)
	go d.cleanupLoop(ctx)
}

func (d *Dispatcher) discoveryLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.DiscoveryInterval)
	defer ticker.Stop()

	d.discover(ctx)
	for {
		select {
		case <-ctx.Done():
			d.stopAll()
			return
		case <-ticker.C:
			d.discover(ctx)
		}
	}
}

func (d *Dispatcher) discover(ctx context.Context) {
	memoryKeys, err := scanKeys(ctx, d.rdb, memoryQueuePrefix+"*")
	if err != nil {
		d.logger.WithError(err).Warn("memory queue discovery scan failed")
		return
	}
	logKeys, err := scanKeys(ctx, d.rdb, logQueuePrefix+"*")
	if err != nil {
		d.logger.WithError(err).Warn("log queue discovery scan failed")
		return
	}

	seen := make(map[string]bool, len(memoryKeys)+len(logKeys))
	for _, key := range memoryKeys {
		seen[key] = true
		d.ensureConsumer(ctx, key, d.cfg.MemoryPrefetch, d.memoryHandler)
	}
	for _, key := range logKeys {
		seen[key] = true
		d.ensureConsumer(ctx, key, d.cfg.LogPrefetch, d.logHandler)
	}

	d.pruneMissing(seen)
}

func (d *Dispatcher) ensureConsumer(ctx context.Context, key string, prefetch int, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.consumers[key]; ok {
		return
	}
	d.logger.WithField("queue", key).Info("attaching consumer to newly discovered queue")
	d.consumers[key] = startConsumer(ctx, d.rdb, key, prefetch, d.cfg.DequeueTimeout, handler)
}

// pruneMissing drops consumers for queues that no longer appear in the
// latest scan. The consumer tag is released implicitly, mirroring spec.md
// §4.5's description of the reference broker semantics.
func (d *Dispatcher) pruneMissing(seen map[string]bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, c := range d.consumers {
		if !seen[key] {
			d.logger.WithField("queue", key).Info("queue vanished, dropping consumer")
			c.stop()
			delete(d.consumers, key)
		}
	}
}

func (d *Dispatcher) stopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, c := range d.consumers {
		c.stop()
		delete(d.consumers, key)
	}
}

// cleanupLoop deletes queue keys with zero pending entries every
// CleanupInterval, preventing queue accumulation for inactive users.
func (d *Dispatcher) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.cleanup(ctx)
		}
	}
}

func (d *Dispatcher) cleanup(ctx context.Context) {
	for _, prefix := range []string{memoryQueuePrefix, logQueuePrefix} {
		keys, err := scanKeys(ctx, d.rdb, prefix+"*")
		if err != nil {
			d.logger.WithError(err).Warn("cleanup scan failed")
			continue
		}
		for _, key := range keys {
			length, err := d.rdb.LLen(ctx, key).Result()
			if err != nil {
				d.logger.WithError(err).WithField("queue", key).Warn("cleanup LLEN failed")
				continue
			}
			if length == 0 {
				d.mu.Lock()
				if c, ok := d.consumers[key]; ok {
					c.stop()
					delete(d.consumers, key)
				}
				d.mu.Unlock()
				if err := d.rdb.Del(ctx, key).Err(); err != nil {
					d.logger.WithError(err).WithField("queue", key).Warn("cleanup delete failed")
				}
			}
		}
	}
}

// scanKeys enumerates every key matching pattern via cursor-based SCAN,
// avoiding the KEYS command's O(n) blocking behavior on a live server.
func scanKeys(ctx context.Context, rdb *redis.Client, pattern string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
