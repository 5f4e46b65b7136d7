// Package redisvkc implements the Vector+KV Cache against Redis: hash
// records for memories and chats, a per-user set for membership, a per-user
// sorted set for the RFM secondary index, and a per-user sorted set for the
// chat recency index. KNN is computed application-side over the memory
// index using the Ranking Kernel's cosine function, since no RediSearch-
// style vector index is available in the reference stack.
package redisvkc

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/logx"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/rankingkernel"
	"github.com/memoria-systems/memoria/pkg/vkc"
)

// Cache is a Redis-backed vkc.Store.
type Cache struct {
	rdb *redis.Client
}

// New wraps an existing Redis client. The connection is expected to be
// shared and pooled across all callers, per spec.md §5.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

var _ vkc.Store = (*Cache)(nil)

// StoreMemory upserts a memory hash, its membership entry, and its RFM
// index entry in a single pipeline so the three writes are atomic from the
// Engine's perspective.
func (c *Cache) StoreMemory(ctx context.Context, userID kernel.UserID, rec memory.Record) error {
	uid := userID.String()

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, memKey(uid, rec.ID), memoryToHash(rec))
	pipe.SAdd(ctx, memIndexKey(uid), rec.ID)
	pipe.ZAdd(ctx, memRFMKey(uid), redis.Z{Score: rec.RFMScore, Member: rec.ID})

	if _, err := pipe.Exec(ctx); err != nil {
		return redisVKCErrors.NewWithCause(ErrPipeline, err).WithDetail("user_id", uid).WithDetail("mem_id", rec.ID)
	}
	return nil
}

// StoreChat upserts a chat hash, its membership entry, and its timestamp
// index entry.
func (c *Cache) StoreChat(ctx context.Context, userID kernel.UserID, rec memory.ChatRecord) error {
	uid := userID.String()

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, chatKey(uid, rec.ID), chatToHash(rec))
	pipe.SAdd(ctx, chatIndexKey(uid), rec.ID)
	pipe.ZAdd(ctx, chatTSKey(uid), redis.Z{Score: float64(rec.Timestamp.UTC().Unix()), Member: rec.ID})

	if _, err := pipe.Exec(ctx); err != nil {
		return redisVKCErrors.NewWithCause(ErrPipeline, err).WithDetail("user_id", uid).WithDetail("chat_id", rec.ID)
	}
	return nil
}

// KNN scans the user's memory index, scores every record against queryVec
// with cosine similarity, and returns the top k at or above cutoff, most
// similar first. A cutoff of 0 or less applies no filter. When bumpMetadata is true, each returned record is reinforced
// (frequency+1, last_used=now, rfm_score recomputed) as part of this call.
func (c *Cache) KNN(ctx context.Context, userID kernel.UserID, queryVec []float32, k int, cutoff float32, bumpMetadata bool) ([]memory.Similar, error) {
	uid := userID.String()

	records, err := c.loadAllMemories(ctx, uid)
	if err != nil {
		return nil, redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}
	if len(records) == 0 {
		return nil, nil
	}

	scored := make([]memory.Similar, 0, len(records))
	for _, rec := range records {
		sim := rankingkernel.Cosine(queryVec, rec.Embedding)
		if cutoff > 0 && sim < cutoff {
			continue
		}
		scored = append(scored, memory.Similar{Record: rec, Similarity: sim})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })

	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}

	if bumpMetadata {
		now := time.Now().UTC()
		for i := range scored {
			scored[i].Record.Frequency++
			scored[i].Record.LastUsed = now
			scored[i].Record.RFMScore = rankingkernel.RFMScoreAt(now, scored[i].Record.Frequency, scored[i].Record.Magnitude, now)
			if err := c.StoreMemory(ctx, userID, scored[i].Record); err != nil {
				logx.WithError(err).Warnf("vkc: failed to bump metadata for mem %s", scored[i].Record.ID)
			}
		}
	}

	return scored, nil
}

// TopByRFM returns the k memories with the highest rfm_score via the
// sorted-set secondary index. No metadata side effects.
func (c *Cache) TopByRFM(ctx context.Context, userID kernel.UserID, k int) ([]memory.Record, error) {
	uid := userID.String()

	ids, err := c.rdb.ZRevRange(ctx, memRFMKey(uid), 0, int64(k)-1).Result()
	if err != nil && err != redis.Nil {
		return nil, redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}

	return c.loadMemoriesByID(ctx, uid, ids)
}

// RecentChats returns the m most recent chats in chronological order.
func (c *Cache) RecentChats(ctx context.Context, userID kernel.UserID, m int) ([]memory.ChatRecord, error) {
	uid := userID.String()

	ids, err := c.rdb.ZRevRange(ctx, chatTSKey(uid), 0, int64(m)-1).Result()
	if err != nil && err != redis.Nil {
		return nil, redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}

	chats, err := c.loadChatsByID(ctx, uid, ids)
	if err != nil {
		return nil, err
	}

	// ids come back newest-first; the caller wants chronological order.
	for i, j := 0, len(chats)-1; i < j; i, j = i+1, j-1 {
		chats[i], chats[j] = chats[j], chats[i]
	}
	return chats, nil
}

// AllMemories returns every memory in the user's namespace, unordered.
func (c *Cache) AllMemories(ctx context.Context, userID kernel.UserID) ([]memory.Record, error) {
	records, err := c.loadAllMemories(ctx, userID.String())
	if err != nil {
		return nil, redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", userID.String())
	}
	return records, nil
}

// AllChats returns every chat in the user's namespace, unordered.
func (c *Cache) AllChats(ctx context.Context, userID kernel.UserID) ([]memory.ChatRecord, error) {
	uid := userID.String()

	ids, err := c.rdb.SMembers(ctx, chatIndexKey(uid)).Result()
	if err != nil {
		return nil, redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}

	chats, err := c.loadChatsByID(ctx, uid, ids)
	if err != nil {
		return nil, redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}
	return chats, nil
}

// Purge drops every key in the user's namespace: memory hashes, chat hashes,
// and all four index keys.
func (c *Cache) Purge(ctx context.Context, userID kernel.UserID) error {
	uid := userID.String()

	memIDs, err := c.rdb.SMembers(ctx, memIndexKey(uid)).Result()
	if err != nil {
		return redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}
	chatIDs, err := c.rdb.SMembers(ctx, chatIndexKey(uid)).Result()
	if err != nil {
		return redisVKCErrors.NewWithCause(ErrScan, err).WithDetail("user_id", uid)
	}

	pipe := c.rdb.Pipeline()
	for _, id := range memIDs {
		pipe.Del(ctx, memKey(uid, id))
	}
	for _, id := range chatIDs {
		pipe.Del(ctx, chatKey(uid, id))
	}
	pipe.Del(ctx, memIndexKey(uid), memRFMKey(uid), chatIndexKey(uid), chatTSKey(uid))

	if _, err := pipe.Exec(ctx); err != nil {
		return redisVKCErrors.NewWithCause(ErrPipeline, err).WithDetail("user_id", uid)
	}
	return nil
}

func (c *Cache) loadAllMemories(ctx context.Context, uid string) ([]memory.Record, error) {
	ids, err := c.rdb.SMembers(ctx, memIndexKey(uid)).Result()
	if err != nil {
		return nil, err
	}
	return c.loadMemoriesByID(ctx, uid, ids)
}

func (c *Cache) loadMemoriesByID(ctx context.Context, uid string, ids []string) ([]memory.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, memKey(uid, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	records := make([]memory.Record, 0, len(ids))
	for _, cmd := range cmds {
		h, err := cmd.Result()
		if err != nil {
			continue
		}
		if rec, ok := hashToMemory(h); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (c *Cache) loadChatsByID(ctx context.Context, uid string, ids []string) ([]memory.ChatRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, chatKey(uid, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	chats := make([]memory.ChatRecord, 0, len(ids))
	for _, cmd := range cmds {
		h, err := cmd.Result()
		if err != nil {
			continue
		}
		if rec, ok := hashToChat(h); ok {
			chats = append(chats, rec)
		}
	}
	return chats, nil
}
