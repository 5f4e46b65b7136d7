// Package sessioncontroller owns the session boundary: login warm-loads a
// user's durable state into the VKC, logout reconciles the VKC back into
// the durable store and drops the cache namespace (spec.md §4.6).
package sessioncontroller

import (
	"context"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/logx"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/store"
	"github.com/memoria-systems/memoria/pkg/vkc"
)

// upsertBatchSize is the chunk size used when writing back to the store at
// logout, per spec.md §4.6.
const upsertBatchSize = 100

// LoginResult reports how much of a user's durable state was warm-loaded
// into the cache.
type LoginResult struct {
	MemoriesLoaded int
	ChatsLoaded    int
}

// LogoutResult reports how much of a user's cached state was reconciled
// back into the durable store.
type LogoutResult struct {
	MemoriesSynced int
	ChatsSynced    int
}

// Controller implements login/logout against a VKC cache and a durable
// store.
type Controller struct {
	vkc    vkc.Store
	store  store.Store
	logger *logx.Entry
}

// New wires a VKC store and a durable store into a Controller.
func New(vkcStore vkc.Store, durable store.Store) *Controller {
	return &Controller{
		vkc:    vkcStore,
		store:  durable,
		logger: logx.WithField("component", "sessioncontroller"),
	}
}

// Login reads userID's memories and chats from the durable store and loads
// each into the VKC under the user's namespace. Embeddings may arrive from
// the store as JSON strings, lists, or binary; NormalizeEmbedding coerces
// every shape to packed float32 before the record is cached.
func (c *Controller) Login(ctx context.Context, userID kernel.UserID) (LoginResult, error) {
	memories, err := c.store.Memories().AllByUser(ctx, userID)
	if err != nil {
		return LoginResult{}, scErrors.NewWithCause(ErrLoginFailed, err).WithDetail("user_id", userID.String())
	}
	chats, err := c.store.Chats().AllByUser(ctx, userID)
	if err != nil {
		return LoginResult{}, scErrors.NewWithCause(ErrLoginFailed, err).WithDetail("user_id", userID.String())
	}

	for _, rec := range memories {
		rec.Embedding = memory.NormalizeEmbedding(rec.Embedding)
		if err := c.vkc.StoreMemory(ctx, userID, rec); err != nil {
			return LoginResult{}, scErrors.NewWithCause(ErrLoginFailed, err).WithDetail("user_id", userID.String())
		}
	}
	for _, rec := range chats {
		if err := c.vkc.StoreChat(ctx, userID, rec); err != nil {
			return LoginResult{}, scErrors.NewWithCause(ErrLoginFailed, err).WithDetail("user_id", userID.String())
		}
	}

	c.logger.WithField("user_id", userID).
		WithField("memories_loaded", len(memories)).
		WithField("chats_loaded", len(chats)).
		Info("session login: warm-load complete")

	return LoginResult{MemoriesLoaded: len(memories), ChatsLoaded: len(chats)}, nil
}

// Logout enumerates the user's VKC namespace, validates each memory,
// bulk-upserts the survivors back to the durable store in batches of 100,
// and purges the cache namespace. Records failing validation are dropped
// and logged rather than synced — per spec.md §4.6, they were likely
// written mid-transaction and have lost coherence.
func (c *Controller) Logout(ctx context.Context, userID kernel.UserID) (LogoutResult, error) {
	memories, err := c.vkc.AllMemories(ctx, userID)
	if err != nil {
		return LogoutResult{}, scErrors.NewWithCause(ErrLogoutFailed, err).WithDetail("user_id", userID.String())
	}
	chats, err := c.vkc.AllChats(ctx, userID)
	if err != nil {
		return LogoutResult{}, scErrors.NewWithCause(ErrLogoutFailed, err).WithDetail("user_id", userID.String())
	}

	valid := make([]memory.Record, 0, len(memories))
	for _, rec := range memories {
		if rec.Valid() {
			valid = append(valid, rec)
			continue
		}
		c.logger.WithField("user_id", userID).WithField("mem_id", rec.ID).
			Warn("logout: dropping invalid memory record")
	}

	for _, batch := range chunkMemories(valid, upsertBatchSize) {
		if err := c.store.Memories().UpsertBatch(ctx, userID, batch); err != nil {
			return LogoutResult{}, scErrors.NewWithCause(ErrLogoutFailed, err).WithDetail("user_id", userID.String())
		}
	}
	for _, batch := range chunkChats(chats, upsertBatchSize) {
		if err := c.store.Chats().UpsertBatch(ctx, userID, batch); err != nil {
			return LogoutResult{}, scErrors.NewWithCause(ErrLogoutFailed, err).WithDetail("user_id", userID.String())
		}
	}

	if err := c.vkc.Purge(ctx, userID); err != nil {
		return LogoutResult{}, scErrors.NewWithCause(ErrLogoutFailed, err).WithDetail("user_id", userID.String())
	}

	c.logger.WithField("user_id", userID).
		WithField("memories_synced", len(valid)).
		WithField("chats_synced", len(chats)).
		WithField("memories_dropped", len(memories)-len(valid)).
		Info("session logout: reconcile complete")

	return LogoutResult{MemoriesSynced: len(valid), ChatsSynced: len(chats)}, nil
}

func chunkMemories(records []memory.Record, size int) [][]memory.Record {
	if len(records) == 0 {
		return nil
	}
	var batches [][]memory.Record
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

func chunkChats(records []memory.ChatRecord, size int) [][]memory.ChatRecord {
	if len(records) == 0 {
		return nil
	}
	var batches [][]memory.ChatRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}
