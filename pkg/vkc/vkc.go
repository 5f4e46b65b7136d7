// Package vkc defines the Vector+KV Cache contract: the process-external
// store that is the single source of truth for a user's memories and chat
// log during a session.
package vkc

import (
	"context"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// Store is the full VKC contract. A concrete adapter (redisvkc.Cache) backs
// it with a real process-external store; tests use the same adapter over an
// in-process miniredis server so they do not touch the network.
type Store interface {
	StoreMemory(ctx context.Context, userID kernel.UserID, rec memory.Record) error
	StoreChat(ctx context.Context, userID kernel.UserID, rec memory.ChatRecord) error

	// KNN returns the k memories closest to queryVec, ordered most-similar
	// first. When cutoff > 0, results with similarity below it are excluded.
	// When bumpMetadata is true, each returned record has frequency
	// incremented, last_used set to now, and rfm_score recomputed, as part
	// of the same call.
	KNN(ctx context.Context, userID kernel.UserID, queryVec []float32, k int, cutoff float32, bumpMetadata bool) ([]memory.Similar, error)

	// TopByRFM returns the k memories with the highest rfm_score, descending.
	TopByRFM(ctx context.Context, userID kernel.UserID, k int) ([]memory.Record, error)

	// RecentChats returns the m most recent chats, in chronological order
	// (oldest first).
	RecentChats(ctx context.Context, userID kernel.UserID, m int) ([]memory.ChatRecord, error)

	AllMemories(ctx context.Context, userID kernel.UserID) ([]memory.Record, error)
	AllChats(ctx context.Context, userID kernel.UserID) ([]memory.ChatRecord, error)

	// Purge drops every key in the user's namespace.
	Purge(ctx context.Context, userID kernel.UserID) error
}

// DefaultRecentChats is the default recent-chat retrieval window, m=10. The
// Memory Engine reads its window from config.MemoryEngineConfig.RecentChats
// (ME_RECENT_CHATS, default 10), not from this constant.
const DefaultRecentChats = 10
