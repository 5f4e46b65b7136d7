// Package store defines the durable relational-store contract the Session
// Controller reconciles the VKC against at login/logout (spec.md §4.6).
package store

import (
	"context"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// MemoryRepository persists memory.Record rows in the persona_category
// table (spec.md §6).
type MemoryRepository interface {
	AllByUser(ctx context.Context, userID kernel.UserID) ([]memory.Record, error)
	// UpsertBatch inserts or updates records keyed by id. Callers
	// chunk into batches of 100, per spec.md §4.6.
	UpsertBatch(ctx context.Context, userID kernel.UserID, records []memory.Record) error
}

// ChatRepository persists memory.ChatRecord rows in the chat_message_logs
// table (spec.md §6).
type ChatRepository interface {
	AllByUser(ctx context.Context, userID kernel.UserID) ([]memory.ChatRecord, error)
	UpsertBatch(ctx context.Context, userID kernel.UserID, records []memory.ChatRecord) error
}

// Store is the full durable-store contract the Session Controller depends
// on. It exposes the two repositories through accessors rather than
// embedding them directly: both repositories declare an AllByUser and an
// UpsertBatch method with different signatures, and embedding both into one
// interface would make those names ambiguous.
type Store interface {
	Memories() MemoryRepository
	Chats() ChatRepository
}
