// Package postgres implements the durable relational store (pkg/store)
// against PostgreSQL, grounded on the reference repo's sqlx/lib-pq
// repository pattern (pkg/iam/apikey/apikeyinfra, pkg/iam/invitation/
// invitationinfra): a persistence struct per table, explicit toPersistence/
// toDomain conversions, NamedExecContext for writes, GetContext/
// SelectContext for reads.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/memoria-systems/memoria/pkg/store"
)

// Migrate creates the two tables from spec.md §6 if they do not already
// exist. The reference repo's vector-store client (pkg/ai/vstore/providers/
// vstpgvector) follows the same create-if-missing style rather than a
// migration-framework dependency, so this does too.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	const personaCategory = `
		CREATE TABLE IF NOT EXISTS persona_category (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			memory_text TEXT NOT NULL,
			embedding  BYTEA NOT NULL,
			magnitude  DOUBLE PRECISION NOT NULL,
			frequency  INTEGER NOT NULL,
			last_used  TIMESTAMPTZ NOT NULL,
			rfm_score  DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`
	const personaCategoryIndex = `
		CREATE INDEX IF NOT EXISTS idx_persona_category_user_id
		ON persona_category (user_id)`
	const chatMessageLogs = `
		CREATE TABLE IF NOT EXISTS chat_message_logs (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			timestamp    TIMESTAMPTZ NOT NULL
		)`
	const chatMessageLogsIndex = `
		CREATE INDEX IF NOT EXISTS idx_chat_message_logs_user_id
		ON chat_message_logs (user_id)`

	for _, stmt := range []string{personaCategory, personaCategoryIndex, chatMessageLogs, chatMessageLogsIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// pgStore wires both repositories against the same connection behind the
// store.Store accessor contract.
type pgStore struct {
	memories *MemoryRepository
	chats    *ChatRepository
}

func (s pgStore) Memories() store.MemoryRepository { return s.memories }
func (s pgStore) Chats() store.ChatRepository      { return s.chats }

// New wires both repositories against the same connection.
func New(db *sqlx.DB) store.Store {
	return pgStore{
		memories: NewMemoryRepository(db),
		chats:    NewChatRepository(db),
	}
}
