package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// ChatRepository is the sqlx-backed chat_message_logs repository.
type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// AllByUser returns every chat log for userID, for the Session Controller's
// login warm-load.
func (r *ChatRepository) AllByUser(ctx context.Context, userID kernel.UserID) ([]memory.ChatRecord, error) {
	var rows []chatPersistence
	query := `SELECT * FROM chat_message_logs WHERE user_id = $1`
	if err := r.db.SelectContext(ctx, &rows, query, userID.String()); err != nil {
		return nil, pgErrors.NewWithCause(ErrQuery, err).WithDetail("user_id", userID.String())
	}

	records := make([]memory.ChatRecord, len(rows))
	for i, row := range rows {
		records[i] = chatToDomain(row)
	}
	return records, nil
}

// UpsertBatch writes chat log records in a single transaction, mirroring
// MemoryRepository.UpsertBatch. Callers chunk into batches of 100 before
// calling, per spec.md §4.6.
func (r *ChatRepository) UpsertBatch(ctx context.Context, userID kernel.UserID, records []memory.ChatRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return pgErrors.NewWithCause(ErrBegin, err).WithDetail("user_id", userID.String())
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO chat_message_logs (
			id, user_id, user_message, bot_response, timestamp
		) VALUES (
			:id, :user_id, :user_message, :bot_response, :timestamp
		)
		ON CONFLICT (id) DO UPDATE SET
			user_message = EXCLUDED.user_message,
			bot_response = EXCLUDED.bot_response,
			timestamp    = EXCLUDED.timestamp`

	for _, rec := range records {
		if _, err := tx.NamedExecContext(ctx, query, chatToPersistence(userID, rec)); err != nil {
			return pgErrors.NewWithCause(ErrUpsert, err).WithDetail("user_id", userID.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return pgErrors.NewWithCause(ErrUpsert, err).WithDetail("user_id", userID.String())
	}
	return nil
}
