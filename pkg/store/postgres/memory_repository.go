package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// MemoryRepository is the sqlx-backed persona_category repository.
type MemoryRepository struct {
	db *sqlx.DB
}

func NewMemoryRepository(db *sqlx.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// AllByUser returns every memory for userID, for the Session Controller's
// login warm-load.
func (r *MemoryRepository) AllByUser(ctx context.Context, userID kernel.UserID) ([]memory.Record, error) {
	var rows []memoryPersistence
	query := `SELECT * FROM persona_category WHERE user_id = $1`
	if err := r.db.SelectContext(ctx, &rows, query, userID.String()); err != nil {
		return nil, pgErrors.NewWithCause(ErrQuery, err).WithDetail("user_id", userID.String())
	}

	records := make([]memory.Record, len(rows))
	for i, row := range rows {
		records[i] = memoryToDomain(row)
	}
	return records, nil
}

// UpsertBatch writes records in a single transaction, one NamedExecContext
// per row with an ON CONFLICT(id) upsert clause. Callers chunk into
// batches of 100 before calling, per spec.md §4.6.
func (r *MemoryRepository) UpsertBatch(ctx context.Context, userID kernel.UserID, records []memory.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return pgErrors.NewWithCause(ErrBegin, err).WithDetail("user_id", userID.String())
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO persona_category (
			id, user_id, memory_text, embedding, magnitude, frequency, last_used, rfm_score, created_at
		) VALUES (
			:id, :user_id, :memory_text, :embedding, :magnitude, :frequency, :last_used, :rfm_score, :created_at
		)
		ON CONFLICT (id) DO UPDATE SET
			memory_text = EXCLUDED.memory_text,
			embedding   = EXCLUDED.embedding,
			magnitude   = EXCLUDED.magnitude,
			frequency   = EXCLUDED.frequency,
			last_used   = EXCLUDED.last_used,
			rfm_score   = EXCLUDED.rfm_score`

	for _, rec := range records {
		if _, err := tx.NamedExecContext(ctx, query, memoryToPersistence(userID, rec)); err != nil {
			return pgErrors.NewWithCause(ErrUpsert, err).WithDetail("user_id", userID.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return pgErrors.NewWithCause(ErrUpsert, err).WithDetail("user_id", userID.String())
	}
	return nil
}
