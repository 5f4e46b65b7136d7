package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/store/postgres"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestMemoryRepositoryAllByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewMemoryRepository(db)
	userID := kernel.NewUserID("u1")
	now := time.Now().UTC()

	embedding := memory.PackEmbedding(make([]float32, memory.EmbeddingDim))
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "memory_text", "embedding", "magnitude", "frequency", "last_used", "rfm_score", "created_at",
	}).AddRow("m1", "u1", "plays piano", embedding, 3.0, 1, now, 1.0, now)

	mock.ExpectQuery(`SELECT \* FROM persona_category WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(rows)

	records, err := repo.AllByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("AllByUser: %v", err)
	}
	if len(records) != 1 || records[0].ID != "m1" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if len(records[0].Embedding) != memory.EmbeddingDim {
		t.Fatalf("embedding not unpacked to full width: got %d", len(records[0].Embedding))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemoryRepositoryUpsertBatchCommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewMemoryRepository(db)
	userID := kernel.NewUserID("u1")
	now := time.Now().UTC()

	rec := memory.Record{
		ID:        "m1",
		UserID:    userID,
		Text:      "plays piano",
		Embedding: make([]float32, memory.EmbeddingDim),
		Magnitude: 3,
		Frequency: 1,
		LastUsed:  now,
		CreatedAt: now,
		RFMScore:  1,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO persona_category`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.UpsertBatch(context.Background(), userID, []memory.Record{rec}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemoryRepositoryUpsertBatchRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewMemoryRepository(db)
	userID := kernel.NewUserID("u1")
	now := time.Now().UTC()

	rec := memory.Record{
		ID:        "m1",
		UserID:    userID,
		Text:      "plays piano",
		Embedding: make([]float32, memory.EmbeddingDim),
		Magnitude: 3,
		Frequency: 1,
		LastUsed:  now,
		CreatedAt: now,
		RFMScore:  1,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO persona_category`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := repo.UpsertBatch(context.Background(), userID, []memory.Record{rec}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemoryRepositoryUpsertBatchEmptyIsNoOp(t *testing.T) {
	db, _ := newMockDB(t)
	repo := postgres.NewMemoryRepository(db)
	if err := repo.UpsertBatch(context.Background(), kernel.NewUserID("u1"), nil); err != nil {
		t.Fatalf("UpsertBatch with no records should be a no-op: %v", err)
	}
}
