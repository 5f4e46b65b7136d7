package redisvkc_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/vkc/redisvkc"
)

func newTestCache(t *testing.T) *redisvkc.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisvkc.New(rdb)
}

func sampleRecord(id, text string, freq int, magnitude float64, emb []float32) memory.Record {
	now := time.Now().UTC()
	return memory.Record{
		ID:        id,
		UserID:    kernel.NewUserID("u1"),
		Text:      text,
		Embedding: emb,
		Magnitude: magnitude,
		Frequency: freq,
		LastUsed:  now,
		CreatedAt: now,
	}
}

func unitVec(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestStoreAndRetrieveMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	userID := kernel.NewUserID("u1")

	rec := sampleRecord("m1", "User likes piano.", 1, 3, unitVec(memory.EmbeddingDim, 0))
	if err := cache.StoreMemory(ctx, userID, rec); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}

	all, err := cache.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 memory, got %d", len(all))
	}
	if all[0].Text != rec.Text {
		t.Fatalf("text mismatch: got %q", all[0].Text)
	}
	for i, v := range all[0].Embedding {
		if v != rec.Embedding[i] {
			t.Fatalf("embedding mismatch at %d: got %v want %v", i, v, rec.Embedding[i])
		}
	}
}

func TestKNNOrdersByDescendingSimilarity(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	userID := kernel.NewUserID("u1")

	dim := memory.EmbeddingDim
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(cache.StoreMemory(ctx, userID, sampleRecord("a", "close", 1, 1, unitVec(dim, 0))))
	must(cache.StoreMemory(ctx, userID, sampleRecord("b", "far", 1, 1, unitVec(dim, 1))))

	query := unitVec(dim, 0)
	results, err := cache.KNN(ctx, userID, query, 2, 0, false)
	if err != nil {
		t.Fatalf("KNN: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" {
		t.Fatalf("expected closest match first, got %s", results[0].ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Fatalf("expected descending similarity order")
	}
}

func TestKNNBumpMetadataIncrementsFrequency(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	userID := kernel.NewUserID("u1")
	dim := memory.EmbeddingDim

	rec := sampleRecord("a", "piano", 2, 3, unitVec(dim, 0))
	if err := cache.StoreMemory(ctx, userID, rec); err != nil {
		t.Fatal(err)
	}

	before := time.Now().UTC()
	results, err := cache.KNN(ctx, userID, unitVec(dim, 0), 1, 0, true)
	if err != nil {
		t.Fatalf("KNN: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Frequency != rec.Frequency+1 {
		t.Fatalf("expected frequency %d, got %d", rec.Frequency+1, results[0].Frequency)
	}
	if results[0].LastUsed.Before(before) {
		t.Fatalf("expected last_used to be bumped to now or later")
	}

	all, err := cache.AllMemories(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if all[0].Frequency != rec.Frequency+1 {
		t.Fatalf("expected persisted frequency bump, got %d", all[0].Frequency)
	}
}

func TestTopByRFMOrdersByScoreDescending(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	userID := kernel.NewUserID("u1")
	dim := memory.EmbeddingDim

	low := sampleRecord("low", "low", 1, 1, unitVec(dim, 0))
	low.RFMScore = 1.5
	high := sampleRecord("high", "high", 1, 5, unitVec(dim, 1))
	high.RFMScore = 3.8

	if err := cache.StoreMemory(ctx, userID, low); err != nil {
		t.Fatal(err)
	}
	if err := cache.StoreMemory(ctx, userID, high); err != nil {
		t.Fatal(err)
	}

	top, err := cache.TopByRFM(ctx, userID, 2)
	if err != nil {
		t.Fatalf("TopByRFM: %v", err)
	}
	if len(top) != 2 || top[0].ID != "high" {
		t.Fatalf("expected high-score memory first, got %+v", top)
	}
}

func TestRecentChatsReturnsChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	userID := kernel.NewUserID("u1")

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"c1", "c2", "c3"} {
		rec := memory.ChatRecord{
			ID:          id,
			UserID:      userID,
			UserMessage: "hi " + id,
			BotResponse: "hello " + id,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := cache.StoreChat(ctx, userID, rec); err != nil {
			t.Fatal(err)
		}
	}

	chats, err := cache.RecentChats(ctx, userID, 10)
	if err != nil {
		t.Fatalf("RecentChats: %v", err)
	}
	if len(chats) != 3 {
		t.Fatalf("expected 3 chats, got %d", len(chats))
	}
	if chats[0].ID != "c1" || chats[2].ID != "c3" {
		t.Fatalf("expected chronological order, got %v %v %v", chats[0].ID, chats[1].ID, chats[2].ID)
	}
}

func TestPurgeDropsUserNamespace(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	userID := kernel.NewUserID("u1")
	dim := memory.EmbeddingDim

	if err := cache.StoreMemory(ctx, userID, sampleRecord("a", "x", 1, 1, unitVec(dim, 0))); err != nil {
		t.Fatal(err)
	}
	if err := cache.StoreChat(ctx, userID, memory.ChatRecord{ID: "c1", UserID: userID, Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := cache.Purge(ctx, userID); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	mems, err := cache.AllMemories(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mems) != 0 {
		t.Fatalf("expected no memories after purge, got %d", len(mems))
	}

	chats, err := cache.AllChats(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected no chats after purge, got %d", len(chats))
	}
}
