package sessioncontroller_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/sessioncontroller"
	"github.com/memoria-systems/memoria/pkg/store"
	"github.com/memoria-systems/memoria/pkg/vkc/redisvkc"
)

// fakeStore is an in-memory store.Store used to exercise the Session
// Controller without a real Postgres connection, mirroring the reference
// repo's in-memory test doubles (pkg/ai/llm/memoryx).
type fakeStore struct {
	mu       sync.Mutex
	memories map[kernel.UserID][]memory.Record
	chats    map[kernel.UserID][]memory.ChatRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		memories: make(map[kernel.UserID][]memory.Record),
		chats:    make(map[kernel.UserID][]memory.ChatRecord),
	}
}

func (s *fakeStore) Memories() store.MemoryRepository { return fakeMemoryRepo{s} }
func (s *fakeStore) Chats() store.ChatRepository      { return fakeChatRepo{s} }

type fakeMemoryRepo struct{ s *fakeStore }

func (r fakeMemoryRepo) AllByUser(ctx context.Context, userID kernel.UserID) ([]memory.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]memory.Record(nil), r.s.memories[userID]...), nil
}

func (r fakeMemoryRepo) UpsertBatch(ctx context.Context, userID kernel.UserID, records []memory.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.memories[userID] = append(append([]memory.Record(nil), r.s.memories[userID]...), records...)
	return nil
}

type fakeChatRepo struct{ s *fakeStore }

func (r fakeChatRepo) AllByUser(ctx context.Context, userID kernel.UserID) ([]memory.ChatRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]memory.ChatRecord(nil), r.s.chats[userID]...), nil
}

func (r fakeChatRepo) UpsertBatch(ctx context.Context, userID kernel.UserID, records []memory.ChatRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.chats[userID] = append(append([]memory.ChatRecord(nil), r.s.chats[userID]...), records...)
	return nil
}

func testController(t *testing.T) (*sessioncontroller.Controller, *redisvkc.Cache, *fakeStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redisvkc.New(rdb)
	fs := newFakeStore()
	return sessioncontroller.New(cache, fs), cache, fs
}

func sampleMemory(userID kernel.UserID, id, text string) memory.Record {
	now := time.Now().UTC()
	return memory.Record{
		ID:        id,
		UserID:    userID,
		Text:      text,
		Embedding: make([]float32, memory.EmbeddingDim),
		Magnitude: 3,
		Frequency: 1,
		LastUsed:  now,
		CreatedAt: now,
		RFMScore:  1,
	}
}

func TestLoginWarmLoadsStoreIntoCache(t *testing.T) {
	ctrl, cache, fs := testController(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	fs.memories[userID] = []memory.Record{sampleMemory(userID, "m1", "plays piano")}
	fs.chats[userID] = []memory.ChatRecord{{ID: "c1", UserID: userID, UserMessage: "hi", BotResponse: "hello", Timestamp: time.Now().UTC()}}

	result, err := ctrl.Login(ctx, userID)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.MemoriesLoaded != 1 || result.ChatsLoaded != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	mems, err := cache.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories: %v", err)
	}
	if len(mems) != 1 || mems[0].ID != "m1" {
		t.Fatalf("cache not warm-loaded: %+v", mems)
	}
}

// Scenario 6 (spec.md §8): a cache containing one valid memory and one
// invalid (missing embedding) record must sync exactly the valid one.
func TestLogoutDropsInvalidRecordsAndPurgesCache(t *testing.T) {
	ctrl, cache, fs := testController(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	valid := sampleMemory(userID, "m1", "plays piano")
	if err := cache.StoreMemory(ctx, userID, valid); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}
	invalid := sampleMemory(userID, "m2", "missing embedding")
	invalid.Embedding = nil
	if err := cache.StoreMemory(ctx, userID, invalid); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}

	result, err := ctrl.Logout(ctx, userID)
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if result.MemoriesSynced != 1 {
		t.Fatalf("want memories_synced=1, got %d", result.MemoriesSynced)
	}

	synced, err := fs.Memories().AllByUser(ctx, userID)
	if err != nil {
		t.Fatalf("AllByUser: %v", err)
	}
	if len(synced) != 1 || synced[0].ID != "m1" {
		t.Fatalf("unexpected synced records: %+v", synced)
	}

	remaining, err := cache.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories after logout: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected cache namespace purged, got %d records", len(remaining))
	}
}
