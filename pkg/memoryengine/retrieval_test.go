package memoryengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/memoryengine"
	"github.com/memoria-systems/memoria/pkg/oracle/oraclestub"
)

func TestChatSemanticModePopulatesOnlySemanticLeg(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	now := time.Now().UTC()
	seed := memory.Record{
		ID:        "mem-1",
		UserID:    userID,
		Text:      "User plays piano every week.",
		Embedding: mustEmbed(t, stub, "User plays piano every week."),
		Magnitude: 3,
		Frequency: 1,
		LastUsed:  now,
		CreatedAt: now,
		RFMScore:  2.0,
	}
	if err := store.StoreMemory(ctx, userID, seed); err != nil {
		t.Fatalf("seed StoreMemory: %v", err)
	}

	result, err := eng.Chat(ctx, userID, "Tell me about my piano practice.", memoryengine.ModeSemantic)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if result.MemoriesRetrieved.RFM != nil {
		t.Fatalf("expected no RFM leg in semantic mode, got %v", result.MemoriesRetrieved.RFM)
	}
	if len(result.MemoriesRetrieved.Semantic) == 0 {
		t.Fatalf("expected semantic leg to surface the seeded memory")
	}
}

func TestChatRFMModePopulatesOnlyRFMLeg(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	now := time.Now().UTC()
	seed := memory.Record{
		ID:        "mem-1",
		UserID:    userID,
		Text:      "User is preparing for a piano recital.",
		Embedding: mustEmbed(t, stub, "User is preparing for a piano recital."),
		Magnitude: 5,
		Frequency: 1,
		LastUsed:  now,
		CreatedAt: now,
		RFMScore:  4.0,
	}
	if err := store.StoreMemory(ctx, userID, seed); err != nil {
		t.Fatalf("seed StoreMemory: %v", err)
	}

	result, err := eng.Chat(ctx, userID, "How's my piano recital prep going?", memoryengine.ModeRFM)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if result.MemoriesRetrieved.Semantic != nil {
		t.Fatalf("expected no semantic leg in RFM mode, got %v", result.MemoriesRetrieved.Semantic)
	}
	if len(result.MemoriesRetrieved.RFM) != 1 {
		t.Fatalf("expected RFM leg to surface the seeded memory, got %d", len(result.MemoriesRetrieved.RFM))
	}
}

func mustEmbed(t *testing.T, stub *oraclestub.Stub, text string) []float32 {
	t.Helper()
	vec, err := stub.Embed(context.Background(), text)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	return vec
}
