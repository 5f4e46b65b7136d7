package memoryengine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/config"
	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memoryengine"
	"github.com/memoria-systems/memoria/pkg/oracle/oraclestub"
	"github.com/memoria-systems/memoria/pkg/vkc/redisvkc"
)

const (
	extractMarker     = "extract 0 to 2 short"
	decisionMarker    = "Decide how the candidate relates"
	magnitudeMarker   = "Rate how personal or informative"
	consolidateMarker = "Merge the following two statements"
)

func testEngine(t *testing.T) (*memoryengine.Engine, *redisvkc.Cache, *oraclestub.Stub) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redisvkc.New(rdb)
	stub := oraclestub.New("none")
	cfg := config.MemoryEngineConfig{
		SemanticK:            3,
		RFMK:                 3,
		RecentChats:          10,
		SemanticCutoff:       0,
		CombinedCutoff:       0.4,
		DecisionK:            3,
		ExtractMaxCandidates: 2,
	}
	return memoryengine.New(store, stub, cfg), store, stub
}

// Scenario 1 (spec.md §8): fresh user, first turn. A single extracted
// candidate with no existing memories must result in an `add`.
func TestWriteTurnFreshUserAdds(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	stub.On(extractMarker, "- User just started learning piano.")
	stub.On(decisionMarker, "add")
	stub.On(magnitudeMarker, "3")

	if err := eng.WriteTurn(ctx, userID, "I just started learning piano.", "That's great!"); err != nil {
		t.Fatalf("WriteTurn: %v", err)
	}

	mems, err := store.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories: %v", err)
	}
	if len(mems) != 1 {
		t.Fatalf("expected 1 memory, got %d", len(mems))
	}
	m := mems[0]
	if m.Frequency != 1 {
		t.Fatalf("expected frequency=1, got %d", m.Frequency)
	}
	if m.Magnitude < 2 || m.Magnitude > 5 {
		t.Fatalf("expected magnitude in [2,5], got %v", m.Magnitude)
	}
	if len(m.Embedding) != 768 {
		t.Fatalf("expected 768-dim embedding, got %d", len(m.Embedding))
	}
}

// Scenario 3 (spec.md §8): merge. An existing piano memory plus a new
// candidate sharing vocabulary must merge, keeping one mem_id and bumping
// frequency.
func TestWriteTurnMergeKeepsOneRecordAndBumpsFrequency(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	stub.On(extractMarker, "- User just started learning piano.")
	stub.On(decisionMarker, "add")
	stub.On(magnitudeMarker, "3")
	if err := eng.WriteTurn(ctx, userID, "I just started learning piano.", "Nice!"); err != nil {
		t.Fatalf("first WriteTurn: %v", err)
	}

	before, err := store.AllMemories(ctx, userID)
	if err != nil || len(before) != 1 {
		t.Fatalf("expected 1 memory before merge, got %d (err=%v)", len(before), err)
	}
	originalID := before[0].ID

	stub.Responses = map[string]string{
		extractMarker:     "- User practices piano every Tuesday.",
		decisionMarker:    "merge:1",
		magnitudeMarker:   "4",
		consolidateMarker: "User practices piano every Tuesday and is learning quickly.",
	}
	if err := eng.WriteTurn(ctx, userID, "I practice piano every Tuesday.", "Keep it up!"); err != nil {
		t.Fatalf("second WriteTurn: %v", err)
	}

	after, err := store.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("expected memory count unchanged at 1 after merge, got %d", len(after))
	}
	merged := after[0]
	if merged.ID != originalID {
		t.Fatalf("expected mem_id preserved across merge, got %s want %s", merged.ID, originalID)
	}
	if merged.Frequency != 2 {
		t.Fatalf("expected frequency=2 after one merge, got %d", merged.Frequency)
	}
	if !containsWord(merged.Text, "piano") || !containsWord(merged.Text, "Tuesday") {
		t.Fatalf("expected merged text to contain both piano and Tuesday, got %q", merged.Text)
	}
}

// Scenario 4 (spec.md §8): override by contradiction. A contradicting
// candidate must overwrite the existing text/embedding verbatim and bump
// frequency, preserving the mem_id.
func TestWriteTurnOverrideByContradiction(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	stub.On(extractMarker, "- User is learning piano.")
	stub.On(decisionMarker, "add")
	stub.On(magnitudeMarker, "3")
	if err := eng.WriteTurn(ctx, userID, "I am learning piano.", "Cool!"); err != nil {
		t.Fatalf("first WriteTurn: %v", err)
	}
	before, err := store.AllMemories(ctx, userID)
	if err != nil || len(before) != 1 {
		t.Fatalf("expected 1 memory before override, got %d (err=%v)", len(before), err)
	}
	originalID := before[0].ID

	stub.Responses = map[string]string{
		extractMarker:   "- User quit piano and switched to guitar.",
		decisionMarker:  "override:1",
		magnitudeMarker: "3",
	}
	if err := eng.WriteTurn(ctx, userID, "Actually I quit piano and switched to guitar.", "Got it."); err != nil {
		t.Fatalf("second WriteTurn: %v", err)
	}

	after, err := store.AllMemories(ctx, userID)
	if err != nil || len(after) != 1 {
		t.Fatalf("expected memory count unchanged at 1 after override, got %d (err=%v)", len(after), err)
	}
	overridden := after[0]
	if overridden.ID != originalID {
		t.Fatalf("expected mem_id preserved across override, got %s want %s", overridden.ID, originalID)
	}
	if overridden.Frequency != 2 {
		t.Fatalf("expected frequency=2 after override, got %d", overridden.Frequency)
	}
	if !containsWord(overridden.Text, "guitar") {
		t.Fatalf("expected overridden text to be about guitar, got %q", overridden.Text)
	}
}

// Unrecognized decisions are a no-op: no memory is created or changed.
func TestWriteTurnUnknownDecisionIsNoOp(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	stub.On(extractMarker, "- User likes tea.")
	stub.On(decisionMarker, "maybe later")
	stub.On(magnitudeMarker, "2")

	if err := eng.WriteTurn(ctx, userID, "I like tea.", "Noted."); err != nil {
		t.Fatalf("WriteTurn: %v", err)
	}

	mems, err := store.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories: %v", err)
	}
	if len(mems) != 0 {
		t.Fatalf("expected no memories for an unrecognized decision, got %d", len(mems))
	}
}

// An extraction reply of "None" yields zero candidates and no writes.
func TestWriteTurnExtractNoneIsNoOp(t *testing.T) {
	eng, store, stub := testEngine(t)
	ctx := context.Background()
	userID := kernel.NewUserID("u1")

	stub.On(extractMarker, "None")

	if err := eng.WriteTurn(ctx, userID, "What's the weather like?", "Sunny."); err != nil {
		t.Fatalf("WriteTurn: %v", err)
	}

	mems, err := store.AllMemories(ctx, userID)
	if err != nil {
		t.Fatalf("AllMemories: %v", err)
	}
	if len(mems) != 0 {
		t.Fatalf("expected no memories when extraction yields None, got %d", len(mems))
	}
}

func containsWord(text, word string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(word))
}
