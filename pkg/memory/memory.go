// Package memory defines the shared data model for the memory tier: the
// memory record, the chat record, and the invariants every component that
// touches them must uphold.
package memory

import (
	"time"

	"github.com/memoria-systems/memoria/pkg/kernel"
)

// EmbeddingDim is the fixed dimensionality of every embedding in the system.
// It is load-bearing: the VKC's packed binary layout and the oracle's embed
// call both assume it.
const EmbeddingDim = 768

// Record is a single memory: a short third-person fact about a user, its
// embedding, and the ranking metadata the Ranking Kernel derives from it.
type Record struct {
	ID         string        `json:"id"`
	UserID     kernel.UserID `json:"user_id"`
	Text       string        `json:"memory_text"`
	Embedding  []float32     `json:"embedding"`
	Magnitude  float64       `json:"magnitude"`
	Frequency  int           `json:"frequency"`
	LastUsed   time.Time     `json:"last_used"`
	CreatedAt  time.Time     `json:"created_at"`
	RFMScore   float64       `json:"rfm_score"`
}

// Valid reports whether r satisfies the data-model invariants from §3: a
// non-empty text, a full-width embedding, and both timestamps set. It does
// not check rfm_score, since that is derived and recomputed by the caller.
func (r Record) Valid() bool {
	if r.Text == "" || r.ID == "" || r.UserID == "" {
		return false
	}
	if len(r.Embedding) != EmbeddingDim {
		return false
	}
	if r.LastUsed.IsZero() || r.CreatedAt.IsZero() {
		return false
	}
	return true
}

// ChatRecord is a single logged exchange.
type ChatRecord struct {
	ID           string        `json:"id"`
	UserID       kernel.UserID `json:"user_id"`
	UserMessage  string        `json:"user_message"`
	BotResponse  string        `json:"bot_response"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Similar is one existing memory surfaced during KNN retrieval, paired with
// its similarity score against the query vector. Smaller Similarity is not
// necessarily "closer" here — VKC KNN results carry cosine similarity
// directly, where larger means more similar.
type Similar struct {
	Record
	Similarity float32 `json:"similarity"`
}
