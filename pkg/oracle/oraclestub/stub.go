// Package oraclestub provides a deterministic oracle.Oracle for tests that
// must drive the Memory Engine's decision machine without network calls
// (spec.md §9: "the oracle must be interface-abstracted so a deterministic
// stub can drive property tests").
package oraclestub

import (
	"context"
	"crypto/sha256"
	"strings"
	"sync"
)

// Stub is a scriptable oracle.Oracle. Generate returns the response of a
// Responses key found as a substring of the prompt; Default is returned when
// nothing matches. Every prompt is recorded in Calls. Embed is always
// deterministic, a bag-of-words vector built from per-word hashes, so the
// same text always embeds to the same vector and texts sharing words score
// as more similar than texts that share none.
type Stub struct {
	mu sync.Mutex

	// Responses maps a substring that must appear in the prompt to the text
	// to return. Checked in map iteration order is not guaranteed, so tests
	// that need determinism across multiple matches should keep their
	// substrings mutually exclusive.
	Responses map[string]string

	// Default is returned when no entry in Responses matches.
	Default string

	// Dim is the embedding width to produce. Defaults to 768 if zero.
	Dim int

	// Calls records every prompt passed to Generate, in order, for
	// assertions in tests.
	Calls []string
}

// New creates a Stub with the given default response.
func New(defaultResponse string) *Stub {
	return &Stub{
		Responses: make(map[string]string),
		Default:   defaultResponse,
		Dim:       768,
	}
}

// On registers a scripted response for prompts containing substr.
func (s *Stub) On(substr, response string) *Stub {
	s.Responses[substr] = response
	return s
}

// Generate returns a scripted response whose key is a substring of prompt,
// or Default otherwise. When several keys match, which one wins is not
// defined (map iteration order).
func (s *Stub) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, prompt)
	s.mu.Unlock()

	for substr, resp := range s.Responses {
		if strings.Contains(prompt, substr) {
			return resp, nil
		}
	}
	return s.Default, nil
}

// Embed derives a deterministic bag-of-words pseudo-embedding: each
// lowercased word hashes into one vector slot and increments it. This keeps
// the stub useful for driving KNN-based tests — two sentences sharing
// vocabulary ("piano") land closer together by cosine similarity than two
// unrelated sentences, without requiring a real embedding model.
func (s *Stub) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := s.Dim
	if dim == 0 {
		dim = 768
	}

	vec := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(word))
		idx := int(sum[0])<<8 | int(sum[1])
		vec[idx%dim]++
	}
	return vec, nil
}
