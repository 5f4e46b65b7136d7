package memoryengine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/rankingkernel"
)

// Decision is the parsed form of the oracle's decision-prompt reply.
type Decision struct {
	Kind    DecisionKind
	Targets []int // 1-based indices into the candidate list passed to decide
}

type DecisionKind int

const (
	DecisionNone DecisionKind = iota
	DecisionAdd
	DecisionMerge
	DecisionOverride
)

// WriteTurn runs the full extract -> decide -> apply pipeline for one
// exchange (spec.md §4.4). Candidates are processed sequentially, so a
// later candidate in the same exchange sees the writes of an earlier one.
func (e *Engine) WriteTurn(ctx context.Context, userID kernel.UserID, userMsg, botResp string) error {
	candidates, err := e.extract(ctx, userMsg, botResp)
	if err != nil {
		return meErrors.NewWithCause(ErrExtractFailed, err).WithDetail("user_id", userID.String())
	}

	for _, candidate := range candidates {
		if err := e.writeCandidate(ctx, userID, candidate); err != nil {
			return err
		}
	}
	return nil
}

// extract asks the oracle for 0-2 candidate memory sentences and parses the
// bullet-line reply, treating "None" or an empty reply as zero candidates.
func (e *Engine) extract(ctx context.Context, userMsg, botResp string) ([]string, error) {
	reply, err := e.llm.Generate(ctx, extractPrompt(userMsg, botResp))
	if err != nil {
		return nil, err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" || strings.EqualFold(reply, "none") {
		return nil, nil
	}

	var candidates []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "none") {
			continue
		}
		candidates = append(candidates, line)
		if len(candidates) >= e.cfg.ExtractMaxCandidates {
			break
		}
	}
	return candidates, nil
}

// writeCandidate runs decide+apply for a single candidate sentence.
func (e *Engine) writeCandidate(ctx context.Context, userID kernel.UserID, candidate string) error {
	vec, err := e.llm.Embed(ctx, candidate)
	if err != nil {
		return meErrors.NewWithCause(ErrDecideFailed, err).WithDetail("user_id", userID.String())
	}

	similar, err := e.store.KNN(ctx, userID, vec, e.cfg.DecisionK, 0, false)
	if err != nil {
		return meErrors.NewWithCause(ErrDecideFailed, err).WithDetail("user_id", userID.String())
	}

	reply, err := e.llm.Generate(ctx, decisionPrompt(candidate, similar))
	if err != nil {
		return meErrors.NewWithCause(ErrDecideFailed, err).WithDetail("user_id", userID.String())
	}

	decision := parseDecision(reply)

	switch decision.Kind {
	case DecisionAdd:
		return e.applyAdd(ctx, userID, candidate, vec)
	case DecisionMerge:
		return e.applyMerge(ctx, userID, candidate, similar, decision.Targets)
	case DecisionOverride:
		return e.applyOverride(ctx, userID, candidate, vec, similar, decision.Targets)
	default:
		e.logger.WithField("user_id", userID.String()).WithField("candidate", candidate).Debug("No memory update")
		return nil
	}
}

// parseDecision parses the oracle's reply into exactly one of
// add/merge:<indices>/override:<indices>/none. Anything unrecognized is
// treated as none, per spec.md §4.4.
func parseDecision(reply string) Decision {
	reply = strings.ToLower(strings.TrimSpace(reply))

	switch {
	case reply == "add":
		return Decision{Kind: DecisionAdd}
	case strings.HasPrefix(reply, "merge:"):
		return Decision{Kind: DecisionMerge, Targets: parseIndices(strings.TrimPrefix(reply, "merge:"))}
	case strings.HasPrefix(reply, "override:"):
		return Decision{Kind: DecisionOverride, Targets: parseIndices(strings.TrimPrefix(reply, "override:"))}
	default:
		return Decision{Kind: DecisionNone}
	}
}

func parseIndices(raw string) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// applyAdd stores a brand-new memory: fresh mem_id, frequency=1,
// last_used=created_at=now, magnitude from the oracle, rfm_score derived.
func (e *Engine) applyAdd(ctx context.Context, userID kernel.UserID, text string, embedding []float32) error {
	magnitude, err := e.magnitude(ctx, text)
	if err != nil {
		return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
	}

	now := time.Now()
	rec := memory.Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Embedding: embedding,
		Magnitude: magnitude,
		Frequency: 1,
		LastUsed:  now,
		CreatedAt: now,
		RFMScore:  rankingkernel.RFMScoreAt(now, 1, magnitude, now),
	}

	if err := e.store.StoreMemory(ctx, userID, rec); err != nil {
		return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
	}
	return nil
}

// applyMerge consolidates the candidate into each target's existing text
// via the oracle, re-embeds the merged sentence, bumps frequency by 1, and
// overwrites the record in place under its original mem_id.
func (e *Engine) applyMerge(ctx context.Context, userID kernel.UserID, candidate string, similar []memory.Similar, targets []int) error {
	for _, idx := range targets {
		existing, ok := targetRecord(similar, idx)
		if !ok {
			continue
		}

		merged, err := e.llm.Generate(ctx, consolidatePrompt(existing.Text, candidate))
		if err != nil {
			return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
		}
		merged = strings.TrimSpace(merged)

		vec, err := e.llm.Embed(ctx, merged)
		if err != nil {
			return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
		}

		magnitude, err := e.magnitude(ctx, merged)
		if err != nil {
			return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
		}

		now := time.Now()
		frequency := existing.Frequency + 1
		rec := memory.Record{
			ID:        existing.ID,
			UserID:    userID,
			Text:      merged,
			Embedding: vec,
			Magnitude: magnitude,
			Frequency: frequency,
			LastUsed:  now,
			CreatedAt: existing.CreatedAt,
			RFMScore:  rankingkernel.RFMScoreAt(now, frequency, magnitude, now),
		}
		if err := e.store.StoreMemory(ctx, userID, rec); err != nil {
			return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
		}
	}
	return nil
}

// applyOverride overwrites each target's text/embedding/magnitude with the
// candidate's verbatim, bumping frequency independently per target with no
// dedup across targets, per the binding Open Question resolution.
func (e *Engine) applyOverride(ctx context.Context, userID kernel.UserID, candidate string, embedding []float32, similar []memory.Similar, targets []int) error {
	magnitude, err := e.magnitude(ctx, candidate)
	if err != nil {
		return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
	}

	for _, idx := range targets {
		existing, ok := targetRecord(similar, idx)
		if !ok {
			continue
		}

		now := time.Now()
		frequency := existing.Frequency + 1
		rec := memory.Record{
			ID:        existing.ID,
			UserID:    userID,
			Text:      candidate,
			Embedding: embedding,
			Magnitude: magnitude,
			Frequency: frequency,
			LastUsed:  now,
			CreatedAt: existing.CreatedAt,
			RFMScore:  rankingkernel.RFMScoreAt(now, frequency, magnitude, now),
		}
		if err := e.store.StoreMemory(ctx, userID, rec); err != nil {
			return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
		}
	}
	return nil
}

// magnitude asks the oracle to rate a memory's importance on a 0-5 scale
// and parses the first number found in the reply, clamped to [0, 5]; a
// reply with no number yields 0.
func (e *Engine) magnitude(ctx context.Context, text string) (float64, error) {
	reply, err := e.llm.Generate(ctx, magnitudePrompt(text))
	if err != nil {
		return 0, err
	}
	reply = strings.TrimSpace(reply)
	for _, field := range strings.Fields(reply) {
		if n, err := strconv.ParseFloat(field, 64); err == nil {
			if n < 0 {
				n = 0
			}
			if n > 5 {
				n = 5
			}
			return n, nil
		}
	}
	return 0, nil
}

// targetRecord resolves a 1-based decision-prompt index into the similar
// record it named.
func targetRecord(similar []memory.Similar, idx int) (memory.Record, bool) {
	if idx < 1 || idx > len(similar) {
		return memory.Record{}, false
	}
	return similar[idx-1].Record, true
}
