package memoryengine

import (
	"context"
	"time"

	"github.com/memoria-systems/memoria/pkg/asyncx"
	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// Mode selects which retrieval legs a turn runs.
type Mode int

const (
	ModeSemantic Mode = iota
	ModeRFM
	ModeCombined
)

// MemoriesRetrieved mirrors the external response shape from spec.md §6:
// each leg is present only for the modes that ran it.
type MemoriesRetrieved struct {
	Semantic []memory.Similar `json:"semantic,omitempty"`
	RFM      []memory.Record  `json:"rfm,omitempty"`
}

// TurnResult is what the Engine returns for a single chat turn.
type TurnResult struct {
	Answer            string
	FetchTime         time.Duration
	ResponseTime      time.Duration
	EmbeddingTime     time.Duration
	MemoriesRetrieved MemoriesRetrieved
}

// Chat runs retrieval for mode, composes the prompt, and calls the oracle
// for an answer. The three fetches (semantic KNN, RFM, recent chat) and the
// query embedding are issued concurrently and joined before prompt
// construction, per spec.md §5.
func (e *Engine) Chat(ctx context.Context, userID kernel.UserID, userInput string, mode Mode) (TurnResult, error) {
	turnStart := time.Now()

	var embedTime time.Duration
	var queryVec []float32
	var embedErr error

	needsSemantic := mode == ModeSemantic || mode == ModeCombined

	embedFuture := asyncx.Run(func() ([]float32, error) {
		if !needsSemantic {
			return nil, nil
		}
		start := time.Now()
		v, err := e.llm.Embed(ctx, userInput)
		embedTime = time.Since(start)
		return v, err
	})

	recentFuture := asyncx.Run(func() ([]memory.ChatRecord, error) {
		return e.store.RecentChats(ctx, userID, e.cfg.RecentChats)
	})

	var rfmFuture *asyncx.Future[[]memory.Record]
	if mode == ModeRFM || mode == ModeCombined {
		rfmFuture = asyncx.Run(func() ([]memory.Record, error) {
			return e.store.TopByRFM(ctx, userID, e.cfg.RFMK)
		})
	}

	queryVec, embedErr = embedFuture.Await()
	if embedErr != nil {
		return TurnResult{}, meErrors.NewWithCause(ErrEmbedFailed, embedErr).WithDetail("user_id", userID.String())
	}

	var semantic []memory.Similar
	if needsSemantic {
		cutoff := float32(0)
		if mode == ModeCombined {
			cutoff = e.cfg.CombinedCutoff
		} else {
			cutoff = e.cfg.SemanticCutoff
		}
		sem, err := e.store.KNN(ctx, userID, queryVec, e.cfg.SemanticK, cutoff, true)
		if err != nil {
			return TurnResult{}, meErrors.NewWithCause(ErrRetrieveFailed, err).WithDetail("user_id", userID.String())
		}
		semantic = sem
	}

	var rfm []memory.Record
	if rfmFuture != nil {
		r, err := rfmFuture.Await()
		if err != nil {
			return TurnResult{}, meErrors.NewWithCause(ErrRetrieveFailed, err).WithDetail("user_id", userID.String())
		}
		rfm = r
	}

	recent, err := recentFuture.Await()
	if err != nil {
		return TurnResult{}, meErrors.NewWithCause(ErrRetrieveFailed, err).WithDetail("user_id", userID.String())
	}

	fetchTime := time.Since(turnStart)

	prompt := buildPrompt(userInput, recent, semantic, rfm)

	genStart := time.Now()
	answer, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return TurnResult{}, meErrors.NewWithCause(ErrGenerateFailed, err).WithDetail("user_id", userID.String())
	}
	responseTime := time.Since(genStart)

	result := TurnResult{
		Answer:        answer,
		FetchTime:     fetchTime,
		ResponseTime:  responseTime,
		EmbeddingTime: embedTime,
	}
	if needsSemantic {
		result.MemoriesRetrieved.Semantic = semantic
	}
	if mode == ModeRFM || mode == ModeCombined {
		result.MemoriesRetrieved.RFM = rfm
	}
	return result, nil
}
