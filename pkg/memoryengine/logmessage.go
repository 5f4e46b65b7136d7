package memoryengine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// LogMessage records a single exchange in the chat log, independent of the
// write-path's memory extraction. It is what the Work Pipeline's log
// worker calls per spec.md §4.5 ("parse → ME.log_message → ack").
func (e *Engine) LogMessage(ctx context.Context, userID kernel.UserID, userMsg, botResp string) error {
	rec := memory.ChatRecord{
		ID:          uuid.New().String(),
		UserID:      userID,
		UserMessage: userMsg,
		BotResponse: botResp,
		Timestamp:   time.Now(),
	}
	if err := e.store.StoreChat(ctx, userID, rec); err != nil {
		return meErrors.NewWithCause(ErrApplyFailed, err).WithDetail("user_id", userID.String())
	}
	return nil
}
