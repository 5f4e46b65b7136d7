package workpipeline

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/memoria-systems/memoria/pkg/kernel"
)

// Producer publishes one exchange to both queue families. Per spec.md §4.5,
// publication is "fire and log": the caller (the HTTP turn handler) decides
// whether a publish failure is surfaced to the client.
type Producer struct {
	rdb *redis.Client
}

func NewProducer(rdb *redis.Client) *Producer {
	return &Producer{rdb: rdb}
}

// Publish pushes msg onto both the per-user memory-tasks queue and the
// per-user message-logs queue in a single MULTI/EXEC transaction, so a turn
// either durably enqueues on both or neither.
func (p *Producer) Publish(ctx context.Context, userID kernel.UserID, userMsg, botResp string) error {
	msg := Message{UserID: userID, UserMessage: userMsg, BotResponse: botResp}
	data, err := msg.marshal()
	if err != nil {
		return wpErrors.NewWithCause(ErrPublishFailed, err).WithDetail("user_id", userID.String())
	}

	pipe := p.rdb.TxPipeline()
	pipe.LPush(ctx, memoryQueueKey(userID), data)
	pipe.LPush(ctx, logQueueKey(userID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return wpErrors.NewWithCause(ErrPublishFailed, err).WithDetail("user_id", userID.String())
	}
	return nil
}
