// Package workpipeline implements the Work Pipeline: two durable per-user
// queue families driven by dynamic queue discovery (spec.md §4.5),
// generalizing the reference repo's static job queue (pkg/jobx/jobxredis)
// from one named queue to a per-user family enumerated at runtime.
package workpipeline

import (
	"encoding/json"
	"fmt"

	"github.com/memoria-systems/memoria/pkg/kernel"
)

const (
	memoryQueuePrefix = "memory_tasks_user_"
	logQueuePrefix    = "message_logs_user_"
)

func memoryQueueKey(userID kernel.UserID) string {
	return memoryQueuePrefix + userID.String()
}

func logQueueKey(userID kernel.UserID) string {
	return logQueuePrefix + userID.String()
}

// Message is one logged exchange, the unit of work on both queue families.
type Message struct {
	UserID      kernel.UserID `json:"user_id"`
	UserMessage string        `json:"user_message"`
	BotResponse string        `json:"bot_response"`
}

func (m Message) marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

func unmarshalMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return m, nil
}
