package postgres

import (
	"time"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// memoryPersistence mirrors the persona_category table, one field per
// column, following the reference repo's apiKeyPersistence convention.
type memoryPersistence struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	MemoryText string    `db:"memory_text"`
	Embedding  []byte    `db:"embedding"`
	Magnitude  float64   `db:"magnitude"`
	Frequency  int       `db:"frequency"`
	LastUsed   time.Time `db:"last_used"`
	RFMScore   float64   `db:"rfm_score"`
	CreatedAt  time.Time `db:"created_at"`
}

func memoryToPersistence(userID kernel.UserID, rec memory.Record) memoryPersistence {
	return memoryPersistence{
		ID:         rec.ID,
		UserID:     userID.String(),
		MemoryText: rec.Text,
		Embedding:  memory.PackEmbedding(rec.Embedding),
		Magnitude:  rec.Magnitude,
		Frequency:  rec.Frequency,
		LastUsed:   rec.LastUsed.UTC(),
		RFMScore:   rec.RFMScore,
		CreatedAt:  rec.CreatedAt.UTC(),
	}
}

func memoryToDomain(p memoryPersistence) memory.Record {
	return memory.Record{
		ID:        p.ID,
		UserID:    kernel.NewUserID(p.UserID),
		Text:      p.MemoryText,
		Embedding: memory.UnpackEmbedding(p.Embedding),
		Magnitude: p.Magnitude,
		Frequency: p.Frequency,
		LastUsed:  p.LastUsed,
		CreatedAt: p.CreatedAt,
		RFMScore:  p.RFMScore,
	}
}

// chatPersistence mirrors the chat_message_logs table.
type chatPersistence struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	UserMessage string    `db:"user_message"`
	BotResponse string    `db:"bot_response"`
	Timestamp   time.Time `db:"timestamp"`
}

func chatToPersistence(userID kernel.UserID, rec memory.ChatRecord) chatPersistence {
	return chatPersistence{
		ID:          rec.ID,
		UserID:      userID.String(),
		UserMessage: rec.UserMessage,
		BotResponse: rec.BotResponse,
		Timestamp:   rec.Timestamp.UTC(),
	}
}

func chatToDomain(p chatPersistence) memory.ChatRecord {
	return memory.ChatRecord{
		ID:          p.ID,
		UserID:      kernel.NewUserID(p.UserID),
		UserMessage: p.UserMessage,
		BotResponse: p.BotResponse,
		Timestamp:   p.Timestamp,
	}
}
