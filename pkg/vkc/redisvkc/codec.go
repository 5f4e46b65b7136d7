package redisvkc

import (
	"strconv"
	"time"

	"github.com/memoria-systems/memoria/pkg/kernel"
	"github.com/memoria-systems/memoria/pkg/memory"
)

// memoryToHash flattens a memory.Record into the field map stored in its
// Redis hash. Numeric fields are stored as decimal strings, matching the
// reference job adapter's preference for plain string encodings over a
// binary struct format; the embedding is the one field stored as raw bytes.
func memoryToHash(rec memory.Record) map[string]any {
	return map[string]any{
		"id":         rec.ID,
		"user_id":    rec.UserID.String(),
		"memory_text": rec.Text,
		"embedding":  memory.PackEmbedding(rec.Embedding),
		"magnitude":  strconv.FormatFloat(rec.Magnitude, 'f', -1, 64),
		"frequency":  strconv.Itoa(rec.Frequency),
		"last_used":  strconv.FormatInt(rec.LastUsed.UTC().Unix(), 10),
		"created_at": strconv.FormatInt(rec.CreatedAt.UTC().Unix(), 10),
		"rfm_score":  strconv.FormatFloat(rec.RFMScore, 'f', -1, 64),
	}
}

// hashToMemory decodes a Redis hash (as returned by HGetAll) back into a
// memory.Record. Returns false if the hash has no id, which happens when
// the key has expired or never existed between the SMEMBERS scan and the
// HGETALL read; other missing fields decode to their zero values.
func hashToMemory(h map[string]string) (memory.Record, bool) {
	if h["id"] == "" {
		return memory.Record{}, false
	}

	magnitude, _ := strconv.ParseFloat(h["magnitude"], 64)
	frequency, _ := strconv.Atoi(h["frequency"])
	lastUsedUnix, _ := strconv.ParseInt(h["last_used"], 10, 64)
	createdAtUnix, _ := strconv.ParseInt(h["created_at"], 10, 64)
	rfm, _ := strconv.ParseFloat(h["rfm_score"], 64)

	return memory.Record{
		ID:        h["id"],
		UserID:    kernel.NewUserID(h["user_id"]),
		Text:      h["memory_text"],
		Embedding: memory.UnpackEmbedding([]byte(h["embedding"])),
		Magnitude: magnitude,
		Frequency: frequency,
		LastUsed:  time.Unix(lastUsedUnix, 0).UTC(),
		CreatedAt: time.Unix(createdAtUnix, 0).UTC(),
		RFMScore:  rfm,
	}, true
}

func chatToHash(rec memory.ChatRecord) map[string]any {
	return map[string]any{
		"id":            rec.ID,
		"user_id":       rec.UserID.String(),
		"user_message":  rec.UserMessage,
		"bot_response":  rec.BotResponse,
		"timestamp":     strconv.FormatInt(rec.Timestamp.UTC().Unix(), 10),
	}
}

func hashToChat(h map[string]string) (memory.ChatRecord, bool) {
	if h["id"] == "" {
		return memory.ChatRecord{}, false
	}

	tsUnix, _ := strconv.ParseInt(h["timestamp"], 10, 64)

	return memory.ChatRecord{
		ID:          h["id"],
		UserID:      kernel.NewUserID(h["user_id"]),
		UserMessage: h["user_message"],
		BotResponse: h["bot_response"],
		Timestamp:   time.Unix(tsUnix, 0).UTC(),
	}, true
}
