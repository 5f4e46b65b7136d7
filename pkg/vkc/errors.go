package vkc

import "github.com/memoria-systems/memoria/pkg/errx"

var vkcErrors = errx.NewRegistry("VKC")

var (
	ErrStoreMemory = vkcErrors.Register("STORE_MEMORY", errx.TypeExternal, 502, "Failed to store memory")
	ErrStoreChat   = vkcErrors.Register("STORE_CHAT", errx.TypeExternal, 502, "Failed to store chat")
	ErrKNN         = vkcErrors.Register("KNN", errx.TypeExternal, 502, "KNN query failed")
	ErrTopByRFM    = vkcErrors.Register("TOP_BY_RFM", errx.TypeExternal, 502, "RFM index query failed")
	ErrRecentChats = vkcErrors.Register("RECENT_CHATS", errx.TypeExternal, 502, "Recent chats query failed")
	ErrAllMemories = vkcErrors.Register("ALL_MEMORIES", errx.TypeExternal, 502, "Failed to list memories")
	ErrAllChats    = vkcErrors.Register("ALL_CHATS", errx.TypeExternal, 502, "Failed to list chats")
	ErrPurge       = vkcErrors.Register("PURGE", errx.TypeExternal, 502, "Failed to purge user namespace")
	ErrDecode      = vkcErrors.Register("DECODE", errx.TypeInternal, 500, "Failed to decode cached record")
)
