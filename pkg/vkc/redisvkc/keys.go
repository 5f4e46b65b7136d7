package redisvkc

import "fmt"

func memKey(userID, memID string) string { return fmt.Sprintf("mem:%s:%s", userID, memID) }
func memIndexKey(userID string) string   { return fmt.Sprintf("mem:idx:%s", userID) }
func memRFMKey(userID string) string     { return fmt.Sprintf("mem:rfm:%s", userID) }

func chatKey(userID, chatID string) string { return fmt.Sprintf("chat:%s:%s", userID, chatID) }
func chatIndexKey(userID string) string    { return fmt.Sprintf("chat:idx:%s", userID) }
func chatTSKey(userID string) string       { return fmt.Sprintf("chat:ts:%s", userID) }
