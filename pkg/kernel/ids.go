package kernel

// UserID identifies the owner of a memory/chat partition. It is the tag
// field every VKC and store operation is namespaced by.
type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }
