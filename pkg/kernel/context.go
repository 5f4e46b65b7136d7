package kernel

// ContextKey namespaces values stored on a context.Context.
type ContextKey string

const (
	// RequestIDKey is the key under which the inbound request id is stored.
	RequestIDKey ContextKey = "request_id"

	// UserContextKey is the key under which the active UserID is stored,
	// set by the HTTP façade for the duration of a single request.
	UserContextKey ContextKey = "user_id"
)
