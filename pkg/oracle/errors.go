package oracle

import "github.com/memoria-systems/memoria/pkg/errx"

var oracleErrors = errx.NewRegistry("ORACLE")

var (
	ErrMissingAPIKey   = oracleErrors.Register("MISSING_API_KEY", errx.TypeValidation, 400, "Missing provider API key")
	ErrEmptyPrompt     = oracleErrors.Register("EMPTY_PROMPT", errx.TypeValidation, 400, "Prompt cannot be empty")
	ErrGenerateFailed  = oracleErrors.Register("GENERATE_FAILED", errx.TypeExternal, 502, "Provider generation call failed")
	ErrEmbedFailed     = oracleErrors.Register("EMBED_FAILED", errx.TypeExternal, 502, "Provider embedding call failed")
	ErrEmbedNotSupported = oracleErrors.Register("EMBED_NOT_SUPPORTED", errx.TypeValidation, 400, "Provider does not support embeddings")
	ErrNoContent       = oracleErrors.Register("NO_CONTENT", errx.TypeExternal, 502, "Provider returned no content")
	ErrUnknownProvider = oracleErrors.Register("UNKNOWN_PROVIDER", errx.TypeValidation, 400, "Unknown oracle provider")
)
