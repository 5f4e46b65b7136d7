package memoryengine

import "github.com/memoria-systems/memoria/pkg/errx"

var meErrors = errx.NewRegistry("ME")

var (
	ErrRetrieveFailed = meErrors.Register("RETRIEVE_FAILED", errx.TypeExternal, 502, "Memory retrieval failed")
	ErrEmbedFailed     = meErrors.Register("EMBED_FAILED", errx.TypeExternal, 502, "Query embedding failed")
	ErrGenerateFailed  = meErrors.Register("GENERATE_FAILED", errx.TypeExternal, 502, "Answer generation failed")
	ErrExtractFailed   = meErrors.Register("EXTRACT_FAILED", errx.TypeExternal, 502, "Memory extraction failed")
	ErrDecideFailed    = meErrors.Register("DECIDE_FAILED", errx.TypeExternal, 502, "Decision step failed")
	ErrApplyFailed     = meErrors.Register("APPLY_FAILED", errx.TypeExternal, 502, "Failed to apply a write-path decision")
)
