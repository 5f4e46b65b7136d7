package postgres

import "github.com/memoria-systems/memoria/pkg/errx"

var pgErrors = errx.NewRegistry("STORE_PG")

var (
	ErrQuery  = pgErrors.Register("QUERY_FAILED", errx.TypeExternal, 502, "Postgres query failed")
	ErrUpsert = pgErrors.Register("UPSERT_FAILED", errx.TypeExternal, 502, "Postgres upsert failed")
	ErrBegin  = pgErrors.Register("BEGIN_FAILED", errx.TypeExternal, 502, "Failed to begin transaction")
)
