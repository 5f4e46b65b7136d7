package store

import "github.com/memoria-systems/memoria/pkg/errx"

var storeErrors = errx.NewRegistry("STORE")

var (
	ErrQueryFailed  = storeErrors.Register("QUERY_FAILED", errx.TypeExternal, 502, "Store query failed")
	ErrUpsertFailed = storeErrors.Register("UPSERT_FAILED", errx.TypeExternal, 502, "Store upsert failed")
	ErrMigrateFailed = storeErrors.Register("MIGRATE_FAILED", errx.TypeInternal, 500, "Store schema migration failed")
)
