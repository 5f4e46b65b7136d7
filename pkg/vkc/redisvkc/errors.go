package redisvkc

import "github.com/memoria-systems/memoria/pkg/errx"

var redisVKCErrors = errx.NewRegistry("VKC_REDIS")

var (
	ErrPipeline = redisVKCErrors.Register("PIPELINE", errx.TypeExternal, 502, "Redis pipeline failed")
	ErrScan     = redisVKCErrors.Register("SCAN", errx.TypeExternal, 502, "Redis scan failed")
	ErrHGetAll  = redisVKCErrors.Register("HGETALL", errx.TypeExternal, 502, "Redis hash read failed")
	ErrDecode   = redisVKCErrors.Register("DECODE", errx.TypeInternal, 500, "Failed to decode cached record")
)
