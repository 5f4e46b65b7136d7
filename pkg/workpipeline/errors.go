package workpipeline

import "github.com/memoria-systems/memoria/pkg/errx"

var wpErrors = errx.NewRegistry("WP")

var (
	ErrPublishFailed = wpErrors.Register("PUBLISH_FAILED", errx.TypeExternal, 502, "Failed to publish exchange to a work queue")
	ErrDiscovery     = wpErrors.Register("DISCOVERY_FAILED", errx.TypeExternal, 500, "Queue discovery scan failed")
	ErrDequeue       = wpErrors.Register("DEQUEUE_FAILED", errx.TypeExternal, 500, "Queue dequeue failed")
	ErrDecode        = wpErrors.Register("DECODE_FAILED", errx.TypeValidation, 400, "Malformed queue message")
	ErrCleanup       = wpErrors.Register("CLEANUP_FAILED", errx.TypeExternal, 500, "Queue cleanup scan failed")
)
