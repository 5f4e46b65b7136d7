package main

import "github.com/memoria-systems/memoria/pkg/errx"

var httpErrors = errx.NewRegistry("HTTP")

var (
	ErrMissingUserID = httpErrors.Register("MISSING_USER_ID", errx.TypeValidation, 400, "user_id is required")
	ErrMissingInput  = httpErrors.Register("MISSING_USER_INPUT", errx.TypeValidation, 400, "user_input is required")
	ErrBadRequest    = httpErrors.Register("BAD_REQUEST", errx.TypeValidation, 400, "Request body could not be parsed")
)
