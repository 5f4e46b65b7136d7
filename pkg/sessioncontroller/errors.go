package sessioncontroller

import "github.com/memoria-systems/memoria/pkg/errx"

var scErrors = errx.NewRegistry("SC")

var (
	ErrLoginFailed  = scErrors.Register("LOGIN_FAILED", errx.TypeExternal, 502, "Session login failed")
	ErrLogoutFailed = scErrors.Register("LOGOUT_FAILED", errx.TypeExternal, 502, "Session logout failed")
)
