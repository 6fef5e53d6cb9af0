package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	MessageUserNotAllowed       = "user not allowed"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	ErrUserNotAllowed = NewError(ErrForbidden, "user_not_allowed", "user not allowed")
	ErrTokenNotFound  = NewError(ErrUnauthorized, "token_not_found", "failed to token not found")
	ErrTokenInvalid   = NewError(ErrUnauthorized, "token_invalid", "token invalid")
	ErrTokenExpired   = NewError(ErrUnauthorized, "token_expired", "token expired")
)
