package domain

import (
	"time"
)

var (
	MessageSuccessLogin     = "login success"
	MessageSuccessLinkStart = "link code issued"
	MessageSuccessLinkState = "link status retrieved"
	MessageFailedLogin      = "failed to login"
	MessageFailedLink       = "failed to link telegram account"

	ErrInvalidCredentials = NewError(ErrUnauthorized, "invalid_credentials", "invalid username or password")
	ErrUserNotFound       = NewError(ErrNotFound, "user_not_found", "user not found")
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	LinkStartResponse struct {
		Code  string    `json:"code"`
		ExpAt time.Time `json:"exp_at"`
	}

	LinkStatusResponse struct {
		Linked           bool    `json:"linked"`
		TelegramUsername *string `json:"telegram_username,omitempty"`
	}
)
