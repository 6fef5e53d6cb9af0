package domain

var (
	MessageSuccessGetSettings    = "settings retrieved successfully"
	MessageSuccessUpdateSettings = "settings updated successfully"
	MessageSuccessGetBotStatus   = "bot status retrieved successfully"
	MessageFailedGetSettings     = "failed to retrieve settings"
	MessageFailedUpdateSettings  = "failed to update settings"

	ErrWebhookSecretMismatch = NewError(ErrForbidden, "webhook_secret_mismatch", "webhook secret token does not match")
)

type (
	TelegramSettingsRequest struct {
		Token          *string `json:"token"`
		ChatID         *string `json:"chat_id"`
		WebhookURL     *string `json:"webhook_url" validate:"omitempty,url"`
		Enabled        *bool   `json:"enabled"`
		WebhookEnabled *bool   `json:"webhook_enabled"`
		WebhookSecret  *string `json:"webhook_secret" validate:"omitempty,max=256"`
	}

	TelegramSettingsResponse struct {
		Token          *string `json:"token,omitempty"`
		ChatID         *string `json:"chat_id,omitempty"`
		WebhookURL     *string `json:"webhook_url,omitempty"`
		Enabled        bool    `json:"enabled"`
		WebhookEnabled bool    `json:"webhook_enabled"`
		WebhookSecret  *string `json:"webhook_secret,omitempty"`
	}

	BotLogEntry struct {
		TsMs    int64  `json:"ts_ms"`
		Level   string `json:"level"`
		Message string `json:"message"`
	}

	BotStatusResponse struct {
		Enabled        bool          `json:"enabled"`
		WebhookEnabled bool          `json:"webhook_enabled"`
		Polling        bool          `json:"polling"`
		LastPollMs     int64         `json:"last_poll_ms"`
		Logs           []BotLogEntry `json:"logs"`
	}
)
