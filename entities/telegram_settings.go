package entities

const TelegramSettingsKey = "telegram"

type TelegramSettings struct {
	Key            string  `gorm:"primaryKey;size:32" json:"-"`
	Token          *string `json:"token,omitempty"`
	ChatID         *string `json:"chat_id,omitempty"`
	WebhookURL     *string `json:"webhook_url,omitempty"`
	Enabled        bool    `json:"enabled"`
	WebhookEnabled bool    `json:"webhook_enabled"`
	// WebhookSecret is echoed by Telegram in X-Telegram-Bot-Api-Secret-Token.
	WebhookSecret *string `json:"-"`
	Timestamp
}
