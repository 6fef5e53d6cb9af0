package telegram

import (
	"context"
	"crypto/subtle"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/utils/dedup"
	"strconv"
)

const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type Webhook struct {
	settings   SettingsRepository
	dispatcher *Dispatcher
	dedup      *dedup.Deduplicator
	logger     logging.Logger
}

// NewWebhook accepts a nil deduplicator; redeliveries are then handled again.
func NewWebhook(settings SettingsRepository, dispatcher *Dispatcher, deduplicator *dedup.Deduplicator, logger logging.Logger) *Webhook {
	return &Webhook{
		settings:   settings,
		dispatcher: dispatcher,
		dedup:      deduplicator,
		logger:     logger.With("component", "telegram_webhook"),
	}
}

// Handle dispatches a pushed update when webhook mode is on and secret
// matches the configured webhook secret. It never moves the polling cursor.
func (w *Webhook) Handle(ctx context.Context, secret string, update Update) error {
	settings, err := w.settings.Get(ctx)
	if err != nil {
		w.logger.Error(ctx, "load telegram settings failed", "error", err)
		return err
	}
	if settings == nil || !settings.Enabled || !settings.WebhookEnabled || settings.Token == nil || *settings.Token == "" {
		return nil
	}
	if settings.WebhookSecret == nil || subtle.ConstantTimeCompare([]byte(secret), []byte(*settings.WebhookSecret)) != 1 {
		w.logger.Warn(ctx, "webhook update with bad secret rejected", "update_id", update.UpdateID)
		return domain.ErrWebhookSecretMismatch
	}

	dup, err := w.dedup.IsDuplicate(ctx, "tg-update:"+strconv.FormatInt(update.UpdateID, 10))
	if err != nil {
		w.logger.Warn(ctx, "webhook dedup unavailable", "error", err)
	}
	if dup {
		w.logger.Debug(ctx, "duplicate webhook update dropped", "update_id", update.UpdateID)
		return nil
	}
	return w.dispatcher.Handle(ctx, *settings.Token, update)
}
