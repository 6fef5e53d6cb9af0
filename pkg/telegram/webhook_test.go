package telegram

import (
	"context"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/utils/dedup"
	"testing"
	"time"
)

const hookSecret = "hook-secret"

func webhookSettings(token string) *fakeSettings {
	settings := enabledSettings(token)
	secret := hookSecret
	settings.settings.WebhookEnabled = true
	settings.settings.WebhookSecret = &secret
	return settings
}

func newDeduplicator(t *testing.T) *dedup.Deduplicator {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return dedup.NewDeduplicator(rdb, time.Hour)
}

func TestWebhook_DropsRedeliveredUpdates(t *testing.T) {
	h := newHarness()
	hook := NewWebhook(webhookSettings("tok"), h.dispatcher, newDeduplicator(t), logging.Nop())
	ctx := context.Background()

	require.NoError(t, hook.Handle(ctx, hookSecret, webAppUpdate(100, qr)))
	require.NoError(t, hook.Handle(ctx, hookSecret, webAppUpdate(100, qr)))
	require.NoError(t, hook.Handle(ctx, hookSecret, textUpdate(101, "hi")))

	assert.Len(t, h.receipts.requests, 1)
	assert.Equal(t, []string{ReplyReceiptOK, ReplyScanPrompt}, h.bot.sentTexts())
	assert.Zero(t, h.state.Offset())
}

func TestWebhook_IgnoredUnlessWebhookMode(t *testing.T) {
	h := newHarness()
	hook := NewWebhook(enabledSettings("tok"), h.dispatcher, nil, logging.Nop())

	require.NoError(t, hook.Handle(context.Background(), hookSecret, textUpdate(1, "hi")))
	require.NoError(t, NewWebhook(&fakeSettings{}, h.dispatcher, nil, logging.Nop()).Handle(context.Background(), hookSecret, textUpdate(2, "hi")))
	assert.Empty(t, h.bot.sent)
}

func TestWebhook_WithoutRedisHandlesEveryDelivery(t *testing.T) {
	h := newHarness()
	hook := NewWebhook(webhookSettings("tok"), h.dispatcher, nil, logging.Nop())

	require.NoError(t, hook.Handle(context.Background(), hookSecret, textUpdate(1, "hi")))
	require.NoError(t, hook.Handle(context.Background(), hookSecret, textUpdate(1, "hi")))
	assert.Len(t, h.bot.sent, 2)
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	h := newHarness()
	hook := NewWebhook(webhookSettings("tok"), h.dispatcher, nil, logging.Nop())
	ctx := context.Background()

	for _, secret := range []string{"", "guess", hookSecret + "x"} {
		err := hook.Handle(ctx, secret, textUpdate(1, "/link ABC123"))
		assert.ErrorIs(t, err, domain.ErrWebhookSecretMismatch, secret)
	}
	assert.Empty(t, h.links.calls)
	assert.Empty(t, h.bot.sent)
}

func TestWebhook_RejectsWhenNoSecretConfigured(t *testing.T) {
	h := newHarness()
	settings := enabledSettings("tok")
	settings.settings.WebhookEnabled = true
	hook := NewWebhook(settings, h.dispatcher, nil, logging.Nop())

	err := hook.Handle(context.Background(), "", textUpdate(1, "hi"))
	assert.ErrorIs(t, err, domain.ErrWebhookSecretMismatch)
	assert.Empty(t, h.bot.sent)
}
