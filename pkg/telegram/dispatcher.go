package telegram

import (
	"context"
	"errors"
	"fmt"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/utils/ratelimit"
	"pricecrowd-backend/pkg/linking"
	"pricecrowd-backend/pkg/receipt"
	"strconv"
	"strings"
)

const (
	ReplyReceiptOK        = "✅ Receipt submitted"
	ReplyReceiptDuplicate = "⚠️ This receipt was already uploaded"
	ReplyReceiptInvalid   = "That QR code does not look like a receipt"
	ReplyReceiptFailed    = "Failed to upload the receipt, please try again later"
	ReplyLinked           = "Account linked ✅"
	ReplyLinkInvalid      = "Code is invalid or expired ❌"
	ReplyLinkFailed       = "Linking failed"
	ReplyScanPrompt       = "Scan the receipt QR code"
	ScanButtonText        = "📷 Scan receipt"

	HelpText = `PriceCrowd collects shop prices from fiscal receipts.

Press "Scan receipt" and point the camera at the QR code printed on the receipt.
To link this chat to your PriceCrowd account, open the profile page, request a code and send it here (or /link CODE).
/privacy shows the privacy policy.`

	PrivacyText = `PriceCrowd privacy policy

1) The service is run for research and educational purposes.
2) Only the text of the receipt QR code is sent to the server. The QR is decoded on your device.
3) Receipt data (date, total, fiscal identifiers, items and prices) is taken from the public tax-authority API and stored without personal data.
4) The service does not store names, phone numbers, addresses, e-mails, photos of receipts or card data.
5) Data is transmitted over HTTPS only and is used for price statistics.
6) You may ask for deletion of the data linked to your Telegram ID by writing to this bot.`

	telegramFallbackUser = "telegram"
)

// Dispatcher turns one incoming chat message into domain calls and a reply.
// It is shared by the polling worker and the webhook.
type Dispatcher struct {
	receipts  receipt.ReceiptService
	links     linking.LinkService
	bot       BotAPI
	limiter   *ratelimit.RateLimiter
	webAppURL string
	state     *WorkerState
	logger    logging.Logger
}

func NewDispatcher(
	receipts receipt.ReceiptService,
	links linking.LinkService,
	bot BotAPI,
	limiter *ratelimit.RateLimiter,
	webAppURL string,
	state *WorkerState,
	logger logging.Logger,
) *Dispatcher {
	return &Dispatcher{
		receipts:  receipts,
		links:     links,
		bot:       bot,
		limiter:   limiter,
		webAppURL: webAppURL,
		state:     state,
		logger:    logger,
	}
}

// ParseLinkCode extracts a link code from "/link CODE" or a bare six
// character alphanumeric message.
func ParseLinkCode(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(t, "/link "); ok {
		code := strings.ToUpper(strings.TrimSpace(rest))
		return code, code != ""
	}
	if len(t) != linking.CodeLength {
		return "", false
	}
	for _, r := range t {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "", false
		}
	}
	return strings.ToUpper(t), true
}

func isPrivacyQuery(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "/privacy" || t == "/policy" || strings.Contains(t, "privacy")
}

func isHelpQuery(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "/help" || t == "/start"
}

func submitter(from *User) string {
	switch {
	case from == nil:
		return telegramFallbackUser
	case from.Username != "":
		return from.Username
	default:
		return strconv.FormatInt(from.ID, 10)
	}
}

// Handle processes one update. The returned error is already logged; callers
// use it only for accounting.
func (d *Dispatcher) Handle(ctx context.Context, token string, update Update) error {
	msg := update.Message
	if msg == nil {
		return nil
	}

	if msg.WebAppData != nil {
		return d.handleReceipt(ctx, token, msg, msg.WebAppData.Data)
	}
	if receipt.LooksLikeReceiptQR(msg.Text) {
		return d.handleReceipt(ctx, token, msg, msg.Text)
	}
	if code, ok := ParseLinkCode(msg.Text); ok {
		return d.handleLink(ctx, token, msg, code)
	}
	if isPrivacyQuery(msg.Text) {
		return d.reply(ctx, token, msg.Chat.ID, PrivacyText, nil)
	}
	if isHelpQuery(msg.Text) {
		return d.reply(ctx, token, msg.Chat.ID, HelpText, d.scanMarkup())
	}
	return d.reply(ctx, token, msg.Chat.ID, ReplyScanPrompt, d.scanMarkup())
}

func (d *Dispatcher) handleReceipt(ctx context.Context, token string, msg *Message, qr string) error {
	status, err := d.receipts.Submit(ctx, domain.SubmitReceiptRequest{
		QR:     qr,
		User:   submitter(msg.From),
		Source: domain.SourceTelegramBot,
	})
	if err != nil {
		d.log(ctx, "error", fmt.Sprintf("upload qr error: %v", err))
		return errors.Join(err, d.reply(ctx, token, msg.Chat.ID, ReplyReceiptFailed, nil))
	}

	switch status {
	case domain.ReceiptStatusOK:
		d.log(ctx, "info", "receipt submitted")
		return d.reply(ctx, token, msg.Chat.ID, ReplyReceiptOK, nil)
	case domain.ReceiptStatusDuplicate:
		return d.reply(ctx, token, msg.Chat.ID, ReplyReceiptDuplicate, nil)
	default:
		return d.reply(ctx, token, msg.Chat.ID, ReplyReceiptInvalid, nil)
	}
}

func (d *Dispatcher) handleLink(ctx context.Context, token string, msg *Message, code string) error {
	var displayName *string
	if msg.From != nil && msg.From.Username != "" {
		name := msg.From.Username
		displayName = &name
	}

	ok, err := d.links.Consume(ctx, code, msg.Chat.ID, displayName)
	if err != nil {
		d.log(ctx, "error", fmt.Sprintf("link error: %v", err))
		return errors.Join(err, d.reply(ctx, token, msg.Chat.ID, ReplyLinkFailed, nil))
	}
	if !ok {
		d.log(ctx, "warn", "invalid code "+code)
		return d.reply(ctx, token, msg.Chat.ID, ReplyLinkInvalid, nil)
	}
	d.log(ctx, "info", "linked code "+code)
	return d.reply(ctx, token, msg.Chat.ID, ReplyLinked, nil)
}

func (d *Dispatcher) scanMarkup() *InlineKeyboardMarkup {
	if d.webAppURL == "" {
		return nil
	}
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: ScanButtonText, WebApp: &WebAppInfo{URL: d.webAppURL}},
		}},
	}
}

func (d *Dispatcher) reply(ctx context.Context, token string, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	if err := d.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimitTimeout) {
			d.log(ctx, "warn", "send throttled: "+err.Error())
			return err
		}
		d.logger.Warn(ctx, "rate limiter unavailable", "error", err)
	}
	if err := d.bot.SendMessage(ctx, token, chatID, text, markup); err != nil {
		d.log(ctx, "warn", fmt.Sprintf("sendMessage error: %v", err))
		return err
	}
	return nil
}

func (d *Dispatcher) log(ctx context.Context, level, message string) {
	d.state.PushLog(level, message)
	switch level {
	case "error":
		d.logger.Error(ctx, message)
	case "warn":
		d.logger.Warn(ctx, message)
	default:
		d.logger.Info(ctx, message)
	}
}
