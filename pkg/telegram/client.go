package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"net/http"
	"net/url"
	"pricecrowd-backend/domain"
	"strings"
	"time"
)

const (
	DefaultAPIURL = "https://api.telegram.org"

	sendTimeout = 10 * time.Second
	pollSlack   = 10 * time.Second
)

type (
	Update struct {
		UpdateID int64    `json:"update_id"`
		Message  *Message `json:"message,omitempty"`
	}

	Message struct {
		MessageID  int64       `json:"message_id"`
		From       *User       `json:"from,omitempty"`
		Chat       Chat        `json:"chat"`
		Text       string      `json:"text,omitempty"`
		WebAppData *WebAppData `json:"web_app_data,omitempty"`
	}

	User struct {
		ID       int64  `json:"id"`
		Username string `json:"username,omitempty"`
	}

	Chat struct {
		ID int64 `json:"id"`
	}

	WebAppData struct {
		Data string `json:"data"`
	}

	InlineKeyboardButton struct {
		Text   string      `json:"text"`
		WebApp *WebAppInfo `json:"web_app,omitempty"`
	}

	WebAppInfo struct {
		URL string `json:"url"`
	}

	InlineKeyboardMarkup struct {
		InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
	}

	// BotAPI is the subset of the Telegram Bot API the worker uses.
	BotAPI interface {
		GetUpdates(ctx context.Context, token string, offset int64, timeoutSec int) ([]Update, error)
		SendMessage(ctx context.Context, token string, chatID int64, text string, markup *InlineKeyboardMarkup) error
	}

	botClient struct {
		endpoint string
		client   *http.Client
	}

	// contextClient binds a request context to the calls tgbotapi makes.
	contextClient struct {
		ctx    context.Context
		client *http.Client
	}
)

func NewBotClient(baseURL string) BotAPI {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &botClient{
		endpoint: baseURL + "/bot%s/%s",
		client:   &http.Client{},
	}
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// bot builds a tgbotapi client for one call. The struct is built directly so
// no getMe round trip happens on every token.
func (c *botClient) bot(ctx context.Context, token string) *tgbotapi.BotAPI {
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Buffer: 100,
		Client: contextClient{ctx: ctx, client: c.client},
	}
	bot.SetAPIEndpoint(c.endpoint)
	return bot
}

func (c *botClient) GetUpdates(ctx context.Context, token string, offset int64, timeoutSec int) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second+pollSlack)
	defer cancel()

	params := tgbotapi.Params{}
	params.AddNonZero64("offset", offset)
	params.AddNonZero("timeout", timeoutSec)

	resp, err := c.bot(ctx, token).MakeRequest("getUpdates", params)
	if err != nil {
		return nil, upstreamError("getUpdates", err)
	}

	var updates []Update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, &domain.UpstreamError{StatusCode: http.StatusOK, Body: string(resp.Result), Err: err}
	}
	return updates, nil
}

func (c *botClient) SendMessage(ctx context.Context, token string, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := c.bot(ctx, token).Request(msg); err != nil {
		return upstreamError("sendMessage", err)
	}
	return nil
}

// upstreamError maps a tgbotapi failure. Transport errors carry the request
// URL, which embeds the bot token, so only the cause is kept.
func upstreamError(method string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &domain.UpstreamError{StatusCode: http.StatusBadGateway, Err: fmt.Errorf("%s: %w", method, err)}
}
