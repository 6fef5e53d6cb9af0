package telegram

import (
	"context"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"sync"
)

type sentMessage struct {
	token  string
	chatID int64
	text   string
	markup *InlineKeyboardMarkup
}

type pollCall struct {
	token  string
	offset int64
}

type fakeBot struct {
	mu      sync.Mutex
	batches [][]Update
	pollErr error
	sendErr error
	polls   []pollCall
	sent    []sentMessage
}

func (b *fakeBot) GetUpdates(_ context.Context, token string, offset int64, _ int) ([]Update, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polls = append(b.polls, pollCall{token: token, offset: offset})
	if b.pollErr != nil {
		return nil, b.pollErr
	}
	if len(b.batches) == 0 {
		return nil, nil
	}
	batch := b.batches[0]
	b.batches = b.batches[1:]
	return batch, nil
}

func (b *fakeBot) SendMessage(_ context.Context, token string, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{token: token, chatID: chatID, text: text, markup: markup})
	return b.sendErr
}

func (b *fakeBot) sentTexts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.sent))
	for _, m := range b.sent {
		out = append(out, m.text)
	}
	return out
}

func (b *fakeBot) pollCalls() []pollCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]pollCall(nil), b.polls...)
}

type fakeReceipts struct {
	mu       sync.Mutex
	requests []domain.SubmitReceiptRequest
	status   map[string]string
	errs     map[string]error
	panics   map[string]bool
}

func (r *fakeReceipts) Submit(_ context.Context, req domain.SubmitReceiptRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.panics[req.QR] {
		panic("boom")
	}
	if err := r.errs[req.QR]; err != nil {
		return "", err
	}
	if st, ok := r.status[req.QR]; ok {
		return st, nil
	}
	return domain.ReceiptStatusOK, nil
}

func (r *fakeReceipts) List(context.Context, int) ([]domain.ReceiptResponse, error) {
	return nil, nil
}

type consumeCall struct {
	code        string
	chatID      int64
	displayName *string
}

type fakeLinks struct {
	mu    sync.Mutex
	calls []consumeCall
	valid map[string]bool
	err   error
}

func (l *fakeLinks) Issue(context.Context, string) (domain.LinkStartResponse, error) {
	return domain.LinkStartResponse{}, nil
}

func (l *fakeLinks) Consume(_ context.Context, code string, chatID int64, displayName *string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, consumeCall{code: code, chatID: chatID, displayName: displayName})
	if l.err != nil {
		return false, l.err
	}
	return l.valid[code], nil
}

func (l *fakeLinks) Status(context.Context, string) (domain.LinkStatusResponse, error) {
	return domain.LinkStatusResponse{}, nil
}

func (l *fakeLinks) Unlink(context.Context, string) error { return nil }

type fakeSettings struct {
	mu       sync.Mutex
	settings *entities.TelegramSettings
	err      error
}

func (s *fakeSettings) Get(context.Context) (*entities.TelegramSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.settings == nil {
		return nil, nil
	}
	cp := *s.settings
	return &cp, nil
}

func (s *fakeSettings) Save(_ context.Context, settings *entities.TelegramSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *settings
	s.settings = &cp
	return nil
}

func (s *fakeSettings) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Token = &token
}

func enabledSettings(token string) *fakeSettings {
	return &fakeSettings{settings: &entities.TelegramSettings{Token: &token, Enabled: true}}
}

type harness struct {
	bot        *fakeBot
	receipts   *fakeReceipts
	links      *fakeLinks
	state      *WorkerState
	dispatcher *Dispatcher
}

func newHarness() *harness {
	h := &harness{
		bot:      &fakeBot{},
		receipts: &fakeReceipts{status: map[string]string{}, errs: map[string]error{}, panics: map[string]bool{}},
		links:    &fakeLinks{valid: map[string]bool{}},
		state:    NewWorkerState(),
	}
	h.dispatcher = NewDispatcher(h.receipts, h.links, h.bot, nil, "https://example.com/scan", h.state, logging.Nop())
	return h
}

func textUpdate(id int64, text string) Update {
	return Update{UpdateID: id, Message: &Message{
		MessageID: id,
		From:      &User{ID: 77, Username: "tg_alice"},
		Chat:      Chat{ID: 1001},
		Text:      text,
	}}
}

func webAppUpdate(id int64, data string) Update {
	return Update{UpdateID: id, Message: &Message{
		MessageID:  id,
		From:       &User{ID: 77, Username: "tg_alice"},
		Chat:       Chat{ID: 1001},
		WebAppData: &WebAppData{Data: data},
	}}
}
