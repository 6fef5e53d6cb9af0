package telegram

import (
	"context"
	"fmt"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/metrics"
	"runtime/debug"
	"time"
)

const (
	DefaultIdleBackoff  = 5 * time.Second
	DefaultErrorBackoff = 3 * time.Second
	DefaultPollTimeout  = 20
)

// Worker long-polls the Bot API and feeds updates to the Dispatcher. There
// is one Worker per process.
type Worker struct {
	settings     SettingsRepository
	bot          BotAPI
	dispatcher   *Dispatcher
	state        *WorkerState
	logger       logging.Logger
	idleBackoff  time.Duration
	errorBackoff time.Duration
	pollTimeout  int
}

func NewWorker(settings SettingsRepository, bot BotAPI, dispatcher *Dispatcher, state *WorkerState, logger logging.Logger) *Worker {
	return &Worker{
		settings:     settings,
		bot:          bot,
		dispatcher:   dispatcher,
		state:        state,
		logger:       logger.With("component", "telegram_worker"),
		idleBackoff:  DefaultIdleBackoff,
		errorBackoff: DefaultErrorBackoff,
		pollTimeout:  DefaultPollTimeout,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.state.setRunning(true)
	defer w.state.setRunning(false)
	w.logger.Info(ctx, "telegram worker started")

	for {
		if ctx.Err() != nil {
			w.logger.Info(ctx, "telegram worker stopped")
			return
		}

		wait := w.iterate(ctx)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (w *Worker) iterate(ctx context.Context) (wait time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "telegram worker iteration panicked", "panic", r, "stack", string(debug.Stack()))
			w.state.PushLog("error", fmt.Sprintf("worker panic: %v", r))
			metrics.TelegramPolls.WithLabelValues("panic").Inc()
			wait = w.errorBackoff
		}
	}()
	wait, _ = w.PollOnce(ctx)
	return wait
}

func pollable(s *entities.TelegramSettings) (string, bool) {
	if s == nil || !s.Enabled || s.WebhookEnabled || s.Token == nil || *s.Token == "" {
		return "", false
	}
	return *s.Token, true
}

// PollOnce runs a single iteration and returns how long the caller should
// wait before the next one.
func (w *Worker) PollOnce(ctx context.Context) (time.Duration, error) {
	settings, err := w.settings.Get(ctx)
	if err != nil {
		w.logger.Error(ctx, "load telegram settings failed", "error", err)
		settings = nil
	}

	token, ok := pollable(settings)
	if !ok {
		metrics.TelegramPolls.WithLabelValues("idle").Inc()
		return w.idleBackoff, nil
	}

	if w.state.ObserveToken(token) {
		w.logger.Info(ctx, "telegram token changed, offset reset")
		w.state.PushLog("info", "token changed, offset reset")
	}

	offset := w.state.Offset()
	updates, err := w.bot.GetUpdates(ctx, token, offset, w.pollTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		metrics.TelegramPolls.WithLabelValues("error").Inc()
		w.logger.Warn(ctx, "getUpdates failed", "error", err)
		w.state.PushLog("warn", fmt.Sprintf("getUpdates error: %v", err))
		return w.errorBackoff, err
	}

	if len(updates) > 0 {
		w.state.PushLog("info", fmt.Sprintf("received %d updates", len(updates)))
	}

	next := offset
	for _, update := range updates {
		metrics.TelegramUpdates.Inc()
		if err := w.handle(ctx, token, update); err != nil {
			metrics.TelegramHandlerErrors.Inc()
		}
		if update.UpdateID >= next {
			next = update.UpdateID + 1
		}
	}
	w.state.Advance(next)

	w.state.MarkPoll()
	metrics.TelegramLastPoll.SetToCurrentTime()
	metrics.TelegramPolls.WithLabelValues("ok").Inc()
	return 0, nil
}

// handle keeps a panicking update from stalling the cursor.
func (w *Worker) handle(ctx context.Context, token string, update Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "update handler panicked", "update_id", update.UpdateID, "panic", r)
			w.state.PushLog("error", fmt.Sprintf("handler panic on update %d: %v", update.UpdateID, r))
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return w.dispatcher.Handle(ctx, token, update)
}
