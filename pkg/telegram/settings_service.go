package telegram

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"strings"
)

type (
	SettingsService interface {
		Get(ctx context.Context) (domain.TelegramSettingsResponse, error)
		Update(ctx context.Context, req domain.TelegramSettingsRequest) (domain.TelegramSettingsResponse, error)
		Status(ctx context.Context) (domain.BotStatusResponse, error)
	}

	settingsService struct {
		settingsRepository SettingsRepository
		state              *WorkerState
	}
)

func NewSettingsService(settingsRepository SettingsRepository, state *WorkerState) SettingsService {
	return &settingsService{
		settingsRepository: settingsRepository,
		state:              state,
	}
}

func toSettingsResponse(s *entities.TelegramSettings) domain.TelegramSettingsResponse {
	if s == nil {
		return domain.TelegramSettingsResponse{}
	}
	return domain.TelegramSettingsResponse{
		Token:          s.Token,
		ChatID:         s.ChatID,
		WebhookURL:     s.WebhookURL,
		Enabled:        s.Enabled,
		WebhookEnabled: s.WebhookEnabled,
		WebhookSecret:  s.WebhookSecret,
	}
}

func newWebhookSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *settingsService) Get(ctx context.Context) (domain.TelegramSettingsResponse, error) {
	settings, err := s.settingsRepository.Get(ctx)
	if err != nil {
		return domain.TelegramSettingsResponse{}, domain.Internal("get telegram settings", err)
	}
	return toSettingsResponse(settings), nil
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Update applies the fields present in req. An empty string clears a field.
// Webhook mode always carries a secret; one is generated when none is set.
func (s *settingsService) Update(ctx context.Context, req domain.TelegramSettingsRequest) (domain.TelegramSettingsResponse, error) {
	settings, err := s.settingsRepository.Get(ctx)
	if err != nil {
		return domain.TelegramSettingsResponse{}, domain.Internal("get telegram settings", err)
	}
	if settings == nil {
		settings = &entities.TelegramSettings{}
	}

	if req.Token != nil {
		settings.Token = blankToNil(req.Token)
	}
	if req.ChatID != nil {
		settings.ChatID = blankToNil(req.ChatID)
	}
	if req.WebhookURL != nil {
		settings.WebhookURL = blankToNil(req.WebhookURL)
	}
	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.WebhookEnabled != nil {
		settings.WebhookEnabled = *req.WebhookEnabled
	}
	if req.WebhookSecret != nil {
		settings.WebhookSecret = blankToNil(req.WebhookSecret)
	}
	if settings.WebhookEnabled && settings.WebhookSecret == nil {
		secret, err := newWebhookSecret()
		if err != nil {
			return domain.TelegramSettingsResponse{}, domain.Internal("generate webhook secret", err)
		}
		settings.WebhookSecret = &secret
	}

	if err := s.settingsRepository.Save(ctx, settings); err != nil {
		return domain.TelegramSettingsResponse{}, domain.Internal("save telegram settings", err)
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) Status(ctx context.Context) (domain.BotStatusResponse, error) {
	settings, err := s.settingsRepository.Get(ctx)
	if err != nil {
		return domain.BotStatusResponse{}, domain.Internal("get telegram settings", err)
	}

	res := domain.BotStatusResponse{
		LastPollMs: s.state.LastPollMs(),
		Logs:       s.state.Logs(),
	}
	if settings != nil {
		res.Enabled = settings.Enabled
		res.WebhookEnabled = settings.WebhookEnabled
		_, ok := pollable(settings)
		res.Polling = ok && s.state.Running()
	}
	return res, nil
}
