package fns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/metrics"
	"pricecrowd-backend/internal/utils"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://proverkacheka.com/api/v1/check/get"
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
)

type (
	Config struct {
		BaseURL string
		Token   string
		PromoID string
	}

	// Archiver keeps a copy of verified receipts. *storage.AwsS3 implements it.
	Archiver interface {
		Put(ctx context.Context, key, contentType string, body []byte) error
	}

	FNSService interface {
		Check(ctx context.Context, req domain.VerifyReceiptRequest) (*domain.VerifiedReceipt, error)
	}

	fnsService struct {
		cfg      Config
		client   *http.Client
		archiver Archiver
		logger   logging.Logger
	}
)

func LoadConfig() Config {
	return Config{
		BaseURL: utils.GetConfig("FNS_BASE_URL"),
		Token:   utils.GetConfig("FNS_TOKEN"),
		PromoID: utils.GetConfig("FNS_PROMO_ID"),
	}
}

// NewFNSService accepts a nil archiver.
func NewFNSService(cfg Config, archiver Archiver, logger logging.Logger) FNSService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &fnsService{
		cfg:      cfg,
		client:   &http.Client{Timeout: requestTimeout},
		archiver: archiver,
		logger:   logger,
	}
}

// ReceiptParams merges the fields encoded in a receipt QR with explicitly
// passed ones. QR-derived values win.
func ReceiptParams(req domain.VerifyReceiptRequest) map[string]string {
	params := make(map[string]string)
	if qr := strings.TrimPrefix(strings.TrimSpace(req.QR), "?"); qr != "" {
		for _, pair := range strings.Split(qr, "&") {
			k, v, ok := strings.Cut(pair, "=")
			if ok && k != "" && v != "" {
				params[k] = v
			}
		}
	}
	explicit := map[string]string{"t": req.T, "s": req.S, "fn": req.FN, "i": req.I, "fp": req.FP, "n": req.N}
	for k, v := range explicit {
		if _, exists := params[k]; !exists && v != "" {
			params[k] = v
		}
	}
	return params
}

func (s *fnsService) Check(ctx context.Context, req domain.VerifyReceiptRequest) (*domain.VerifiedReceipt, error) {
	params := ReceiptParams(req)
	for _, key := range []string{"t", "fn", "i", "fp"} {
		if params[key] == "" {
			return nil, domain.ErrMissingFields
		}
	}
	if s.cfg.Token == "" {
		return nil, domain.ErrVerificationNotConfigured
	}

	body, err := s.post(ctx, s.buildForm(strings.TrimSpace(req.QR), params))
	if err != nil {
		metrics.VerificationRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.VerificationRequests.WithLabelValues("ok").Inc()

	receipt := ParseReceipt(body, params["t"])
	s.archive(ctx, params, body)
	return receipt, nil
}

func (s *fnsService) buildForm(qr string, params map[string]string) url.Values {
	form := url.Values{}
	form.Set("token", s.cfg.Token)
	if s.cfg.PromoID != "" {
		form.Set("promo_id", s.cfg.PromoID)
	}
	if qr != "" {
		form.Set("qrraw", qr)
		return form
	}

	form.Set("fn", params["fn"])
	form.Set("fd", params["i"])
	form.Set("fp", params["fp"])
	form.Set("t", params["t"])
	if v := params["n"]; v != "" {
		form.Set("n", v)
	}
	if v := params["s"]; v != "" {
		form.Set("s", v)
	}
	form.Set("qr", "1")
	return form
}

func (s *fnsService) post(ctx context.Context, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.Internal("build verification request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: http.StatusBadGateway, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("invalid upstream json")}
	}
	return body, nil
}

func (s *fnsService) archive(ctx context.Context, params map[string]string, body []byte) {
	if s.archiver == nil {
		return
	}
	now := time.Now().UTC()
	key := fmt.Sprintf("receipts/%04d/%02d/%s-%s-%s.json",
		now.Year(), int(now.Month()), params["fn"], params["i"], params["fp"])
	if err := s.archiver.Put(ctx, key, "application/json", body); err != nil {
		s.logger.Warn(ctx, "verification archive failed", "key", key, "error", err.Error())
	}
}
