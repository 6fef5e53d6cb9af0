package receipt

import (
	"context"
	"errors"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/metrics"
	"pricecrowd-backend/internal/utils/mailing"
	"strings"
	"time"
)

const minQRLength = 16

type (
	ReceiptService interface {
		Submit(ctx context.Context, req domain.SubmitReceiptRequest) (string, error)
		List(ctx context.Context, limit int) ([]domain.ReceiptResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		notifier          mailing.ReceiptNotifier
		logger            logging.Logger
		now               func() time.Time
	}
)

// NewReceiptService accepts a nil notifier.
func NewReceiptService(receiptRepository ReceiptRepository, notifier mailing.ReceiptNotifier, logger logging.Logger) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		notifier:          notifier,
		logger:            logger,
		now:               time.Now,
	}
}

// LooksLikeReceiptQR checks the shape of a fiscal receipt QR payload.
func LooksLikeReceiptQR(qr string) bool {
	qr = strings.TrimSpace(qr)
	return len(qr) >= minQRLength && strings.Contains(qr, "t=") && strings.Contains(qr, "fn=")
}

// Submit stores a receipt once per QR payload. Repeated payloads, including
// ones losing a concurrent insert race, report duplicate rather than an error.
func (s *receiptService) Submit(ctx context.Context, req domain.SubmitReceiptRequest) (string, error) {
	qr := strings.TrimSpace(req.QR)
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = domain.DefaultReceiptSource
	}

	status, err := s.submit(ctx, qr, req.User, source)
	if err == nil {
		metrics.ReceiptSubmissions.WithLabelValues(source, status).Inc()
	}
	return status, err
}

func (s *receiptService) submit(ctx context.Context, qr, user, source string) (string, error) {
	if !LooksLikeReceiptQR(qr) {
		return domain.ReceiptStatusInvalidQR, nil
	}
	user = strings.TrimSpace(user)
	if user == "" {
		user = domain.DefaultReceiptUser
	}
	if r := []rune(user); len(r) > domain.MaxReceiptUser {
		user = string(r[:domain.MaxReceiptUser])
	}

	existing, err := s.receiptRepository.FindByQR(ctx, qr)
	if err != nil {
		return "", domain.Internal("find receipt", err)
	}
	if existing != nil {
		return domain.ReceiptStatusDuplicate, nil
	}

	receipt := &entities.Receipt{
		QR:          qr,
		ReceivedAt:  s.now().UTC(),
		Source:      source,
		SubmittedBy: user,
	}
	if err := s.receiptRepository.Create(ctx, receipt); err != nil {
		if errors.Is(err, ErrDuplicateReceipt) {
			return domain.ReceiptStatusDuplicate, nil
		}
		return "", domain.Internal("insert receipt", err)
	}

	s.logger.Info(ctx, "receipt uploaded", "receipt_id", receipt.ID.String(), "source", source, "user", user)
	s.notify(receipt)
	return domain.ReceiptStatusOK, nil
}

func (s *receiptService) notify(receipt *entities.Receipt) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.ReceiptAccepted(ctx, receipt); err != nil {
			s.logger.Warn(ctx, "receipt notification failed", "receipt_id", receipt.ID.String(), "error", err.Error())
		}
	}()
}

func (s *receiptService) List(ctx context.Context, limit int) ([]domain.ReceiptResponse, error) {
	if limit <= 0 || limit > domain.ReceiptListLimit {
		limit = domain.ReceiptListLimit
	}
	receipts, err := s.receiptRepository.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.Internal("list receipts", err)
	}

	res := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		res = append(res, domain.ReceiptResponse{
			ID:          r.ID.String(),
			QR:          r.QR,
			ReceivedAt:  r.ReceivedAt,
			Source:      r.Source,
			SubmittedBy: r.SubmittedBy,
		})
	}
	return res, nil
}
