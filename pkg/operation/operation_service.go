package operation

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/metrics"
	"pricecrowd-backend/pkg/pricing"
	"strings"
	"time"
)

var operationDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type (
	OperationService interface {
		Create(ctx context.Context, req domain.CreateOperationRequest) (string, error)
		Update(ctx context.Context, id string, req domain.UpdateOperationRequest) error
		Transition(ctx context.Context, id string, status string) error
		Get(ctx context.Context, id string) (*domain.OperationResponse, error)
		List(ctx context.Context, limit int) ([]domain.OperationResponse, error)
	}

	operationService struct {
		operationRepository OperationRepository
		pricingService      pricing.PricingService
		logger              logging.Logger
	}
)

func NewOperationService(
	operationRepository OperationRepository,
	pricingService pricing.PricingService,
	logger logging.Logger,
) OperationService {
	return &operationService{
		operationRepository: operationRepository,
		pricingService:      pricingService,
		logger:              logger,
	}
}

func ParseOperationDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range operationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.ErrInvalidDate
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toItems(req []domain.OperationItemRequest) []*entities.OperationItem {
	items := make([]*entities.OperationItem, 0, len(req))
	for i, it := range req {
		items = append(items, &entities.OperationItem{
			Position:  i,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ProductID: trimmedOrNil(it.ProductID),
		})
	}
	return items
}

func (s *operationService) Create(ctx context.Context, req domain.CreateOperationRequest) (string, error) {
	date, err := ParseOperationDate(req.Date)
	if err != nil {
		return "", err
	}
	qr := trimmedOrNil(req.QR)
	uploadedBy := trimmedOrNil(req.UploadedBy)

	if err := s.checkConflicts(ctx, qr, uploadedBy); err != nil {
		return "", err
	}

	op := &entities.Operation{
		Date:       date,
		Seller:     req.Seller,
		Amount:     req.Amount,
		Status:     entities.OperationStatusDraft,
		QR:         qr,
		UploadedBy: uploadedBy,
		Items:      toItems(req.Items),
	}
	if len(req.Raw) > 0 && string(req.Raw) != "null" {
		op.RawPayload = []byte(req.Raw)
	}

	if err := s.operationRepository.Create(ctx, op); err != nil {
		if !errors.Is(err, ErrDuplicateOperation) {
			return "", domain.Internal("create operation", err)
		}
		// Lost a race against a concurrent insert; report which rule fired.
		if cerr := s.checkConflicts(ctx, qr, uploadedBy); cerr != nil {
			return "", cerr
		}
		return "", domain.Internal("create operation", err)
	}

	s.logger.Info(ctx, "operation created", "operation_id", op.ID.String(), "items", len(op.Items))
	return op.ID.String(), nil
}

func (s *operationService) checkConflicts(ctx context.Context, qr, uploadedBy *string) error {
	if qr != nil {
		used, err := s.operationRepository.QRUsed(ctx, *qr)
		if err != nil {
			return domain.Internal("check qr", err)
		}
		if used {
			return domain.ErrQrUsed
		}
	}
	if uploadedBy != nil {
		open, err := s.operationRepository.HasOpenDraft(ctx, *uploadedBy)
		if err != nil {
			return domain.Internal("check open draft", err)
		}
		if open {
			return domain.ErrUserHasOperation
		}
	}
	return nil
}

func (s *operationService) load(ctx context.Context, id string) (*entities.Operation, error) {
	opID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrOperationNotFound
	}
	op, err := s.operationRepository.FindByID(ctx, opID)
	if err != nil {
		return nil, domain.Internal("load operation", err)
	}
	if op == nil {
		return nil, domain.ErrOperationNotFound
	}
	return op, nil
}

func (s *operationService) Update(ctx context.Context, id string, req domain.UpdateOperationRequest) error {
	if req.StoreID == nil && req.Items == nil {
		return domain.ErrEmptyPatch
	}
	op, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if op.Status != entities.OperationStatusDraft {
		return domain.ErrOperationNotMutable
	}

	patch := DraftPatch{}
	if req.StoreID != nil {
		patch.SetStore = true
		patch.StoreID = trimmedOrNil(req.StoreID)
	}
	if req.Items != nil {
		patch.SetItems = true
		patch.Items = toItems(*req.Items)
	}

	if err := s.operationRepository.UpdateDraft(ctx, op.ID, patch); err != nil {
		if errors.Is(err, ErrNotDraft) {
			return domain.ErrOperationNotMutable
		}
		return domain.Internal("update operation", err)
	}
	return nil
}

// Transition applies the draft -> posted -> deleted state machine. Posting
// propagates prices before the status is persisted, so a failed post can be
// retried and re-propagates idempotently.
func (s *operationService) Transition(ctx context.Context, id string, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case entities.OperationStatusDraft, entities.OperationStatusPosted, entities.OperationStatusDeleted:
	default:
		return domain.ErrInvalidStatus
	}

	op, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if op.Status == entities.OperationStatusDeleted {
		return domain.ErrOperationDeleted
	}

	switch status {
	case entities.OperationStatusDraft:
		if op.Status != entities.OperationStatusDraft {
			return domain.ErrInvalidTransition
		}
		return nil
	case entities.OperationStatusPosted:
		return s.post(ctx, op)
	default:
		return s.delete(ctx, op)
	}
}

func (s *operationService) post(ctx context.Context, op *entities.Operation) error {
	if op.Status == entities.OperationStatusPosted {
		return nil
	}
	if op.StoreID == nil || *op.StoreID == "" {
		return domain.ErrMissingStore
	}

	if _, err := s.pricingService.Propagate(ctx, op); err != nil {
		s.logger.Error(ctx, "propagation failed", "operation_id", op.ID.String(), "error", err.Error())
		return err
	}

	changed, err := s.operationRepository.SetStatus(ctx, op.ID, []string{entities.OperationStatusDraft}, entities.OperationStatusPosted)
	if err != nil {
		return domain.Internal("set status", err)
	}
	if !changed {
		return s.resolveLostTransition(ctx, op.ID, entities.OperationStatusPosted)
	}

	metrics.OperationTransitions.WithLabelValues(entities.OperationStatusPosted).Inc()
	s.logger.Info(ctx, "operation posted", "operation_id", op.ID.String(), "store_id", *op.StoreID)
	return nil
}

func (s *operationService) delete(ctx context.Context, op *entities.Operation) error {
	changed, err := s.operationRepository.SetStatus(ctx, op.ID,
		[]string{entities.OperationStatusDraft, entities.OperationStatusPosted},
		entities.OperationStatusDeleted)
	if err != nil {
		return domain.Internal("set status", err)
	}
	if !changed {
		return s.resolveLostTransition(ctx, op.ID, entities.OperationStatusDeleted)
	}

	metrics.OperationTransitions.WithLabelValues(entities.OperationStatusDeleted).Inc()
	s.logger.Info(ctx, "operation deleted", "operation_id", op.ID.String())
	return nil
}

// resolveLostTransition handles a conditional update that matched no row
// because another request changed the status first.
func (s *operationService) resolveLostTransition(ctx context.Context, id uuid.UUID, target string) error {
	current, err := s.operationRepository.FindByID(ctx, id)
	if err != nil {
		return domain.Internal("reload operation", err)
	}
	switch {
	case current == nil:
		return domain.ErrOperationNotFound
	case current.Status == entities.OperationStatusDeleted:
		return domain.ErrOperationDeleted
	case current.Status == target:
		return nil
	}
	return domain.ErrInvalidTransition
}

func toResponse(op *entities.Operation) domain.OperationResponse {
	items := make([]domain.OperationItemRequest, 0, len(op.Items))
	for _, it := range op.Items {
		items = append(items, domain.OperationItemRequest{
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ProductID: it.ProductID,
		})
	}
	return domain.OperationResponse{
		ID:         op.ID.String(),
		Date:       op.Date.UTC(),
		Seller:     op.Seller,
		Amount:     op.Amount,
		Status:     op.Status,
		StoreID:    op.StoreID,
		QR:         op.QR,
		UploadedBy: op.UploadedBy,
		Items:      items,
	}
}

func (s *operationService) Get(ctx context.Context, id string) (*domain.OperationResponse, error) {
	op, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(op)
	return &res, nil
}

func (s *operationService) List(ctx context.Context, limit int) ([]domain.OperationResponse, error) {
	if limit <= 0 || limit > domain.OperationListLimit {
		limit = domain.OperationListLimit
	}
	ops, err := s.operationRepository.List(ctx, limit)
	if err != nil {
		return nil, domain.Internal("list operations", err)
	}

	res := make([]domain.OperationResponse, 0, len(ops))
	for _, op := range ops {
		res = append(res, toResponse(op))
	}
	return res, nil
}
