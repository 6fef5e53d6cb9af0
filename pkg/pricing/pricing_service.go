package pricing

import (
	"context"
	"errors"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/metrics"
)

type (
	PricingService interface {
		Propagate(ctx context.Context, op *entities.Operation) (domain.PropagationResult, error)
		ListActivities(ctx context.Context, storeID string, limit int) ([]domain.ActivityResponse, error)
		ListPrices(ctx context.Context, storeID, productID string) ([]domain.PriceResponse, error)
	}

	pricingService struct {
		pricingRepository PricingRepository
		logger            logging.Logger
	}
)

func NewPricingService(pricingRepository PricingRepository, logger logging.Logger) PricingService {
	return &pricingService{
		pricingRepository: pricingRepository,
		logger:            logger,
	}
}

// Propagate writes the price of every resolvable item of op into the price
// index and appends one price_set activity per item, in item order. Items
// without a product are skipped. Running it again for the same operation
// leaves the index unchanged.
func (s *pricingService) Propagate(ctx context.Context, op *entities.Operation) (domain.PropagationResult, error) {
	var res domain.PropagationResult
	if op.StoreID == nil || *op.StoreID == "" {
		return res, domain.ErrMissingStore
	}
	storeID := *op.StoreID
	log := s.logger.With("operation_id", op.ID.String(), "store_id", storeID)

	storeName, err := s.pricingRepository.StoreName(ctx, storeID)
	if err != nil {
		return res, domain.Internal("load store name", err)
	}

	for i, item := range op.Items {
		productID, err := ResolveProductID(op, i)
		if errors.Is(err, domain.ErrProductUnresolved) {
			res.Skipped++
			metrics.PropagatedItems.WithLabelValues("skipped").Inc()
			log.Debug(ctx, "item has no product, skipped", "index", i, "name", item.Name)
			continue
		}

		if err := s.pricingRepository.UpsertPrice(ctx, storeID, productID, item.Price); err != nil {
			log.Error(ctx, "price upsert failed", "product_id", productID, "error", err.Error())
			return res, domain.Internal("upsert price", err)
		}

		productName, err := s.pricingRepository.ProductTitle(ctx, productID)
		if err != nil {
			return res, domain.Internal("load product title", err)
		}
		price := item.Price
		pid := productID
		activity := &entities.StoreActivity{
			StoreID:     storeID,
			ProductID:   &pid,
			Kind:        entities.ActivityPriceSet,
			Ts:          op.Date,
			Price:       &price,
			ProductName: productName,
			StoreName:   storeName,
		}
		if err := s.pricingRepository.AppendActivity(ctx, activity); err != nil {
			log.Error(ctx, "activity append failed", "product_id", productID, "error", err.Error())
			return res, domain.Internal("append activity", err)
		}

		res.Propagated++
		metrics.PropagatedItems.WithLabelValues("propagated").Inc()
	}

	log.Info(ctx, "operation propagated", "propagated", res.Propagated, "skipped", res.Skipped)
	return res, nil
}

func (s *pricingService) ListActivities(ctx context.Context, storeID string, limit int) ([]domain.ActivityResponse, error) {
	if limit <= 0 || limit > domain.ActivityListLimit {
		limit = domain.ActivityListLimit
	}
	activities, err := s.pricingRepository.ListActivities(ctx, storeID, limit)
	if err != nil {
		return nil, domain.Internal("list activities", err)
	}

	res := make([]domain.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		res = append(res, domain.ActivityResponse{
			ID:          a.ID.String(),
			StoreID:     a.StoreID,
			ProductID:   a.ProductID,
			Kind:        a.Kind,
			Ts:          a.Ts,
			Price:       a.Price,
			ProductName: a.ProductName,
			StoreName:   a.StoreName,
		})
	}
	return res, nil
}

func (s *pricingService) ListPrices(ctx context.Context, storeID, productID string) ([]domain.PriceResponse, error) {
	items, err := s.pricingRepository.ListPrices(ctx, storeID, productID)
	if err != nil {
		return nil, domain.Internal("list prices", err)
	}

	res := make([]domain.PriceResponse, 0, len(items))
	for _, it := range items {
		res = append(res, domain.PriceResponse{
			StoreID:   it.StoreID,
			ProductID: it.ProductID,
			Price:     it.Price,
			UpdatedAt: it.UpdatedAt,
		})
	}
	return res, nil
}
