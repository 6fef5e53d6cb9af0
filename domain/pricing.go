package domain

import (
	"errors"
	"time"
)

const ActivityListLimit = 50

var (
	MessageSuccessGetActivities = "activities retrieved successfully"
	MessageSuccessGetPrices     = "prices retrieved successfully"
	MessageFailedGetActivities  = "failed to retrieve activities"
	MessageFailedGetPrices      = "failed to retrieve prices"

	// ErrProductUnresolved means neither the item nor the raw payload names a catalog product.
	ErrProductUnresolved = errors.New("product id unresolved")
)

type (
	PriceResponse struct {
		StoreID   string    `json:"store_id"`
		ProductID string    `json:"product_id"`
		Price     float64   `json:"price"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	ActivityResponse struct {
		ID          string    `json:"id"`
		StoreID     string    `json:"store_id"`
		ProductID   *string   `json:"product_id,omitempty"`
		Kind        string    `json:"kind"`
		Ts          time.Time `json:"ts"`
		Price       *float64  `json:"price,omitempty"`
		ProductName *string   `json:"product_name,omitempty"`
		StoreName   *string   `json:"store_name,omitempty"`
	}

	PropagationResult struct {
		Propagated int
		Skipped    int
	}
)
