package domain

import (
	"encoding/json"
	"time"
)

const OperationListLimit = 200

var (
	MessageSuccessCreateOperation = "operation created successfully"
	MessageSuccessGetOperations   = "operations retrieved successfully"
	MessageFailedCreateOperation  = "failed to create operation"
	MessageFailedUpdateOperation  = "failed to update operation"
	MessageFailedUpdateStatus     = "failed to update operation status"
	MessageFailedGetOperations    = "failed to retrieve operations"

	ErrQrUsed              = NewError(ErrConflict, "qr_used", "qr already used by another operation")
	ErrUserHasOperation    = NewError(ErrConflict, "user_has_operation", "user already has an open draft operation")
	ErrOperationNotMutable = NewError(ErrConflict, "operation_not_mutable", "operation can only be edited while in draft")
	ErrOperationDeleted    = NewError(ErrConflict, "operation_deleted", "operation is deleted")
	ErrInvalidTransition   = NewError(ErrConflict, "invalid_transition", "status transition is not allowed")
	ErrOperationNotFound   = NewError(ErrNotFound, "not_found", "operation not found")
	ErrMissingStore        = NewError(ErrValidation, "missing_store", "operation has no store assigned")
	ErrInvalidStatus       = NewError(ErrValidation, "invalid_status", "unknown operation status")
	ErrEmptyPatch          = NewError(ErrValidation, "empty_patch", "nothing to update")
	ErrInvalidDate         = NewError(ErrValidation, "invalid_date", "operation date cannot be parsed")
)

type (
	OperationItemRequest struct {
		Name      string  `json:"name" validate:"required"`
		Price     float64 `json:"price" validate:"gte=0"`
		Quantity  float64 `json:"quantity" validate:"gte=0"`
		ProductID *string `json:"product_id"`
	}

	CreateOperationRequest struct {
		Date       string                 `json:"date" validate:"required"`
		Seller     string                 `json:"seller"`
		Amount     float64                `json:"amount" validate:"gte=0"`
		Items      []OperationItemRequest `json:"items" validate:"dive"`
		QR         *string                `json:"qr"`
		UploadedBy *string                `json:"uploaded_by"`
		Raw        json.RawMessage        `json:"raw"`
	}

	CreateOperationResponse struct {
		ID string `json:"id"`
	}

	// UpdateOperationRequest is a patch: nil fields are left untouched.
	UpdateOperationRequest struct {
		StoreID *string                 `json:"store_id"`
		Items   *[]OperationItemRequest `json:"items" validate:"omitempty,dive"`
	}

	UpdateStatusRequest struct {
		Status string `json:"status"`
	}

	OperationResponse struct {
		ID         string                 `json:"id"`
		Date       time.Time              `json:"date"`
		Seller     string                 `json:"seller"`
		Amount     float64                `json:"amount"`
		Status     string                 `json:"status"`
		StoreID    *string                `json:"store_id,omitempty"`
		QR         *string                `json:"qr,omitempty"`
		UploadedBy *string                `json:"uploaded_by,omitempty"`
		Items      []OperationItemRequest `json:"items"`
	}
)
