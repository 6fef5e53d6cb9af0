package domain

import (
	"encoding/json"
	"time"
)

var (
	MessageFailedVerifyReceipt = "failed to verify receipt"

	ErrMissingFields             = NewError(ErrValidation, "missing_fields", "required receipt fields t, fn, i, fp are missing")
	ErrVerificationNotConfigured = NewError(ErrInternal, "verification_not_configured", "receipt verification token is not configured")
)

type (
	VerifyReceiptRequest struct {
		QR string `query:"qr"`
		T  string `query:"t"`
		S  string `query:"s"`
		FN string `query:"fn"`
		I  string `query:"i"`
		FP string `query:"fp"`
		N  string `query:"n"`
	}

	VerifiedItem struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity float64 `json:"quantity"`
		Sum      float64 `json:"sum"`
	}

	VerifiedReceipt struct {
		Raw    json.RawMessage `json:"-"`
		Seller string          `json:"seller"`
		Amount float64         `json:"amount"`
		Date   time.Time       `json:"date"`
		Items  []VerifiedItem  `json:"items"`
	}
)
