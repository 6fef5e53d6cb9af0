package domain

import (
	"time"
)

const (
	ReceiptStatusOK        = "ok"
	ReceiptStatusDuplicate = "duplicate"
	ReceiptStatusInvalidQR = "invalid_qr"

	DefaultReceiptUser   = "anonymous"
	DefaultReceiptSource = "telegram_webapp"
	SourceTelegramBot    = "telegram_bot"

	ReceiptListLimit = 100
	MaxReceiptUser   = 64
)

var (
	MessageSuccessGetReceipts = "receipts retrieved successfully"
	MessageFailedUploadQR     = "failed to upload receipt"
	MessageFailedGetReceipts  = "failed to retrieve receipts"
)

type (
	SubmitReceiptRequest struct {
		QR     string `json:"qr"`
		User   string `json:"user"`
		Source string `json:"source" validate:"omitempty,max=32"`
	}

	SubmitReceiptResponse struct {
		Status string `json:"status"`
	}

	ReceiptResponse struct {
		ID          string    `json:"id"`
		QR          string    `json:"qr"`
		ReceivedAt  time.Time `json:"received_at"`
		Source      string    `json:"source"`
		SubmittedBy string    `json:"submitted_by"`
	}
)
