package model

import "github.com/shopspring/decimal"

type CreatePurchaseQRCodeRequest struct {
	PurchaseAmount decimal.Decimal `json:"purchase_amount"`
	TicketID       string          `json:"ticket_id"`
}

type CreatePurchaseQRCodeResponse struct {
	QRCode QRCode `json:"qr_code"`
}

// RedeemQRCodeRequest accepts either the code string or the id of the code.
type RedeemQRCodeRequest struct {
	Code string `json:"code"`
}

type RedeemQRCodeResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PointsAwarded int64  `json:"points_awarded,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	FactionID     string `json:"faction_id,omitempty"`
}

type GetMyQRCodesRequest struct{}

type GetMyQRCodesResponse struct {
	QRCodes []QRCode `json:"qr_codes"`
}

type GetQRCodeImageRequest struct {
	ID   string `form:"id"`
	Size int    `form:"size"`
}

type GetQRCodeImageResponse struct {
	ContentType string `json:"content_type"`
	Image       []byte `json:"image"`
}
