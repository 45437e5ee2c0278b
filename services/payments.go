package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// PixCharge is the provider-side view of one PIX charge.
type PixCharge struct {
	TxID      string `json:"txid"`
	Status    string `json:"status"`
	QRCode    string `json:"qr_code"`
	CopyPaste string `json:"copy_paste"`
}

// CreateChargeRequest describes a new PIX charge.
type CreateChargeRequest struct {
	AmountCents int    `json:"amount_cents"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
}

// PaymentGateway is the single opaque PIX capability: create a charge, check
// its status. Exactly one provider implementation sits behind it.
type PaymentGateway interface {
	CreatePixCharge(ctx context.Context, req CreateChargeRequest) (*PixCharge, error)
	GetCharge(ctx context.Context, txid string) (*PixCharge, error)
}

// PixClient is an HTTP client for a PIX payment-service provider.
type PixClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPixClient(baseURL, apiKey string) *PixClient {
	return &PixClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type pixChargePayload struct {
	TxID            string `json:"txid"`
	Status          string `json:"status"`
	QRCodeImage     string `json:"qr_code_image"`
	BRCode          string `json:"br_code"`
	AmountCents     int    `json:"amount_cents"`
	ExpiresInSecond int    `json:"expires_in"`
}

// CreatePixCharge registers a new charge and returns the payable QR code.
func (p *PixClient) CreatePixCharge(ctx context.Context, req CreateChargeRequest) (*PixCharge, error) {
	body, err := json.Marshal(map[string]any{
		"amount":      req.AmountCents,
		"reference":   req.Reference,
		"description": req.Description,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/pix/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("pix charge creation failed: %s", resp.Status)
	}

	var payload pixChargePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return chargeFromPayload(payload), nil
}

// GetCharge polls the provider for the charge status.
func (p *PixClient) GetCharge(ctx context.Context, txid string) (*PixCharge, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/pix/charges/"+txid, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pix charge lookup failed: %s", resp.Status)
	}

	var payload pixChargePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return chargeFromPayload(payload), nil
}

func chargeFromPayload(payload pixChargePayload) *PixCharge {
	return &PixCharge{
		TxID:      payload.TxID,
		Status:    normalizePixStatus(payload.Status),
		QRCode:    payload.QRCodeImage,
		CopyPaste: payload.BRCode,
	}
}

// normalizePixStatus maps provider status strings onto the app's payment
// statuses.
func normalizePixStatus(s string) string {
	switch strings.ToLower(s) {
	case "paid", "concluded", "completed", "approved":
		return "paid"
	case "expired", "canceled", "cancelled":
		return "expired"
	case "failed", "refused":
		return "failed"
	default:
		return "pending"
	}
}
