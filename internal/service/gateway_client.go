package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crowdforge/crowdforge-backend/internal/logging"
	"github.com/crowdforge/crowdforge-backend/internal/service/funding"
)

// GatewayClient talks to the external payment gateway's payout API.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type payoutPayload struct {
	WithdrawalID      string `json:"withdrawal_id"`
	Amount            int64  `json:"amount"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
}

type payoutResponse struct {
	TransactionID string `json:"transaction_id"`
	BankName      string `json:"bank_name"`
}

func (c *GatewayClient) SubmitPayout(ctx context.Context, req funding.PayoutRequest) (*funding.PayoutReceipt, error) {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(payoutPayload{
		WithdrawalID:      req.WithdrawalID.String(),
		Amount:            req.Amount,
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
	})
	if err != nil {
		return nil, fmt.Errorf("SubmitPayout: marshal: %w", err)
	}

	url := c.baseURL + "/payouts"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("SubmitPayout: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	log.Info("payout request sent", "gateway", "payout", "withdrawal_id", req.WithdrawalID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("SubmitPayout: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("payout response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("SubmitPayout: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed payoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("SubmitPayout: decode response: %w", err)
	}
	if parsed.TransactionID == "" {
		return nil, fmt.Errorf("SubmitPayout: gateway returned empty transaction id")
	}

	return &funding.PayoutReceipt{
		TransactionID: parsed.TransactionID,
		BankName:      parsed.BankName,
	}, nil
}
