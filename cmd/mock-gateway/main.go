package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/logging"
)

// Stand-in for the external payment gateway. Payouts succeed synchronously;
// checkouts fire the signed completion webhook back at the platform, the way
// the real gateway notifies after a donor pays.
func main() {
	logging.Init("mock-gateway", "info", os.Getenv("APP_ENV"))

	secret := os.Getenv("GATEWAY_SECRET")
	if secret == "" {
		slog.Error("GATEWAY_SECRET is required")
		os.Exit(1)
	}

	g := &gateway{secret: secret}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /payouts", g.handlePayout)
	mux.HandleFunc("POST /checkout", g.handleCheckout)

	addr := ":8081"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	slog.Info("mock gateway started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type gateway struct {
	secret string
}

type payoutRequest struct {
	WithdrawalID      string `json:"withdrawal_id"`
	Amount            int64  `json:"amount"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
}

func (g *gateway) handlePayout(w http.ResponseWriter, r *http.Request) {
	var req payoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed payout request"})
		return
	}
	if req.Amount <= 0 || req.AccountNumber == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid payout request"})
		return
	}

	txnID := fmt.Sprintf("payout_%s", uuid.New().String())
	slog.Info("payout accepted",
		"withdrawal_id", req.WithdrawalID,
		"amount", req.Amount,
		"transaction_id", txnID,
	)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"transaction_id": txnID,
		"bank_name":      "First Meridian Bank",
	})
}

type checkoutRequest struct {
	TransactionID string `json:"transaction_id"`
	CampaignID    string `json:"campaign_id"`
	Amount        string `json:"amount"`
	DonorEmail    string `json:"donor_email"`
	DonorName     string `json:"donor_name"`
	CallbackURL   string `json:"callback_url"`
	Signature     string `json:"signature"`
}

type completionWebhook struct {
	TransactionID string `json:"transaction_id"`
	CampaignID    string `json:"campaign_id"`
	Amount        string `json:"amount"`
	DonorEmail    string `json:"donor_email"`
	DonorName     string `json:"donor_name"`
	Status        string `json:"status"`
}

func (g *gateway) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed checkout request"})
		return
	}

	if !g.verifyOrderSignature(req) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid order signature"})
		return
	}
	if req.CallbackURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "callback_url is required"})
		return
	}

	go g.fireCompletionWebhook(req)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"transaction_id": req.TransactionID,
		"status":         "processing",
	})
}

func (g *gateway) verifyOrderSignature(req checkoutRequest) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(req.TransactionID))
	mac.Write([]byte(req.CampaignID))
	mac.Write([]byte(req.Amount))
	mac.Write([]byte(req.DonorEmail))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(req.Signature))
}

func (g *gateway) fireCompletionWebhook(req checkoutRequest) {
	payload, err := json.Marshal(completionWebhook{
		TransactionID: req.TransactionID,
		CampaignID:    req.CampaignID,
		Amount:        req.Amount,
		DonorEmail:    req.DonorEmail,
		DonorName:     req.DonorName,
		Status:        "completed",
	})
	if err != nil {
		slog.Error("failed to marshal webhook payload", "error", err)
		return
	}

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	client := &http.Client{Timeout: 10 * time.Second}

	// The real gateway retries; mirror that so a briefly unavailable
	// platform still gets the credit.
	for attempt := 1; attempt <= 3; attempt++ {
		httpReq, err := http.NewRequest(http.MethodPost, req.CallbackURL, bytes.NewReader(payload))
		if err != nil {
			slog.Error("failed to build webhook request", "error", err)
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Gateway-Signature", signature)

		resp, err := client.Do(httpReq)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 500 {
				slog.Info("completion webhook delivered",
					"transaction_id", req.TransactionID,
					"status", resp.StatusCode,
					"attempt", attempt,
				)
				return
			}
			slog.Warn("webhook delivery got server error", "status", resp.StatusCode, "attempt", attempt)
		} else {
			slog.Warn("webhook delivery failed", "error", err, "attempt", attempt)
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	slog.Error("giving up on webhook delivery", "transaction_id", req.TransactionID)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
