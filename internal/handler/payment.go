package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crowdforge/crowdforge-backend/internal/auth"
	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/logging"
	"github.com/crowdforge/crowdforge-backend/internal/service/funding"
)

type fundingService interface {
	ApplyDonation(ctx context.Context, req funding.ApplyDonationRequest) (*funding.DonationResult, error)
	RequestWithdrawal(ctx context.Context, req funding.WithdrawalRequest) (*domain.Withdrawal, error)
	GetLedgerStatement(ctx context.Context, userID uuid.UUID) (*funding.LedgerStatement, error)
}

type campaignReader interface {
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error)
}

type PaymentHandler struct {
	funding       fundingService
	campaigns     campaignReader
	gatewaySecret string
	callbackURL   string
}

func NewPaymentHandler(funding fundingService, campaigns campaignReader, gatewaySecret, callbackURL string) *PaymentHandler {
	return &PaymentHandler{
		funding:       funding,
		campaigns:     campaigns,
		gatewaySecret: gatewaySecret,
		callbackURL:   callbackURL,
	}
}

var minorUnitsPerCurrency = decimal.NewFromInt(100)

// parseWireAmount converts the gateway's decimal string into minor units.
func parseWireAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	minor := d.Mul(minorUnitsPerCurrency)
	if !minor.IsInteger() || !minor.IsPositive() {
		return 0, domain.ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

type initiatePaymentRequest struct {
	CampaignID string `json:"campaign_id"`
	Amount     string `json:"amount"`
}

func (r initiatePaymentRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CampaignID == "" {
		errs = append(errs, FieldError{Field: "campaign_id", Message: "required"})
	} else if _, err := uuid.Parse(r.CampaignID); err != nil {
		errs = append(errs, FieldError{Field: "campaign_id", Message: "must be a valid UUID"})
	}
	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if _, err := parseWireAmount(r.Amount); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a positive decimal amount"})
	}
	return errs
}

type checkoutOrder struct {
	TransactionID string `json:"transaction_id"`
	CampaignID    string `json:"campaign_id"`
	Amount        string `json:"amount"`
	DonorEmail    string `json:"donor_email"`
	DonorName     string `json:"donor_name"`
	CallbackURL   string `json:"callback_url"`
	Signature     string `json:"signature"`
}

// InitiatePayment builds a signed checkout order for the client to hand to
// the gateway. No ledger state changes here; funds move only when the
// gateway's completion callback arrives.
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	campaignID := uuid.MustParse(req.CampaignID)
	campaign, err := h.campaigns.GetCampaign(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	if campaign.Verification != domain.VerificationApproved {
		RespondAppError(w, ErrCampaignNotFound, nil)
		return
	}

	order := checkoutOrder{
		TransactionID: uuid.New().String(),
		CampaignID:    campaign.ID.String(),
		Amount:        req.Amount,
		DonorEmail:    claims.Email,
		CallbackURL:   h.callbackURL,
	}
	order.Signature = signCheckoutOrder(order, h.gatewaySecret)

	RespondSuccess(w, http.StatusCreated, order)
}

func signCheckoutOrder(o checkoutOrder, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(o.TransactionID))
	mac.Write([]byte(o.CampaignID))
	mac.Write([]byte(o.Amount))
	mac.Write([]byte(o.DonorEmail))
	return hex.EncodeToString(mac.Sum(nil))
}

type gatewayCallbackPayload struct {
	TransactionID string `json:"transaction_id"`
	CampaignID    string `json:"campaign_id"`
	Amount        string `json:"amount"`
	DonorEmail    string `json:"donor_email"`
	DonorName     string `json:"donor_name"`
	Status        string `json:"status"`
}

func (p gatewayCallbackPayload) validate() []FieldError {
	var errs []FieldError
	if p.TransactionID == "" {
		errs = append(errs, FieldError{Field: "transaction_id", Message: "required"})
	}
	if p.CampaignID == "" {
		errs = append(errs, FieldError{Field: "campaign_id", Message: "required"})
	} else if _, err := uuid.Parse(p.CampaignID); err != nil {
		errs = append(errs, FieldError{Field: "campaign_id", Message: "must be a valid UUID"})
	}
	if p.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	}
	if p.DonorEmail == "" {
		errs = append(errs, FieldError{Field: "donor_email", Message: "required"})
	}
	if p.Status != "completed" && p.Status != "failed" {
		errs = append(errs, FieldError{Field: "status", Message: "must be completed or failed"})
	}
	return errs
}

// GatewayCallback receives the gateway's payment completion webhook. The
// gateway retries deliveries, so a duplicate transaction id returns the same
// success response as the first delivery.
func (h *PaymentHandler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read callback body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	sig := r.Header.Get("X-Gateway-Signature")
	if !verifyHMAC(body, sig, h.gatewaySecret) {
		log.Warn("callback signature verification failed")
		RespondAppError(w, ErrInvalidSignature, nil)
		return
	}

	var payload gatewayCallbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("failed to parse callback payload", "error", err)
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := payload.validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if payload.Status != "completed" {
		log.Info("ignoring non-completed payment callback",
			"transaction_id", payload.TransactionID,
			"status", payload.Status,
		)
		RespondSuccess(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	amount, err := parseWireAmount(payload.Amount)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "amount", Message: "must be a positive decimal amount"}})
		return
	}

	result, err := h.funding.ApplyDonation(r.Context(), funding.ApplyDonationRequest{
		TransactionID: payload.TransactionID,
		Amount:        amount,
		CampaignID:    uuid.MustParse(payload.CampaignID),
		DonorEmail:    payload.DonorEmail,
		DonorName:     payload.DonorName,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	status := "applied"
	if result.AlreadyProcessed {
		status = "already_processed"
	}
	RespondSuccess(w, http.StatusOK, map[string]string{
		"status":         status,
		"transaction_id": result.Donation.TransactionID,
	})
}

func verifyHMAC(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type withdrawRequest struct {
	CampaignID        string `json:"campaign_id"`
	Amount            int64  `json:"amount"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
}

func (r withdrawRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CampaignID == "" {
		errs = append(errs, FieldError{Field: "campaign_id", Message: "required"})
	} else if _, err := uuid.Parse(r.CampaignID); err != nil {
		errs = append(errs, FieldError{Field: "campaign_id", Message: "must be a valid UUID"})
	}
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.AccountHolderName == "" {
		errs = append(errs, FieldError{Field: "account_holder_name", Message: "required"})
	}
	if r.AccountNumber == "" {
		errs = append(errs, FieldError{Field: "account_number", Message: "required"})
	}
	if r.IFSCCode == "" {
		errs = append(errs, FieldError{Field: "ifsc_code", Message: "required"})
	}
	return errs
}

type withdrawalDTO struct {
	ID            uuid.UUID `json:"id"`
	TransactionID string    `json:"transaction_id"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	Amount        int64     `json:"amount"`
	BankName      string    `json:"bank_name"`
	CreatedAt     time.Time `json:"created_at"`
}

func toWithdrawalDTO(wd *domain.Withdrawal) withdrawalDTO {
	return withdrawalDTO{
		ID:            wd.ID,
		TransactionID: wd.TransactionID,
		CampaignID:    wd.CampaignID,
		Amount:        wd.Amount,
		BankName:      wd.BankName,
		CreatedAt:     wd.CreatedAt,
	}
}

func (h *PaymentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	withdrawal, err := h.funding.RequestWithdrawal(r.Context(), funding.WithdrawalRequest{
		UserID:            userID,
		CampaignID:        uuid.MustParse(req.CampaignID),
		Amount:            req.Amount,
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toWithdrawalDTO(withdrawal))
}

type donationDTO struct {
	ID            uuid.UUID `json:"id"`
	TransactionID string    `json:"transaction_id"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	DonorName     string    `json:"donor_name"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

func toDonationDTOs(donations []domain.Donation) []donationDTO {
	out := make([]donationDTO, 0, len(donations))
	for _, d := range donations {
		out = append(out, donationDTO{
			ID:            d.ID,
			TransactionID: d.TransactionID,
			CampaignID:    d.CampaignID,
			DonorName:     d.DonorName,
			Amount:        d.Amount,
			CreatedAt:     d.CreatedAt,
		})
	}
	return out
}

type ledgerStatementDTO struct {
	UserID          uuid.UUID       `json:"user_id"`
	AvailableFunds  int64           `json:"available_funds"`
	Donations       []donationDTO   `json:"donations"`
	CreditsReceived []donationDTO   `json:"credits_received"`
	Withdrawals     []withdrawalDTO `json:"withdrawals"`
}

func (h *PaymentHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	statement, err := h.funding.GetLedgerStatement(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	withdrawals := make([]withdrawalDTO, 0, len(statement.Withdrawals))
	for i := range statement.Withdrawals {
		withdrawals = append(withdrawals, toWithdrawalDTO(&statement.Withdrawals[i]))
	}

	RespondSuccess(w, http.StatusOK, ledgerStatementDTO{
		UserID:          statement.UserID,
		AvailableFunds:  statement.AvailableFunds,
		Donations:       toDonationDTOs(statement.Donations),
		CreditsReceived: toDonationDTOs(statement.CreditsReceived),
		Withdrawals:     withdrawals,
	})
}
