package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/service/funding"
)

const testGatewaySecret = "test-gateway-secret"

type mockFundingService struct {
	applied     *funding.ApplyDonationRequest
	applyResult *funding.DonationResult
	applyErr    error
}

func (m *mockFundingService) ApplyDonation(_ context.Context, req funding.ApplyDonationRequest) (*funding.DonationResult, error) {
	m.applied = &req
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	if m.applyResult != nil {
		return m.applyResult, nil
	}
	return &funding.DonationResult{
		Donation: &domain.Donation{
			ID:            uuid.New(),
			TransactionID: req.TransactionID,
			CampaignID:    req.CampaignID,
			Amount:        req.Amount,
			CreatedAt:     time.Now().UTC(),
		},
	}, nil
}

func (m *mockFundingService) RequestWithdrawal(_ context.Context, req funding.WithdrawalRequest) (*domain.Withdrawal, error) {
	return &domain.Withdrawal{
		ID:            uuid.New(),
		TransactionID: "payout_mock",
		UserID:        req.UserID,
		CampaignID:    req.CampaignID,
		Amount:        req.Amount,
	}, nil
}

func (m *mockFundingService) GetLedgerStatement(_ context.Context, userID uuid.UUID) (*funding.LedgerStatement, error) {
	return &funding.LedgerStatement{UserID: userID}, nil
}

type mockCampaignReader struct {
	campaign *domain.Campaign
	err      error
}

func (m *mockCampaignReader) GetCampaign(_ context.Context, _ uuid.UUID) (*domain.Campaign, error) {
	return m.campaign, m.err
}

func signBody(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func validCallbackBody() string {
	p := gatewayCallbackPayload{
		TransactionID: "txn_" + uuid.NewString(),
		CampaignID:    uuid.NewString(),
		Amount:        "25.50",
		DonorEmail:    "donor@test.com",
		DonorName:     "Donor",
		Status:        "completed",
	}
	b, _ := json.Marshal(p)
	return string(b)
}

func TestVerifyHMAC(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		signature string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			body:      `{"transaction_id":"abc"}`,
			signature: signBody(`{"transaction_id":"abc"}`, testGatewaySecret),
			secret:    testGatewaySecret,
			want:      true,
		},
		{
			name:      "wrong signature",
			body:      `{"transaction_id":"abc"}`,
			signature: "deadbeef",
			secret:    testGatewaySecret,
			want:      false,
		},
		{
			name:      "empty signature",
			body:      `{"transaction_id":"abc"}`,
			signature: "",
			secret:    testGatewaySecret,
			want:      false,
		},
		{
			name:      "wrong secret",
			body:      `{"transaction_id":"abc"}`,
			signature: signBody(`{"transaction_id":"abc"}`, "other-secret"),
			secret:    testGatewaySecret,
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := verifyHMAC([]byte(tc.body), tc.signature, tc.secret)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseWireAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "25.50", want: 2550},
		{in: "0.01", want: 1},
		{in: "100", want: 10000},
		{in: "0", wantErr: true},
		{in: "-5.00", wantErr: true},
		{in: "1.005", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseWireAmount(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func postCallback(t *testing.T, h *PaymentHandler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/gateway/callback", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Gateway-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.GatewayCallback(rec, req)
	return rec
}

func TestGatewayCallback(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupSig   func(body string) string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid signed callback",
			body:       validCallbackBody(),
			setupSig:   func(body string) string { return signBody(body, testGatewaySecret) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing signature",
			body:       validCallbackBody(),
			setupSig:   nil,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "tampered signature",
			body:       validCallbackBody(),
			setupSig:   func(_ string) string { return "deadbeefdeadbeef" },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "malformed body",
			body:       "{not json",
			setupSig:   func(body string) string { return signBody(body, testGatewaySecret) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing transaction id",
			body: `{"campaign_id":"` + uuid.NewString() + `","amount":"10.00","donor_email":"d@test.com","status":"completed"}`,
			setupSig: func(body string) string {
				return signBody(body, testGatewaySecret)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockFundingService{}
			h := NewPaymentHandler(svc, &mockCampaignReader{}, testGatewaySecret, "http://app/callback")

			sig := ""
			if tc.setupSig != nil {
				sig = tc.setupSig(tc.body)
			}
			rec := postCallback(t, h, tc.body, sig)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tc.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestGatewayCallback_ConvertsAmountToMinorUnits(t *testing.T) {
	svc := &mockFundingService{}
	h := NewPaymentHandler(svc, &mockCampaignReader{}, testGatewaySecret, "http://app/callback")

	body := validCallbackBody()
	rec := postCallback(t, h, body, signBody(body, testGatewaySecret))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.applied)
	assert.Equal(t, int64(2550), svc.applied.Amount)
	assert.Equal(t, "donor@test.com", svc.applied.DonorEmail)
}

func TestGatewayCallback_IgnoresFailedPayments(t *testing.T) {
	svc := &mockFundingService{}
	h := NewPaymentHandler(svc, &mockCampaignReader{}, testGatewaySecret, "http://app/callback")

	p := gatewayCallbackPayload{
		TransactionID: "txn_failed_1",
		CampaignID:    uuid.NewString(),
		Amount:        "10.00",
		DonorEmail:    "donor@test.com",
		Status:        "failed",
	}
	b, _ := json.Marshal(p)
	rec := postCallback(t, h, string(b), signBody(string(b), testGatewaySecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.applied)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "ignored", data["status"])
}

func TestGatewayCallback_ReportsDuplicateAsSuccess(t *testing.T) {
	svc := &mockFundingService{
		applyResult: &funding.DonationResult{
			Donation:         &domain.Donation{TransactionID: "txn_dup"},
			AlreadyProcessed: true,
		},
	}
	h := NewPaymentHandler(svc, &mockCampaignReader{}, testGatewaySecret, "http://app/callback")

	body := validCallbackBody()
	rec := postCallback(t, h, body, signBody(body, testGatewaySecret))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "already_processed", data["status"])
}

func TestGatewayCallback_DomainErrorsMapToCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "campaign missing", err: domain.ErrCampaignNotFound, wantStatus: http.StatusNotFound, wantCode: "CAMPAIGN_NOT_FOUND"},
		{name: "donor missing", err: domain.ErrDonorNotFound, wantStatus: http.StatusNotFound, wantCode: "DONOR_NOT_FOUND"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockFundingService{applyErr: tc.err}
			h := NewPaymentHandler(svc, &mockCampaignReader{}, testGatewaySecret, "http://app/callback")

			body := validCallbackBody()
			rec := postCallback(t, h, body, signBody(body, testGatewaySecret))

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestSignCheckoutOrder_Deterministic(t *testing.T) {
	order := checkoutOrder{
		TransactionID: "txn_1",
		CampaignID:    uuid.NewString(),
		Amount:        "12.00",
		DonorEmail:    "donor@test.com",
	}

	sig1 := signCheckoutOrder(order, testGatewaySecret)
	sig2 := signCheckoutOrder(order, testGatewaySecret)
	assert.Equal(t, sig1, sig2)

	order.Amount = "13.00"
	assert.NotEqual(t, sig1, signCheckoutOrder(order, testGatewaySecret))
}
