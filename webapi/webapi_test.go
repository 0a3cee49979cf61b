package webapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gamewallet/wallet/internal/fixtures/mocks"
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/webapi/deposit"
	paymentweb "github.com/gamewallet/wallet/webapi/payment"
	"github.com/gamewallet/wallet/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WebAPITestSuite struct {
	suite.Suite
	h     *testutils.Harness
	user  uuid.UUID
	token string
}

func TestWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(WebAPITestSuite))
}

func (s *WebAPITestSuite) SetupTest() {
	s.h = testutils.NewHarness(s.T(), nil, nil)
	s.user = uuid.New()
	s.token = s.h.Token(s.T(), s.user)
}

func (s *WebAPITestSuite) createDeposit(amount int64, promo string) deposit.CreateResponse {
	body := fmt.Sprintf(`{"amount":%d,"promo_code":%q}`, amount, promo)
	resp := s.h.Do(s.T(), http.MethodPost, "/api/v1/deposits", body, s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var out deposit.CreateResponse
	testutils.Decode(s.T(), resp, &out)
	return out
}

func (s *WebAPITestSuite) balance() int64 {
	resp := s.h.Do(s.T(), http.MethodGet, "/api/v1/balance", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var out deposit.BalanceResponse
	testutils.Decode(s.T(), resp, &out)
	return out.Amount
}

func webhookStatus(s *WebAPITestSuite, resp *http.Response) paymentweb.WebhookResponse {
	defer resp.Body.Close() //nolint: errcheck
	var out paymentweb.WebhookResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *WebAPITestSuite) TestHealth() {
	resp := s.h.Do(s.T(), http.MethodGet, "/health", "", "")
	s.Equal(fiber.StatusOK, resp.StatusCode)
}

func (s *WebAPITestSuite) TestSwaggerDoc() {
	resp := s.h.Do(s.T(), http.MethodGet, "/swagger/doc.json", "", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "/api/v1/webhooks/payment")
	s.Contains(string(body), "Wallet API")
}

func (s *WebAPITestSuite) TestMetricsEndpoint() {
	d := s.createDeposit(50000, "")
	s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 50000, payment.SuccessCode), testutils.WebhookSecret)

	resp := s.h.Do(s.T(), http.MethodGet, "/metrics", "", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `wallet_settlement_outcomes_total{outcome="approved"} 1`)
	s.Contains(string(body), "wallet_deposit_orders_created_total 1")
}

func (s *WebAPITestSuite) TestCreateDeposit_RequiresToken() {
	resp := s.h.Do(s.T(), http.MethodPost, "/api/v1/deposits", `{"amount":50000}`, "")
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)

	resp = s.h.Do(s.T(), http.MethodPost, "/api/v1/deposits", `{"amount":50000}`, "not-a-token")
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *WebAPITestSuite) TestCreateDeposit() {
	d := s.createDeposit(50000, "welcome")
	s.NotEqual(uuid.Nil, d.TransactionID)
	s.Positive(d.OrderCode)
	s.Equal("awaiting_payment", d.Status)
	s.Equal(payment.SourceNone, d.PayableSource)
	s.NotEmpty(d.Message)
	s.LessOrEqual(len(d.Description), 25)
}

func (s *WebAPITestSuite) TestCreateDeposit_InvalidAmount() {
	for _, body := range []string{`{"amount":9999}`, `{"amount":0}`, `{"amount":-5}`, `{"amount":"x"}`} {
		resp := s.h.Do(s.T(), http.MethodPost, "/api/v1/deposits", body, s.token)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode, body)
	}
}

func (s *WebAPITestSuite) TestCreateDeposit_PayableFromProvider() {
	provider := mocks.NewSource(s.T())
	provider.EXPECT().Payable(mock.Anything, mock.Anything).
		Return(&payment.Payable{Source: payment.SourceProvider, PaymentURL: "https://pay.example/abc", QRCode: "000201"}, nil)
	s.h = testutils.NewHarness(s.T(), nil, nil, provider)

	d := s.createDeposit(50000, "")
	s.Equal(payment.SourceProvider, d.PayableSource)
	s.Equal("https://pay.example/abc", d.PaymentURL)
	s.Equal("000201", d.QRCode)
}

func (s *WebAPITestSuite) TestGetDeposit() {
	d := s.createDeposit(50000, "")

	resp := s.h.Do(s.T(), http.MethodGet, "/api/v1/deposits/"+d.TransactionID.String(), "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var status deposit.StatusResponse
	testutils.Decode(s.T(), resp, &status)
	s.Equal("awaiting_payment", status.Status)
	s.Equal(d.OrderCode, status.OrderCode)

	other := s.h.Token(s.T(), uuid.New())
	resp = s.h.Do(s.T(), http.MethodGet, "/api/v1/deposits/"+d.TransactionID.String(), "", other)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)

	resp = s.h.Do(s.T(), http.MethodGet, "/api/v1/deposits/"+uuid.NewString(), "", s.token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)

	resp = s.h.Do(s.T(), http.MethodGet, "/api/v1/deposits/nope", "", s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *WebAPITestSuite) TestWebhook_Authentication() {
	d := s.createDeposit(50000, "")
	body := testutils.Callback(d.OrderCode, 50000, payment.SuccessCode)

	s.Equal(fiber.StatusUnauthorized, s.h.PostCallback(s.T(), body, "").StatusCode)
	s.Equal(fiber.StatusUnauthorized, s.h.PostCallback(s.T(), body, "wrong-secret").StatusCode)
	s.Zero(s.balance())
}

func (s *WebAPITestSuite) TestWebhook_UnsignedCallbackNeverReachesStorage() {
	uow := mocks.NewUnitOfWork(s.T())
	h := testutils.NewHarness(s.T(), nil, uow)
	body := testutils.Callback(4242, 50000, payment.SuccessCode)

	for _, secret := range []string{"", "wrong-secret"} {
		resp := h.PostCallback(s.T(), body, secret)
		s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	}
	uow.AssertNotCalled(s.T(), "Do", mock.Anything, mock.Anything)
	uow.AssertNotCalled(s.T(), "GetRepository", mock.Anything)
	uow.AssertNotCalled(s.T(), "LedgerRepository")
	uow.AssertNotCalled(s.T(), "BalanceRepository")
	uow.AssertNotCalled(s.T(), "PromotionRepository")

	uow.EXPECT().LedgerRepository().Return(nil, errors.New("storage down")).Once()
	resp := h.PostCallback(s.T(), body, testutils.WebhookSecret)
	s.Equal(fiber.StatusInternalServerError, resp.StatusCode)
}

func (s *WebAPITestSuite) TestWebhook_InterimStatusKeepsDepositOpen() {
	d := s.createDeposit(50000, "")

	resp := s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 50000, "PROCESSING"), testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := webhookStatus(s, resp)
	s.Equal("awaiting_payment", out.Status)
	s.Equal("unsettled", out.Outcome)
	s.Zero(s.balance())

	resp = s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 50000, "PAID"), testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal("approved", webhookStatus(s, resp).Status)
	s.Equal(int64(50000), s.balance())
}

func (s *WebAPITestSuite) TestWebhook_FailsClosedWithoutSecret() {
	cfg := testutils.TestConfig()
	cfg.Webhook = &config.Webhook{SignatureHeader: "X-Signature"}
	s.h = testutils.NewHarness(s.T(), cfg, nil)
	s.token = s.h.Token(s.T(), s.user)
	d := s.createDeposit(50000, "")

	resp := s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 50000, payment.SuccessCode), "")
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *WebAPITestSuite) TestWebhook_ApproveThenDuplicate() {
	d := s.createDeposit(50000, "")
	body := testutils.Callback(d.OrderCode, 50000, payment.SuccessCode)

	resp := s.h.PostCallback(s.T(), body, testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := webhookStatus(s, resp)
	s.Equal("approved", out.Status)
	s.Equal("approved", out.Outcome)

	resp = s.h.PostCallback(s.T(), body, testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out = webhookStatus(s, resp)
	s.Equal("approved", out.Status)
	s.Equal("duplicate", out.Outcome)

	s.Equal(int64(50000), s.balance())
}

func (s *WebAPITestSuite) TestWebhook_AmountMismatch() {
	d := s.createDeposit(50000, "")

	resp := s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 5000, payment.SuccessCode), testutils.WebhookSecret)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	s.Zero(s.balance())
}

func (s *WebAPITestSuite) TestWebhook_UnknownOrderAndMalformed() {
	resp := s.h.PostCallback(s.T(), testutils.Callback(123, 50000, payment.SuccessCode), testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := webhookStatus(s, resp)
	s.Equal(paymentweb.StatusIgnored, out.Status)
	s.Equal("unknown_order", out.Outcome)

	resp = s.h.PostCallback(s.T(), `{"code":"00"}`, testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal(paymentweb.StatusIgnored, webhookStatus(s, resp).Status)
}

func (s *WebAPITestSuite) TestWebhook_Rejected() {
	d := s.createDeposit(50000, "")

	resp := s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 50000, "01"), testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal("rejected", webhookStatus(s, resp).Status)
	s.Zero(s.balance())
}

func (s *WebAPITestSuite) TestWebhook_ConcurrentDuplicates() {
	d := s.createDeposit(50000, "")
	body := testutils.Callback(d.OrderCode, 50000, payment.SuccessCode)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.h.PostCallback(s.T(), body, testutils.WebhookSecret)
			s.Equal(fiber.StatusOK, resp.StatusCode)
		}()
	}
	wg.Wait()
	s.Equal(int64(50000), s.balance())
}

func (s *WebAPITestSuite) TestWelcomeBonusEndToEnd() {
	ctx := context.Background()
	minDeposit := int64(50000)
	maxUses := 1
	p, err := s.h.App.PromotionService.CreatePromotion(ctx, &promotion.Promotion{
		Title:      "Welcome",
		Kind:       promotion.KindCodeBased,
		Bonus:      promotion.Percentage{Rate: decimal.NewFromInt(100)},
		MinDeposit: &minDeposit,
		MaxUses:    &maxUses,
		Active:     true,
		Window:     promotion.Window{Start: time.Now().Add(-time.Hour)},
	})
	s.Require().NoError(err)
	_, err = s.h.App.PromotionService.CreateCode(ctx, p.ID, "WELCOME100")
	s.Require().NoError(err)

	d := s.createDeposit(100000, "WELCOME100")
	resp := s.h.PostCallback(s.T(), testutils.Callback(d.OrderCode, 100000, payment.SuccessCode), testutils.WebhookSecret)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal(int64(200000), s.balance())

	resp = s.h.Do(s.T(), http.MethodGet, "/api/v1/deposits/"+d.TransactionID.String(), "", s.token)
	var status deposit.StatusResponse
	testutils.Decode(s.T(), resp, &status)
	s.Equal("approved", status.Status)
	s.Require().NotNil(status.Bonus)
	s.Equal(int64(100000), status.Bonus.Amount)
	s.Equal("bonus", status.Bonus.Kind)
}

func (s *WebAPITestSuite) TestRateLimit() {
	cfg := testutils.TestConfig()
	cfg.RateLimit = &config.RateLimit{MaxRequests: 2, Window: time.Minute}
	s.h = testutils.NewHarness(s.T(), cfg, nil)
	token := s.h.Token(s.T(), s.user)

	for i := 0; i < 2; i++ {
		s.Equal(fiber.StatusOK, s.h.Do(s.T(), http.MethodGet, "/api/v1/balance", "", token).StatusCode)
	}
	s.Equal(fiber.StatusTooManyRequests, s.h.Do(s.T(), http.MethodGet, "/api/v1/balance", "", token).StatusCode)
	// The callback is never rate limited.
	resp := s.h.PostCallback(s.T(), testutils.Callback(1, 1, payment.SuccessCode), testutils.WebhookSecret)
	s.Equal(fiber.StatusOK, resp.StatusCode)
}

