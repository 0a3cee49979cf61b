// Package payos is the HTTP client for the payment-link provider.
package payos

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/provider/payment"
)

const paymentRequestsPath = "/v2/payment-requests"

// Provider creates payment links through the provider's REST API.
type Provider struct {
	cfg        *config.PayOS
	httpClient *http.Client
	logger     *slog.Logger
}

var _ payment.Source = (*Provider)(nil)

type createRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data *struct {
		CheckoutURL   string `json:"checkoutUrl"`
		QRCode        string `json:"qrCode"`
		PaymentLinkID string `json:"paymentLinkId"`
	} `json:"data"`
}

// New creates a Provider. httpClient may be nil.
func New(cfg *config.PayOS, httpClient *http.Client, logger *slog.Logger) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Provider{cfg: cfg, httpClient: httpClient, logger: logger}
}

func (p *Provider) Name() string { return payment.SourceProvider }

// Payable requests a checkout link for order.
func (p *Provider) Payable(ctx context.Context, order *payment.Order) (*payment.Payable, error) {
	if !p.cfg.Configured() {
		return nil, fmt.Errorf("%w: provider credentials missing", domain.ErrProviderUnavailable)
	}
	logger := p.logger.With("provider", "payos", "order_code", order.OrderCode)

	req := createRequest{
		OrderCode:   order.OrderCode,
		Amount:      order.Amount,
		Description: order.Description,
		CancelURL:   p.cfg.CancelURL,
		ReturnURL:   p.cfg.ReturnURL,
	}
	req.Signature = signature(req, p.cfg.ChecksumKey)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode payment request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+paymentRequestsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", p.cfg.ClientID)
	httpReq.Header.Set("x-api-key", p.cfg.ApiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("%w: provider returned status %d: %s",
			domain.ErrProviderUnavailable, resp.StatusCode, string(raw))
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrProviderUnavailable, err)
	}
	if out.Code != payment.SuccessCode || out.Data == nil || out.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: provider code %s: %s", domain.ErrProviderUnavailable, out.Code, out.Desc)
	}

	logger.Info("Payment link created", "payment_link_id", out.Data.PaymentLinkID)
	return &payment.Payable{
		Source:     payment.SourceProvider,
		PaymentURL: out.Data.CheckoutURL,
		QRCode:     out.Data.QRCode,
		Reference:  out.Data.PaymentLinkID,
	}, nil
}

// signature is the hex HMAC-SHA256 of the alphabetically sorted request fields
// joined as a query string, keyed with the checksum key.
func signature(req createRequest, checksumKey string) string {
	data := "amount=" + strconv.FormatInt(req.Amount, 10) +
		"&cancelUrl=" + req.CancelURL +
		"&description=" + req.Description +
		"&orderCode=" + strconv.FormatInt(req.OrderCode, 10) +
		"&returnUrl=" + req.ReturnURL
	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write([]byte(data)) //nolint:errcheck
	return hex.EncodeToString(mac.Sum(nil))
}
