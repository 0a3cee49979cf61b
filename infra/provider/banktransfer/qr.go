// Package banktransfer builds the static bank-transfer QR used when the payment
// link provider is unavailable.
package banktransfer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/provider/payment"
)

// QR renders receiver bank details into a QR image URL.
type QR struct {
	cfg *config.BankTransfer
}

var _ payment.Source = (*QR)(nil)

func New(cfg *config.BankTransfer) *QR {
	return &QR{cfg: cfg}
}

func (q *QR) Name() string { return payment.SourceBankTransfer }

// Payable returns {QR_BASE_URL}/{bank}-{account}-{template}.png with the amount,
// remittance memo and account holder as query parameters.
func (q *QR) Payable(_ context.Context, order *payment.Order) (*payment.Payable, error) {
	if !q.cfg.Configured() {
		return nil, fmt.Errorf("%w: bank transfer receiver not configured", domain.ErrPaymentNotConfigured)
	}
	template := q.cfg.Template
	if template == "" {
		template = "compact2"
	}
	params := url.Values{}
	params.Set("amount", strconv.FormatInt(order.Amount, 10))
	params.Set("addInfo", order.Description)
	if q.cfg.AccountName != "" {
		params.Set("accountName", q.cfg.AccountName)
	}
	image := fmt.Sprintf("%s/%s-%s-%s.png",
		strings.TrimRight(q.cfg.QRBaseURL, "/"),
		url.PathEscape(q.cfg.BankCode),
		url.PathEscape(q.cfg.AccountNumber),
		url.PathEscape(template),
	)
	return &payment.Payable{
		Source: payment.SourceBankTransfer,
		QRCode: image + "?" + params.Encode(),
	}, nil
}
