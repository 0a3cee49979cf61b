package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Names of the payable sources, as reported to clients.
const (
	SourceProvider     = "provider"
	SourceBankTransfer = "bank_transfer"
	SourceNone         = "none"
)

// SuccessCode is the provider status code for a completed payment.
const SuccessCode = "00"

// Order is what a payable source needs to know about a deposit.
type Order struct {
	EntryID     uuid.UUID
	UserID      uuid.UUID
	OrderCode   int64
	Amount      int64
	Description string
}

// Payable is the informational result shown to the depositor.
type Payable struct {
	Source     string `json:"payable_source"`
	PaymentURL string `json:"payment_url,omitempty"`
	QRCode     string `json:"qr_code,omitempty"`
	// Reference is the provider's own id for the payment link, if any.
	Reference string `json:"-"`
	// Message explains a SourceNone result.
	Message string `json:"message,omitempty"`
}

// CallbackData is the payment confirmation carried by a provider callback.
type CallbackData struct {
	OrderCode int64  `json:"orderCode"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// Callback is the body of a provider webhook request.
type Callback struct {
	Code string        `json:"code"`
	Desc string        `json:"desc"`
	Data *CallbackData `json:"data"`
}

// Event is a verified, parsed provider callback.
type Event struct {
	OrderCode  int64
	Amount     int64
	StatusCode string
	Desc       string
}

// Status is how a callback's provider status moves a deposit.
type Status int

const (
	// StatusUnsettled leaves the deposit open: pending, interim or unrecognized statuses.
	StatusUnsettled Status = iota
	StatusPaid
	StatusFailed
)

var (
	paidStatuses   = map[string]bool{"PAID": true, "SUCCESS": true, "SUCCEEDED": true, "COMPLETED": true}
	failedStatuses = map[string]bool{
		"CANCELLED": true, "CANCELED": true, "FAILED": true, "EXPIRED": true, "REJECTED": true,
	}
)

// ClassifyStatus maps a provider status onto its settlement effect. "00" and the paid
// words settle the deposit; any other numeric code and the failure words reject it.
// Everything else keeps the deposit open.
func ClassifyStatus(code string) Status {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case code == SuccessCode || paidStatuses[code]:
		return StatusPaid
	case failedStatuses[code] || isNumeric(code):
		return StatusFailed
	default:
		return StatusUnsettled
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Status classifies the event's provider status.
func (e Event) Status() Status {
	return ClassifyStatus(e.StatusCode)
}

// Succeeded reports whether the provider confirmed the payment.
func (e Event) Succeeded() bool {
	return e.Status() == StatusPaid
}

// Failed reports whether the provider reported a terminal failure.
func (e Event) Failed() bool {
	return e.Status() == StatusFailed
}

// ParseCallback decodes a callback body. The payment status is data.status, or the
// top-level code when the provider omits it; the top-level code alone never overrides
// a data.status the provider did send.
func ParseCallback(body []byte) (*Event, error) {
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}
	if cb.Data == nil {
		return nil, fmt.Errorf("callback has no data")
	}
	if cb.Data.OrderCode <= 0 {
		return nil, fmt.Errorf("callback has no order code")
	}
	status := cb.Data.Status
	if status == "" {
		status = cb.Code
	}
	return &Event{
		OrderCode:  cb.Data.OrderCode,
		Amount:     cb.Data.Amount,
		StatusCode: status,
		Desc:       cb.Desc,
	}, nil
}
