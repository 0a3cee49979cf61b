package deposit

import (
	"time"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/service/deposit"
	"github.com/google/uuid"
)

// CreateRequest is the body of POST /api/v1/deposits.
type CreateRequest struct {
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	PromoCode string `json:"promo_code" validate:"omitempty,max=64"`
}

// CreateResponse describes a freshly opened deposit and how to pay for it.
type CreateResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	OrderCode     int64     `json:"order_code"`
	Description   string    `json:"description"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	PayableSource string    `json:"payable_source"`
	PaymentURL    string    `json:"payment_url,omitempty"`
	QRCode        string    `json:"qr_code,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// EntryResponse is a ledger entry as shown to its owner.
type EntryResponse struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	Kind          string     `json:"kind"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	OrderCode     int64      `json:"order_code,omitempty"`
	Description   string     `json:"description,omitempty"`
	PromoCode     string     `json:"promo_code,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// StatusResponse is the body of GET /api/v1/deposits/:id.
type StatusResponse struct {
	EntryResponse
	Bonus *EntryResponse `json:"bonus,omitempty"`
}

// BalanceResponse is the body of GET /api/v1/balance.
type BalanceResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func toCreateResponse(in *deposit.Initiated) CreateResponse {
	out := CreateResponse{
		TransactionID: in.Entry.ID,
		OrderCode:     in.Entry.Correlation.OrderCode,
		Description:   in.Entry.Description,
		Amount:        in.Entry.Amount,
		Status:        string(in.Entry.Status),
		PayableSource: payment.SourceNone,
	}
	if p := in.Payable; p != nil {
		out.PayableSource = p.Source
		out.PaymentURL = p.PaymentURL
		out.QRCode = p.QRCode
		out.Message = p.Message
	}
	return out
}

func toEntryResponse(e *ledger.Entry) EntryResponse {
	return EntryResponse{
		TransactionID: e.ID,
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		Status:        string(e.Status),
		OrderCode:     e.Correlation.OrderCode,
		Description:   e.Description,
		PromoCode:     e.Correlation.PromoCode,
		ApprovedAt:    e.ApprovedAt,
		CreatedAt:     e.CreatedAt,
	}
}

func toStatusResponse(s *deposit.Status) StatusResponse {
	out := StatusResponse{EntryResponse: toEntryResponse(s.Entry)}
	if s.Bonus != nil {
		b := toEntryResponse(s.Bonus)
		out.Bonus = &b
	}
	return out
}
