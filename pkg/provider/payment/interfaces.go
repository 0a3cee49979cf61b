package payment

import (
	"context"
)

// Source produces a payable reference for a deposit order. It never touches the ledger.
type Source interface {
	// Name identifies the source in logs, metrics and API responses.
	Name() string
	Payable(ctx context.Context, order *Order) (*Payable, error)
}
