package config

import (
	"log/slog"

	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/gamewallet/wallet/pkg/metrics"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/gamewallet/wallet/pkg/provider/payment"
	"github.com/gamewallet/wallet/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow repository.UnitOfWork
	// PaymentProvider is tried first; BankTransfer is the static fallback. Either may be nil.
	PaymentProvider payment.Source
	BankTransfer    payment.Source
	OrderCodes      *ordercode.Generator
	EventBus        eventbus.Bus
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
	Config          *App
}
