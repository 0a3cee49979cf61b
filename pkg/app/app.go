package app

import (
	"github.com/gamewallet/wallet/pkg/config"
	"github.com/gamewallet/wallet/pkg/service/audit"
	"github.com/gamewallet/wallet/pkg/service/deposit"
	"github.com/gamewallet/wallet/pkg/service/promotion"
	"github.com/gamewallet/wallet/pkg/service/settlement"
)

// App wires the services over one set of infrastructure dependencies.
type App struct {
	Deps              *config.Deps
	Config            *config.App
	DepositService    *deposit.Service
	SettlementService *settlement.Service
	PromotionService  *promotion.Service
	AuditService      *audit.Service
}

func New(deps *config.Deps) *App {
	app := &App{
		Deps:   deps,
		Config: deps.Config,
	}
	app.PromotionService = promotion.NewService(*deps)
	app.SettlementService = settlement.NewService(*deps, app.PromotionService)
	app.DepositService = deposit.NewService(*deps)
	app.AuditService = audit.NewService(*deps)
	app.setupEventBus()
	return app
}
