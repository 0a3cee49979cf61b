package main

import (
	"fmt"
	"strconv"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/gamewallet/wallet/pkg/ordercode"
	"github.com/spf13/cobra"
)

func newOrderCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "order ORDER_CODE|DESCRIPTION",
		Short: "Show the deposit correlated with an order code",
		Long: `Show the deposit correlated with an order code.

The argument may be the numeric order code or any text containing the
remittance description, such as a bank statement memo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.wallet()
			if err != nil {
				return err
			}
			orderCode, err := parseOrderRef(a.Config.Deposit.DescriptionPrefix, args[0])
			if err != nil {
				return err
			}
			st, err := a.DepositService.LookupOrder(cmd.Context(), orderCode)
			if err != nil {
				return fmt.Errorf("order %d: %w", orderCode, err)
			}
			printEntry(cmd, st.Entry)
			if st.Bonus != nil {
				printField(cmd, "bonus", st.Bonus.Amount)
				printField(cmd, "promotion", *st.Bonus.PromotionID)
			}
			return nil
		},
	}
}

func parseOrderRef(prefix, ref string) (int64, error) {
	if code, err := strconv.ParseInt(ref, 10, 64); err == nil && code > 0 {
		return code, nil
	}
	if code, ok := ordercode.Parse(prefix, ref); ok {
		return code, nil
	}
	return 0, fmt.Errorf("no order code found in %q", ref)
}

func printEntry(cmd *cobra.Command, entry *ledger.Entry) {
	printField(cmd, "entry", entry.ID)
	printField(cmd, "user", entry.UserID)
	printField(cmd, "order code", entry.Correlation.OrderCode)
	printField(cmd, "description", entry.Description)
	printField(cmd, "amount", entry.Amount)
	status := string(entry.Status)
	switch entry.Status {
	case ledger.StatusApproved:
		status = okStyle.Render(status)
	case ledger.StatusRejected, ledger.StatusCancelled:
		status = badStyle.Render(status)
	}
	printField(cmd, "status", status)
	if entry.Correlation.HasPromoCode() {
		printField(cmd, "promo code", entry.Correlation.PromoCode)
	}
	if entry.FirstDeposit != nil {
		printField(cmd, "first deposit", *entry.FirstDeposit)
	}
	if entry.BonusEvaluatedAt != nil {
		printField(cmd, "bonus evaluated", entry.BonusEvaluatedAt.Format("2006-01-02 15:04:05"))
	}
}
