package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gamewallet/wallet/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// errDrift makes the process exit non-zero when a balance does not reconcile.
var errDrift = errors.New("balance does not match the ledger")

func newAuditCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "audit USER_ID",
		Short: "Compare a user's balance with the sum of their approved entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			a, err := e.wallet()
			if err != nil {
				return err
			}
			report, err := a.AuditService.Audit(cmd.Context(), userID)
			if err != nil {
				return err
			}

			printField(cmd, "user", report.UserID)
			printField(cmd, "entries", report.Entries)
			kinds := make([]string, 0, len(report.ByKind))
			for k := range report.ByKind {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				printField(cmd, k, report.ByKind[ledger.Kind(k)])
			}
			printField(cmd, "reconstructed", report.Reconstructed)
			printField(cmd, "balance", report.Materialized)
			if !report.Consistent() {
				printField(cmd, "drift", badStyle.Render(fmt.Sprint(report.Difference())))
				return errDrift
			}
			printField(cmd, "drift", okStyle.Render("0"))
			return nil
		},
	}
}
