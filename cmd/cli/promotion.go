package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gamewallet/wallet/pkg/domain"
	"github.com/gamewallet/wallet/pkg/domain/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type promotionFlags struct {
	title            string
	kind             string
	percentage       string
	flat             int64
	minDeposit       int64
	maxUses          int
	firstDepositOnly bool
	starts           string
	ends             string
	inactive         bool
}

func newPromotionCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promotion",
		Short: "Manage bonus promotions",
	}
	cmd.AddCommand(newPromotionCreateCmd(e), newPromotionListCmd(e))
	return cmd
}

func newPromotionCreateCmd(e *env) *cobra.Command {
	var f promotionFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a promotion",
		Example: `  wallet promotion create --title "Welcome" --kind code_based --percentage 100 --min-deposit 50000 --max-uses 1
  wallet promotion create --title "Weekend" --kind time_based --flat 20000 --starts 2026-10-17T00:00:00Z --ends 2026-10-19T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := f.build(cmd)
			if err != nil {
				return err
			}
			a, err := e.wallet()
			if err != nil {
				return err
			}
			created, err := a.PromotionService.CreatePromotion(cmd.Context(), p)
			if err != nil {
				return err
			}
			printField(cmd, "promotion", created.ID)
			printField(cmd, "kind", created.Kind)
			printField(cmd, "bonus", describeBonus(created.Bonus))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "Display title")
	fl.StringVar(&f.kind, "kind", "", "first_deposit, code_based or time_based")
	fl.StringVar(&f.percentage, "percentage", "", "Bonus as a percentage of the deposit, 0..100")
	fl.Int64Var(&f.flat, "flat", 0, "Bonus as a fixed amount in minor units")
	fl.Int64Var(&f.minDeposit, "min-deposit", 0, "Minimum qualifying deposit in minor units")
	fl.IntVar(&f.maxUses, "max-uses", 0, "Maximum number of bonuses paid")
	fl.BoolVar(&f.firstDepositOnly, "first-deposit-only", false, "Restrict a time_based promotion to first deposits")
	fl.StringVar(&f.starts, "starts", "", "Window start, RFC 3339 (default now)")
	fl.StringVar(&f.ends, "ends", "", "Window end, RFC 3339 (default open)")
	fl.BoolVar(&f.inactive, "inactive", false, "Create the promotion switched off")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("kind")
	cmd.MarkFlagsMutuallyExclusive("percentage", "flat")
	cmd.MarkFlagsOneRequired("percentage", "flat")
	return cmd
}

func (f *promotionFlags) build(cmd *cobra.Command) (*promotion.Promotion, error) {
	p := &promotion.Promotion{
		Title:            f.title,
		Kind:             promotion.Kind(f.kind),
		FirstDepositOnly: f.firstDepositOnly,
		Active:           !f.inactive,
	}

	var err error
	if cmd.Flags().Changed("percentage") {
		rate, perr := decimal.NewFromString(f.percentage)
		if perr != nil {
			return nil, fmt.Errorf("%w: invalid percentage %q", domain.ErrValidation, f.percentage)
		}
		p.Bonus, err = promotion.NewPercentage(rate)
	} else {
		p.Bonus, err = promotion.NewFlat(f.flat)
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("min-deposit") {
		p.MinDeposit = &f.minDeposit
	}
	if cmd.Flags().Changed("max-uses") {
		p.MaxUses = &f.maxUses
	}
	if f.starts != "" {
		if p.Window.Start, err = time.Parse(time.RFC3339, f.starts); err != nil {
			return nil, fmt.Errorf("%w: invalid --starts: %v", domain.ErrValidation, err)
		}
	}
	if f.ends != "" {
		end, err := time.Parse(time.RFC3339, f.ends)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid --ends: %v", domain.ErrValidation, err)
		}
		p.Window.End = &end
	}
	return p, nil
}

func describeBonus(b promotion.Bonus) string {
	switch v := b.(type) {
	case promotion.Percentage:
		return v.Rate.String() + "%"
	case promotion.Flat:
		return fmt.Sprint(v.Amount)
	default:
		return "-"
	}
}

func optional[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func newPromotionListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List promotions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.wallet()
			if err != nil {
				return err
			}
			ps, err := a.PromotionService.ListPromotions(cmd.Context())
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "TITLE", "KIND", "BONUS", "MIN", "USES", "ACTIVE", "WINDOW").
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return lipgloss.NewStyle().Bold(true).Padding(0, 1)
					}
					return lipgloss.NewStyle().Padding(0, 1)
				})
			for _, p := range ps {
				t.Row(
					p.ID.String(),
					p.Title,
					string(p.Kind),
					describeBonus(p.Bonus),
					optional(p.MinDeposit),
					fmt.Sprintf("%d/%s", p.CurrentUses, optional(p.MaxUses)),
					fmt.Sprint(p.Active),
					describeWindow(p.Window),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func describeWindow(w promotion.Window) string {
	end := "open"
	if w.End != nil {
		end = w.End.Format(time.DateOnly)
	}
	return w.Start.Format(time.DateOnly) + ".." + end
}

func newCodeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Manage promotion codes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create PROMOTION_ID CODE",
		Short: "Bind a single-use code to a code_based promotion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			promotionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid promotion id: %w", err)
			}
			a, err := e.wallet()
			if err != nil {
				return err
			}
			c, err := a.PromotionService.CreateCode(cmd.Context(), promotionID, args[1])
			if err != nil {
				return err
			}
			printField(cmd, "code", c.Code)
			printField(cmd, "promotion", c.PromotionID)
			return nil
		},
	})
	return cmd
}
