package promotion

import (
	"sort"
	"time"
)

// Rule names the selection rule that produced a candidate.
type Rule string

const (
	RuleCode                  Rule = "code"
	RuleFirstDeposit          Rule = "first_deposit"
	RuleTimeBased             Rule = "time_based"
	RuleTimeBasedFirstDeposit Rule = "time_based_first_deposit"
)

// Candidate is a promotion that qualifies for a deposit, in priority order.
type Candidate struct {
	Promotion *Promotion
	Rule      Rule
	// Code is set when the candidate comes from a redeemed promotion code.
	Code *Code
}

// SelectionInput is everything the policy needs to rank promotions for one deposit.
type SelectionInput struct {
	Amount int64
	At     time.Time
	// FirstDeposit must be computed before the deposit itself counts as approved.
	FirstDeposit bool

	// Code and CodePromotion are the resolution of the deposit's intended promo code, if any.
	Code          *Code
	CodePromotion *Promotion

	// Campaigns are the first_deposit and time_based promotions to consider.
	Campaigns []*Promotion
}

// Candidates returns the qualifying promotions in the order they must be tried.
//
//  1. the intended code, if it resolves to an unused code of an eligible code_based promotion
//  2. first_deposit promotions, when this is the user's first deposit
//  3. time_based promotions not restricted to first deposits
//  4. time_based promotions restricted to first deposits, when this is the first deposit
//
// Within a rule the most recent campaign wins; ties on creation time fall back to id
// so the order never depends on storage iteration.
func Candidates(in SelectionInput) []Candidate {
	var out []Candidate

	if in.Code != nil && !in.Code.Used && in.CodePromotion != nil &&
		in.CodePromotion.Kind == KindCodeBased &&
		in.CodePromotion.ID == in.Code.PromotionID &&
		in.CodePromotion.Eligible(in.Amount, in.At) {
		out = append(out, Candidate{Promotion: in.CodePromotion, Rule: RuleCode, Code: in.Code})
	}

	campaigns := make([]*Promotion, 0, len(in.Campaigns))
	for _, p := range in.Campaigns {
		if p != nil && p.Eligible(in.Amount, in.At) {
			campaigns = append(campaigns, p)
		}
	}
	SortByRecency(campaigns)

	if in.FirstDeposit {
		for _, p := range campaigns {
			if p.Kind == KindFirstDeposit {
				out = append(out, Candidate{Promotion: p, Rule: RuleFirstDeposit})
			}
		}
	}
	for _, p := range campaigns {
		if p.Kind == KindTimeBased && !p.FirstDepositOnly {
			out = append(out, Candidate{Promotion: p, Rule: RuleTimeBased})
		}
	}
	if in.FirstDeposit {
		for _, p := range campaigns {
			if p.Kind == KindTimeBased && p.FirstDepositOnly {
				out = append(out, Candidate{Promotion: p, Rule: RuleTimeBasedFirstDeposit})
			}
		}
	}
	return out
}

// SortByRecency orders promotions newest first, then by id.
func SortByRecency(ps []*Promotion) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID.String() < ps[j].ID.String()
	})
}
