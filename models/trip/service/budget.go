package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tripweave/tripweave-backend/pkg/valueobjects"
	"github.com/tripweave/tripweave-backend/types"
)

// SetEstimatedBudget sets or, with nil, clears the estimate. Negative amounts
// clamp to zero.
func (e *Engine) SetEstimatedBudget(ctx context.Context, trip *types.Trip, amount *float64) (*types.Trip, error) {
	return e.mutate(ctx, trip, "set_estimated_budget", "Updated budget estimate", func(next *types.Trip) (bool, string) {
		next.Budget.Estimated = clampOptional(amount)
		return true, ""
	})
}

func (e *Engine) SetCurrency(ctx context.Context, trip *types.Trip, code string) (*types.Trip, error) {
	currency, ok := valueobjects.ParseCurrency(code)
	return e.mutate(ctx, trip, "set_currency", "Currency set to "+string(currency), func(next *types.Trip) (bool, string) {
		if !ok {
			return false, fmt.Sprintf("invalid currency %q", code)
		}
		next.Budget.Currency = string(currency)
		return true, ""
	})
}

func (e *Engine) SetParticipantBudget(ctx context.Context, trip *types.Trip, id string, amount float64) (*types.Trip, error) {
	id = strings.TrimSpace(id)
	return e.mutate(ctx, trip, "set_participant_budget", "Updated budget for "+id, func(next *types.Trip) (bool, string) {
		if id == "" {
			return false, "blank participant"
		}
		next.ParticipantBudgets[id] = clamp(amount)
		return true, ""
	})
}

// SetOriginCountry records where the group starts from and switches the
// budget currency to that country's.
func (e *Engine) SetOriginCountry(ctx context.Context, trip *types.Trip, country string) (*types.Trip, error) {
	country = strings.TrimSpace(country)
	return e.mutate(ctx, trip, "set_origin_country", "Origin country set to "+country, func(next *types.Trip) (bool, string) {
		if country == "" {
			return false, "blank country"
		}
		next.OriginCountry = country
		next.Budget.Currency = string(valueobjects.CurrencyForCountry(country))
		return true, ""
	})
}

func validSplitMode(m types.SplitMode) bool {
	switch m {
	case types.SplitSelf, types.SplitAll, types.SplitSelected:
		return true
	}
	return false
}

// AddExpense splits the amount over the pool chosen by the split mode. The
// shares are whole cents and sum exactly to the amount.
func (e *Engine) AddExpense(ctx context.Context, trip *types.Trip, draft types.ExpenseDraft) (*types.Trip, error) {
	desc := strings.TrimSpace(draft.Desc)
	payer := firstNonBlank(draft.PaidBy, types.ActorFromContext(ctx))
	now := e.clock()
	id := e.newID()

	return e.mutate(ctx, trip, "add_expense", "Added expense: "+desc, func(next *types.Trip) (bool, string) {
		if desc == "" {
			return false, "blank description"
		}
		if draft.Amount <= 0 {
			return false, "amount must be positive"
		}
		mode := types.SplitMode(canonical(string(draft.SplitMode)))
		if !validSplitMode(mode) {
			return false, fmt.Sprintf("unknown split mode %q", draft.SplitMode)
		}
		if next.PartyType == types.PartySolo {
			mode = types.SplitSelf
		}

		var pool []string
		switch mode {
		case types.SplitSelf:
			pool = []string{payer}
		case types.SplitAll:
			pool = dedupeParticipants(append(append([]string{}, next.Participants...), payer))
		case types.SplitSelected:
			pool = dedupeParticipants(append(append([]string{}, draft.SplitWith...), payer))
		}

		amount := valueobjects.Round2(draft.Amount)
		shares, err := valueobjects.SplitAmount(amount, len(pool))
		if err != nil {
			return false, err.Error()
		}
		splits := make(map[string]float64, len(pool))
		for i, p := range pool {
			splits[p] = shares[i]
		}

		next.Expenses = append(next.Expenses, types.Expense{
			ID:        id,
			Desc:      desc,
			Amount:    amount,
			Currency:  next.Budget.Currency,
			PaidBy:    payer,
			SplitMode: mode,
			Splits:    splits,
			CreatedAt: now,
		})
		return true, ""
	})
}

func (e *Engine) RemoveExpense(ctx context.Context, trip *types.Trip, id string) (*types.Trip, error) {
	return e.mutate(ctx, trip, "remove_expense", "Removed expense", func(next *types.Trip) (bool, string) {
		for i, exp := range next.Expenses {
			if exp.ID == id {
				next.Expenses = append(next.Expenses[:i:i], next.Expenses[i+1:]...)
				return true, ""
			}
		}
		return false, "unknown expense"
	})
}

// Balances reports what each person is owed (positive) or owes (negative).
func Balances(trip *types.Trip) map[string]float64 {
	// Identifiers compare case-insensitively; rows use the participant's spelling.
	names := make(map[string]string)
	nameOf := func(who string) string {
		key := strings.ToLower(who)
		if name, ok := names[key]; ok {
			return name
		}
		names[key] = who
		return who
	}
	for _, p := range trip.Participants {
		nameOf(p)
	}

	totals := make(map[string]decimal.Decimal)
	for _, exp := range trip.Expenses {
		payer := nameOf(exp.PaidBy)
		for who, share := range exp.Splits {
			debtor := nameOf(who)
			if debtor == payer {
				continue
			}
			amount := decimal.NewFromFloat(share)
			totals[payer] = totals[payer].Add(amount)
			totals[debtor] = totals[debtor].Sub(amount)
		}
	}

	out := make(map[string]float64, len(totals))
	for who, total := range totals {
		out[who], _ = total.Round(2).Float64()
	}
	return out
}

func Summary(trip *types.Trip) types.BudgetSummary {
	amounts := make([]float64, len(trip.Expenses))
	for i, exp := range trip.Expenses {
		amounts[i] = exp.Amount
	}
	spent := valueobjects.SumRounded(amounts...)

	s := types.BudgetSummary{
		Currency: trip.Budget.Currency,
		Spent:    spent,
		Balances: Balances(trip),
	}
	if trip.Budget.Estimated != nil {
		estimated := *trip.Budget.Estimated
		remaining := valueobjects.SumRounded(estimated, -spent)
		s.Estimated = &estimated
		s.Remaining = &remaining
	}
	return s
}
