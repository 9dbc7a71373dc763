package settlement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ReceivableSignRule selects how TotalReceivable derives each item's sign
type ReceivableSignRule string

const (
	// ReceivableSignedAmount sums the already signed Amount, the same rule
	// TotalToPay uses.
	ReceivableSignedAmount ReceivableSignRule = "SIGNED_AMOUNT"
	// ReceivableKindReflected re-applies the kind sign on top of the signed
	// Amount, so credit notes count positive. Kept for comparison against
	// historical settlement data.
	ReceivableKindReflected ReceivableSignRule = "KIND_REFLECTED"
)

// IsValid checks if the rule is known
func (r ReceivableSignRule) IsValid() bool {
	return r == ReceivableSignedAmount || r == ReceivableKindReflected
}

// String returns the string representation of the rule
func (r ReceivableSignRule) String() string {
	return string(r)
}

// ParseReceivableSignRule parses a rule name, case-insensitively.
// An empty name yields the default rule.
func ParseReceivableSignRule(name string) (ReceivableSignRule, error) {
	if strings.TrimSpace(name) == "" {
		return ReceivableSignedAmount, nil
	}
	rule := ReceivableSignRule(strings.ToUpper(strings.TrimSpace(name)))
	if !rule.IsValid() {
		return "", fmt.Errorf("unknown receivable sign rule %q", name)
	}
	return rule, nil
}

// Totals are the aggregates of the selected items
type Totals struct {
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	TotalToPay      decimal.Decimal `json:"total_to_pay"`
	SelectedCount   int             `json:"selected_count"`
}

// ComputeTotals sums the selected items. It is recomputed on every call.
func ComputeTotals(items []DueItem, selection *SelectionSet, rule ReceivableSignRule) Totals {
	totals := Totals{
		TotalReceivable: decimal.Zero,
		TotalToPay:      decimal.Zero,
	}
	if selection == nil {
		return totals
	}
	for _, item := range items {
		if !selection.IsSelected(item.ID) {
			continue
		}
		totals.SelectedCount++
		totals.TotalToPay = totals.TotalToPay.Add(item.AmountToPay)
		totals.TotalReceivable = totals.TotalReceivable.Add(receivableContribution(item, rule))
	}
	return totals
}

func receivableContribution(item DueItem, rule ReceivableSignRule) decimal.Decimal {
	if rule == ReceivableKindReflected && !item.IsInvoice() {
		return item.Amount.Neg()
	}
	return item.Amount
}
