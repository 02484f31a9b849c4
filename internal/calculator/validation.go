package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationResult lists every problem found in an expense or batch.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// Validate checks a proposed expense for structural correctness.
// It reports all violations instead of stopping at the first one.
func Validate(input ExpenseInput) ValidationResult {
	var errs []string

	if input.PayerID == "" {
		errs = append(errs, "Payer ID is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		errs = append(errs, "Description is required")
	}
	// Written as a negation so NaN is rejected too.
	if !(input.Amount > 0) {
		errs = append(errs, "Amount must be greater than 0")
	}
	if len(input.Participants) == 0 {
		errs = append(errs, "At least one participant is required")
	}

	seen := make(map[string]bool, len(input.Participants))
	totalShare := decimal.Zero
	for i, p := range input.Participants {
		if p.UserID == "" {
			errs = append(errs, fmt.Sprintf("Participant %d is missing user ID", i+1))
		}
		if seen[p.UserID] {
			errs = append(errs, fmt.Sprintf("Duplicate participant: %s", p.UserID))
		}
		seen[p.UserID] = true

		if !finite(p.ShareAmount) {
			errs = append(errs, fmt.Sprintf("Participant %d has invalid share amount", i+1))
			continue
		}
		if p.ShareAmount < 0 {
			errs = append(errs, fmt.Sprintf("Participant %d has negative share amount", i+1))
		}
		totalShare = totalShare.Add(decimal.NewFromFloat(p.ShareAmount))
	}

	// A nil list means no shares were given; an empty one is checked.
	if input.Participants != nil && sharesMismatch(totalShare, input.Amount) {
		errs = append(errs, fmt.Sprintf(
			"Total share amount (%.2f) does not match expense amount (%.2f)",
			totalShare.InexactFloat64(), input.Amount,
		))
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateExpenses validates a ledger snapshot. Messages are prefixed with
// the 1-based position of the offending expense.
func ValidateExpenses(expenses []Expense) ValidationResult {
	var errs []string
	if len(expenses) == 0 {
		errs = append(errs, "Expense list is empty")
	}
	errs = append(errs, batchErrors(expenses)...)
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func batchErrors(expenses []Expense) []string {
	var errs []string
	for i, e := range expenses {
		result := Validate(e.input())
		for _, msg := range result.Errors {
			errs = append(errs, fmt.Sprintf("Expense %d: %s", i+1, msg))
		}
	}
	return errs
}

// NormalizeShares rounds each share to cents and moves any remaining
// difference against amount onto the first participant, so the shares sum
// to amount exactly. The input slice is not modified.
func NormalizeShares(amount float64, participants []ExpenseParticipant) []ExpenseParticipant {
	normalized := make([]ExpenseParticipant, len(participants))
	var total float64
	for i, p := range participants {
		normalized[i] = ExpenseParticipant{UserID: p.UserID, ShareAmount: round2(p.ShareAmount)}
		total += normalized[i].ShareAmount
	}

	difference := round2(amount - total)
	if math.Abs(difference) > residualTolerance && len(normalized) > 0 {
		normalized[0].ShareAmount = round2(normalized[0].ShareAmount + difference)
	}
	return normalized
}
