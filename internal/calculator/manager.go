package calculator

import (
	"slices"
	"time"
)

// ExpenseNotFound is the error UpdateExpense reports for an unknown ID.
const ExpenseNotFound = "Expense not found"

// now is replaced in tests.
var now = time.Now

func today() string {
	return now().UTC().Format(time.DateOnly)
}

// CalculateExpenseResult validates and settles a full ledger snapshot.
// Balances and debts are computed even when some expenses are invalid, so
// callers can show a best-effort state next to the validation errors.
func CalculateExpenseResult(expenses []Expense, names NameLookup) ExpenseCalculationResult {
	errs := batchErrors(expenses)
	balances := CalculateBalances(expenses, names)

	return ExpenseCalculationResult{
		Balances:        balances,
		SimplifiedDebts: SimplifyDebts(balances),
		TotalExpenses:   totalAmount(expenses),
		IsValid:         len(errs) == 0,
		Errors:          errs,
	}
}

// AddExpense validates a new expense and appends it to a copy of expenses.
// On failure the original list is returned untouched.
func AddExpense(expenses []Expense, newExpense ExpenseInput, names NameLookup) MutationResult {
	validation := Validate(newExpense)
	if !validation.IsValid {
		return MutationResult{Errors: validation.Errors, UpdatedExpenses: expenses}
	}

	updated := make([]Expense, 0, len(expenses)+1)
	updated = append(updated, expenses...)
	updated = append(updated, accept(newExpense))

	result := CalculateExpenseResult(updated, names)
	return MutationResult{
		IsValid:           true,
		UpdatedExpenses:   updated,
		CalculationResult: &result,
	}
}

// RecalculateBalancesRealTime applies one new expense to an existing balance
// set without rescanning history. Invalid input returns currentBalances
// unchanged with no debts.
func RecalculateBalancesRealTime(currentBalances []UserBalance, newExpense ExpenseInput, names NameLookup) ExpenseCalculationResult {
	validation := Validate(newExpense)
	if !validation.IsValid {
		return ExpenseCalculationResult{
			Balances:        currentBalances,
			SimplifiedDebts: []SimplifiedDebt{},
			Errors:          validation.Errors,
		}
	}

	balances := RecalculateBalances(currentBalances, accept(newExpense), names)

	var paid float64
	for _, b := range balances {
		paid += b.TotalPaid
	}

	return ExpenseCalculationResult{
		Balances:        balances,
		SimplifiedDebts: SimplifyDebts(balances),
		TotalExpenses:   round2(paid),
		IsValid:         true,
	}
}

// RemoveExpense drops the expense with the given ID and recalculates.
// An unknown ID recalculates the unchanged ledger.
func RemoveExpense(expenses []Expense, expenseID string, names NameLookup) ExpenseCalculationResult {
	remaining := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.ID != expenseID {
			remaining = append(remaining, e)
		}
	}
	return CalculateExpenseResult(remaining, names)
}

// UpdateExpense replaces the expense with the given ID by the merge of its
// current fields and updates, then recalculates.
func UpdateExpense(expenses []Expense, expenseID string, updates ExpenseUpdate, names NameLookup) MutationResult {
	index := slices.IndexFunc(expenses, func(e Expense) bool { return e.ID == expenseID })
	if index == -1 {
		return MutationResult{Errors: []string{ExpenseNotFound}, UpdatedExpenses: expenses}
	}

	existing := expenses[index]
	merged := existing.input()
	if updates.PayerID != nil {
		merged.PayerID = *updates.PayerID
	}
	if updates.Amount != nil {
		merged.Amount = *updates.Amount
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Participants != nil {
		merged.Participants = updates.Participants
	}
	if updates.Date != nil && *updates.Date != "" {
		merged.Date = *updates.Date
	}

	validation := Validate(merged)
	if !validation.IsValid {
		return MutationResult{Errors: validation.Errors, UpdatedExpenses: expenses}
	}

	replacement := accept(merged)
	replacement.ID = existing.ID

	updated := slices.Clone(expenses)
	updated[index] = replacement

	result := CalculateExpenseResult(updated, names)
	return MutationResult{
		IsValid:           true,
		UpdatedExpenses:   updated,
		CalculationResult: &result,
	}
}

// accept turns validated input into a ledger expense with normalized shares.
func accept(input ExpenseInput) Expense {
	date := input.Date
	if date == "" {
		date = today()
	}
	return Expense{
		PayerID:      input.PayerID,
		Amount:       input.Amount,
		Description:  input.Description,
		Date:         date,
		Participants: NormalizeShares(input.Amount, input.Participants),
	}
}

func totalAmount(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return round2(total)
}
