package models

// Expense represents one shared payment inside a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the user who paid.
	PayerID string

	// Amount is the total paid.
	Amount float64

	// Description is a short label (e.g., "Dinner").
	Description string

	// Date is the calendar date of the expense (YYYY-MM-DD).
	Date string

	// Splits is each participant's share. The shares sum to Amount.
	Splits []ExpenseSplit

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64
}

// ExpenseSplit is one participant's share of an expense.
type ExpenseSplit struct {
	UserID      string
	ShareAmount float64
}
