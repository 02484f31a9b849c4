package api

// Participant is one user's share of an expense.
type Participant struct {
	UserID      string  `json:"userId"`
	ShareAmount float64 `json:"shareAmount"`
}

type Expense struct {
	ID           string         `json:"id"`
	GroupID      string         `json:"groupId"`
	PayerID      string         `json:"payerId"`
	Amount       float64        `json:"amount"`
	Description  string         `json:"description"`
	Date         string         `json:"date"`
	Participants []*Participant `json:"participants"`
	CreatedAt    int64          `json:"createdAt"`
	UpdatedAt    int64          `json:"updatedAt"`
}

// ExpenseDraft is a proposed expense that has not been validated yet.
type ExpenseDraft struct {
	PayerID      string         `json:"payerId"`
	Amount       float64        `json:"amount"`
	Description  string         `json:"description"`
	Date         string         `json:"date,omitempty"`
	Participants []*Participant `json:"participants"`
}

// Balance is one user's position in a group.
// Positive NetBalance owes the group; negative is owed by it.
type Balance struct {
	UserID     string  `json:"userId"`
	UserName   string  `json:"userName,omitempty"`
	UserEmail  string  `json:"userEmail,omitempty"`
	TotalPaid  float64 `json:"totalPaid"`
	TotalOwed  float64 `json:"totalOwed"`
	NetBalance float64 `json:"netBalance"`
}

// Debt is one recommended transfer.
type Debt struct {
	From     string  `json:"from"`
	FromName string  `json:"fromName,omitempty"`
	To       string  `json:"to"`
	ToName   string  `json:"toName,omitempty"`
	Amount   float64 `json:"amount"`
}

type CalculationResult struct {
	Balances        []*Balance `json:"balances"`
	SimplifiedDebts []*Debt    `json:"simplifiedDebts"`
	TotalExpenses   float64    `json:"totalExpenses"`
	IsValid         bool       `json:"isValid"`
	Errors          []string   `json:"errors"`
}

type DebtSummary struct {
	TotalDebt     float64 `json:"totalDebt"`
	TotalCredit   float64 `json:"totalCredit"`
	NetTotal      float64 `json:"netTotal"`
	DebtorCount   int     `json:"debtorCount"`
	CreditorCount int     `json:"creditorCount"`
}

// CreateExpenseRequest records a new expense. With SplitEqually set, only
// the participants' user IDs are used and the amount is divided in cents.
type CreateExpenseRequest struct {
	GroupID      string         `json:"groupId"`
	PayerID      string         `json:"payerId"`
	Amount       float64        `json:"amount"`
	Description  string         `json:"description"`
	Date         string         `json:"date,omitempty"`
	Participants []*Participant `json:"participants"`
	SplitEqually bool           `json:"splitEqually,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense           `json:"expense"`
	Result  *CalculationResult `json:"result"`
}

// UpdateExpenseRequest changes an existing expense. Omitted fields keep
// their current value; an empty date keeps the current date.
type UpdateExpenseRequest struct {
	ExpenseID    string         `json:"expenseId"`
	PayerID      *string        `json:"payerId,omitempty"`
	Amount       *float64       `json:"amount,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Date         *string        `json:"date,omitempty"`
	Participants []*Participant `json:"participants,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense           `json:"expense"`
	Result  *CalculationResult `json:"result"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct {
	Result *CalculationResult `json:"result"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetBalancesResponse struct {
	Result  *CalculationResult `json:"result"`
	Summary *DebtSummary       `json:"summary"`
}

// PreviewExpenseRequest applies a draft to balances the client already
// holds. Nothing is persisted.
type PreviewExpenseRequest struct {
	CurrentBalances []*Balance    `json:"currentBalances"`
	Expense         *ExpenseDraft `json:"expense"`
}

type PreviewExpenseResponse struct {
	Result *CalculationResult `json:"result"`
}
