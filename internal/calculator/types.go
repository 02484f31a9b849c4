package calculator

// ExpenseParticipant is one participant's liability portion of one expense.
type ExpenseParticipant struct {
	UserID      string  `json:"userId"`
	ShareAmount float64 `json:"shareAmount"`
}

// ExpenseInput is an expense as proposed by a caller, before validation.
// Date is optional and defaults to today when the expense is accepted.
type ExpenseInput struct {
	PayerID      string               `json:"payerId"`
	Amount       float64              `json:"amount"`
	Description  string               `json:"description"`
	Participants []ExpenseParticipant `json:"participants"`
	Date         string               `json:"date,omitempty"`
}

// Expense is a validated expense as it sits in a ledger snapshot.
// Treat it as immutable: update and remove operations return new snapshots.
type Expense struct {
	ID           string               `json:"id,omitempty"`
	PayerID      string               `json:"payerId"`
	Amount       float64              `json:"amount"`
	Description  string               `json:"description"`
	Date         string               `json:"date"`
	Participants []ExpenseParticipant `json:"participants"`
}

// UserBalance is one user's aggregate position derived from a set of expenses.
type UserBalance struct {
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName,omitempty"`
	UserEmail string  `json:"userEmail,omitempty"`
	TotalPaid float64 `json:"totalPaid"`
	TotalOwed float64 `json:"totalOwed"`
	// NetBalance is TotalOwed - TotalPaid rounded to cents.
	// Positive = owes the group, Negative = is owed by the group.
	NetBalance float64 `json:"netBalance"`
}

// SimplifiedDebt is a single recommended transfer from a debtor to a creditor.
type SimplifiedDebt struct {
	From     string  `json:"from"`
	FromName string  `json:"fromName,omitempty"`
	To       string  `json:"to"`
	ToName   string  `json:"toName,omitempty"`
	Amount   float64 `json:"amount"`
}

// ExpenseCalculationResult is the aggregate output of a ledger calculation.
// Balances and debts are always populated, even when IsValid is false.
type ExpenseCalculationResult struct {
	Balances        []UserBalance    `json:"balances"`
	SimplifiedDebts []SimplifiedDebt `json:"simplifiedDebts"`
	TotalExpenses   float64          `json:"totalExpenses"`
	IsValid         bool             `json:"isValid"`
	Errors          []string         `json:"errors"`
}

// MutationResult is returned by operations that change a ledger snapshot.
// On failure UpdatedExpenses is the caller's original list and
// CalculationResult is nil.
type MutationResult struct {
	IsValid           bool
	Errors            []string
	UpdatedExpenses   []Expense
	CalculationResult *ExpenseCalculationResult
}

// ExpenseUpdate carries the fields to change on an existing expense.
// Nil fields keep the current value.
type ExpenseUpdate struct {
	PayerID      *string
	Amount       *float64
	Description  *string
	Date         *string
	Participants []ExpenseParticipant
}

// UserInfo is the display information attached to a balance.
type UserInfo struct {
	Name  string
	Email string
}

// NameLookup maps user IDs to display information. A nil lookup is valid.
type NameLookup map[string]UserInfo

// DebtSummary aggregates the outstanding debt and credit of a balance set.
type DebtSummary struct {
	TotalDebt     float64 `json:"totalDebt"`
	TotalCredit   float64 `json:"totalCredit"`
	NetTotal      float64 `json:"netTotal"`
	DebtorCount   int     `json:"debtorCount"`
	CreditorCount int     `json:"creditorCount"`
}

func (e Expense) input() ExpenseInput {
	return ExpenseInput{
		PayerID:      e.PayerID,
		Amount:       e.Amount,
		Description:  e.Description,
		Participants: e.Participants,
		Date:         e.Date,
	}
}
