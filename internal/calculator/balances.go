package calculator

// ledger accumulates per-user totals while remembering first-seen order,
// so the same input always yields balances in the same order.
type ledger struct {
	order  []string
	byUser map[string]*UserBalance
}

func newLedger(capacity int) *ledger {
	return &ledger{
		order:  make([]string, 0, capacity),
		byUser: make(map[string]*UserBalance, capacity),
	}
}

// seed copies existing balances into the ledger.
func (l *ledger) seed(balances []UserBalance) {
	for _, b := range balances {
		if existing, ok := l.byUser[b.UserID]; ok {
			*existing = b
			continue
		}
		copied := b
		l.byUser[b.UserID] = &copied
		l.order = append(l.order, b.UserID)
	}
}

// account returns the accumulator for userID, creating it on first sight.
// Display info is attached only when the accumulator is created.
func (l *ledger) account(userID string, names NameLookup) *UserBalance {
	if b, ok := l.byUser[userID]; ok {
		return b
	}
	b := &UserBalance{UserID: userID}
	if info, ok := names[userID]; ok {
		b.UserName = info.Name
		b.UserEmail = info.Email
	}
	l.byUser[userID] = b
	l.order = append(l.order, userID)
	return b
}

// add records the payer's outlay and each participant's share.
func (l *ledger) add(e Expense, names NameLookup) {
	l.account(e.PayerID, names).TotalPaid += e.Amount
	for _, p := range e.Participants {
		l.account(p.UserID, names).TotalOwed += p.ShareAmount
	}
}

// subtract removes an expense's contributions from users already present.
// Users are never dropped, even when their totals return to zero.
func (l *ledger) subtract(e Expense) {
	if payer, ok := l.byUser[e.PayerID]; ok {
		payer.TotalPaid -= e.Amount
	}
	for _, p := range e.Participants {
		if b, ok := l.byUser[p.UserID]; ok {
			b.TotalOwed -= p.ShareAmount
		}
	}
}

// balances finalizes the ledger, rounding each net balance to cents.
func (l *ledger) balances() []UserBalance {
	out := make([]UserBalance, 0, len(l.order))
	for _, id := range l.order {
		b := *l.byUser[id]
		b.NetBalance = round2(b.TotalOwed - b.TotalPaid)
		out = append(out, b)
	}
	return out
}

// CalculateBalances folds expenses into one balance per distinct user.
//
// Algorithm:
//   - the payer of each expense contributed +amount (TotalPaid)
//   - each participant owes their share (TotalOwed)
//   - net_balance = round2(total_owed - total_paid)
//
// Totals accumulate at full precision; rounding happens only on the net.
func CalculateBalances(expenses []Expense, names NameLookup) []UserBalance {
	l := newLedger(len(expenses) + 1)
	for _, e := range expenses {
		l.add(e, names)
	}
	return l.balances()
}

// RecalculateBalances applies one new expense to a previously computed
// balance set. The result equals CalculateBalances over the extended list.
func RecalculateBalances(currentBalances []UserBalance, newExpense Expense, names NameLookup) []UserBalance {
	l := newLedger(len(currentBalances) + len(newExpense.Participants) + 1)
	l.seed(currentBalances)
	l.add(newExpense, names)
	return l.balances()
}

// RecalculateBalancesAfterRemoval reverses one expense's contributions.
func RecalculateBalancesAfterRemoval(currentBalances []UserBalance, removedExpense Expense) []UserBalance {
	l := newLedger(len(currentBalances))
	l.seed(currentBalances)
	l.subtract(removedExpense)
	return l.balances()
}

// CheckBalanced reports the sum of all net balances and whether it is within
// the settlement tolerance of zero. A closed ledger always balances; a
// failure points at partial or corrupted input.
func CheckBalanced(balances []UserBalance) (float64, bool) {
	var sum float64
	for _, b := range balances {
		sum += b.NetBalance
	}
	residual := round2(sum)
	return residual, residual <= settledTolerance && residual >= -settledTolerance
}
