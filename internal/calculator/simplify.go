package calculator

import (
	"math"
	"sort"
)

// debtNode is a working copy of one user's balance during simplification.
type debtNode struct {
	userID   string
	userName string
	balance  float64 // Positive = owes money, Negative = is owed money
}

func settled(v float64) bool {
	return math.Abs(v) < settledTolerance
}

// SimplifyDebts produces the transfers that settle every balance.
//
// Algorithm: greedy matching of the largest debtor with the largest creditor.
// Nodes are sorted by balance (debtors first, creditors last) and walked with
// two pointers until they meet. Each step transfers min(debt, credit), so at
// least one side settles and the result holds at most n-1 transfers.
//
// Transfers of a cent or less are treated as rounding noise and never
// emitted. Input that does not net to zero leaves residue that is dropped;
// every transfer still runs from a positive balance to a negative one.
// Use CheckBalanced to detect the residue.
func SimplifyDebts(balances []UserBalance) []SimplifiedDebt {
	nodes := make([]debtNode, len(balances))
	for i, b := range balances {
		nodes[i] = debtNode{userID: b.UserID, userName: b.UserName, balance: b.NetBalance}
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].balance > nodes[j].balance
	})

	var transactions []SimplifiedDebt
	debtorIndex, creditorIndex := 0, len(nodes)-1

	for debtorIndex < creditorIndex {
		debtor := &nodes[debtorIndex]
		creditor := &nodes[creditorIndex]

		if settled(debtor.balance) {
			debtorIndex++
			continue
		}
		if settled(creditor.balance) {
			creditorIndex--
			continue
		}
		// Nodes are sorted, so once either side has the wrong sign no
		// debtor/creditor pair remains.
		if debtor.balance < 0 || creditor.balance > 0 {
			break
		}

		amount := round2(math.Min(debtor.balance, math.Abs(creditor.balance)))
		moved := false

		if amount > settledTolerance {
			transactions = append(transactions, SimplifiedDebt{
				From:     debtor.userID,
				FromName: debtor.userName,
				To:       creditor.userID,
				ToName:   creditor.userName,
				Amount:   amount,
			})
			debtor.balance -= amount
			creditor.balance += amount
		}

		if settled(debtor.balance) {
			debtorIndex++
			moved = true
		}
		if settled(creditor.balance) {
			creditorIndex--
			moved = true
		}

		// A pair whose transfer rounds to a cent or less can never emit.
		// Retire the smaller side so the walk keeps making progress.
		if !moved {
			if debtor.balance <= math.Abs(creditor.balance) {
				debtorIndex++
			} else {
				creditorIndex--
			}
		}
	}

	return transactions
}

// SummarizeDebts totals the outstanding debt and credit of a balance set.
// Balances within a cent of zero are ignored.
func SummarizeDebts(balances []UserBalance) DebtSummary {
	var summary DebtSummary
	var totalDebt, totalCredit float64

	for _, b := range balances {
		switch {
		case b.NetBalance > settledTolerance:
			totalDebt += b.NetBalance
			summary.DebtorCount++
		case b.NetBalance < -settledTolerance:
			totalCredit += math.Abs(b.NetBalance)
			summary.CreditorCount++
		}
	}

	summary.TotalDebt = round2(totalDebt)
	summary.TotalCredit = round2(totalCredit)
	summary.NetTotal = round2(totalDebt - totalCredit)
	return summary
}
