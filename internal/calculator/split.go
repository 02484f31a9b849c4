package calculator

import "math"

// SplitEqually divides amount among userIDs in whole cents.
// Leftover cents go one each to the first participants, so the shares
// always sum to amount (e.g. 100 / 3 = 33.34, 33.33, 33.33).
// A non-finite amount yields zero shares, which Validate then rejects.
func SplitEqually(amount float64, userIDs []string) []ExpenseParticipant {
	if len(userIDs) == 0 {
		return nil
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	total := toCents(amount)
	n := int64(len(userIDs))
	base, remainder := total/n, total%n

	participants := make([]ExpenseParticipant, len(userIDs))
	for i, id := range userIDs {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		participants[i] = ExpenseParticipant{UserID: id, ShareAmount: fromCents(cents)}
	}
	return participants
}
