package calculator

import (
	"math"
	"testing"
)

func net(id string, balance float64) UserBalance {
	return UserBalance{UserID: id, NetBalance: balance}
}

// applyDebts replays transfers against balances and returns what remains.
func applyDebts(balances []UserBalance, debts []SimplifiedDebt) map[string]float64 {
	remaining := make(map[string]float64, len(balances))
	for _, b := range balances {
		remaining[b.UserID] = b.NetBalance
	}
	for _, d := range debts {
		remaining[d.From] -= d.Amount
		remaining[d.To] += d.Amount
	}
	return remaining
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances []UserBalance
		want     []SimplifiedDebt
	}{
		{
			name:     "one debtor one creditor",
			balances: []UserBalance{net("u1", -50), net("u2", 50)},
			want:     []SimplifiedDebt{{From: "u2", To: "u1", Amount: 50}},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: []UserBalance{net("u1", -100), net("u2", 25), net("u3", 75)},
			want: []SimplifiedDebt{
				{From: "u3", To: "u1", Amount: 75},
				{From: "u2", To: "u1", Amount: 25},
			},
		},
		{
			name:     "chain collapses to direct transfer",
			balances: []UserBalance{net("a", 10), net("b", 0), net("c", -10)},
			want:     []SimplifiedDebt{{From: "a", To: "c", Amount: 10}},
		},
		{
			name:     "two creditors two debtors",
			balances: []UserBalance{net("a", 30), net("b", 20), net("c", -40), net("d", -10)},
			want: []SimplifiedDebt{
				{From: "a", To: "c", Amount: 30},
				{From: "b", To: "c", Amount: 10},
				{From: "b", To: "d", Amount: 10},
			},
		},
		{
			name:     "already settled",
			balances: []UserBalance{net("a", 0), net("b", 0.004), net("c", -0.004)},
			want:     nil,
		},
		{
			name:     "empty input",
			balances: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To ||
					math.Abs(got[i].Amount-tt.want[i].Amount) > 1e-9 {
					t.Errorf("transfer %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSimplifyDebts_SettlesEveryBalance(t *testing.T) {
	balances := CalculateBalances(scenarioC(), nil)
	debts := SimplifyDebts(balances)

	if len(debts) > len(balances)-1 {
		t.Errorf("got %d transfers for %d users", len(debts), len(balances))
	}
	for id, remaining := range applyDebts(balances, debts) {
		if math.Abs(remaining) > settledTolerance {
			t.Errorf("%s left with %v after settlement", id, remaining)
		}
	}
	for _, d := range debts {
		if d.Amount <= settledTolerance {
			t.Errorf("transfer below a cent emitted: %+v", d)
		}
		if d.From == d.To {
			t.Errorf("self transfer emitted: %+v", d)
		}
	}
}

func TestSimplifyDebts_CarriesNames(t *testing.T) {
	balances := []UserBalance{
		{UserID: "u1", UserName: "Alice", NetBalance: -20},
		{UserID: "u2", UserName: "Bob", NetBalance: 20},
	}
	debts := SimplifyDebts(balances)
	if len(debts) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(debts))
	}
	if debts[0].FromName != "Bob" || debts[0].ToName != "Alice" {
		t.Errorf("names = %q -> %q", debts[0].FromName, debts[0].ToName)
	}
}

func TestSimplifyDebts_DoesNotMutateInput(t *testing.T) {
	balances := []UserBalance{net("u1", -100), net("u2", 25), net("u3", 75)}
	SimplifyDebts(balances)
	if balances[0].UserID != "u1" || balances[0].NetBalance != -100 {
		t.Errorf("input was modified: %+v", balances)
	}
}

func TestSimplifyDebts_UnbalancedTerminates(t *testing.T) {
	balances := []UserBalance{net("a", 50), net("b", -20)}
	debts := SimplifyDebts(balances)
	if len(debts) != 1 || debts[0].Amount != 20 {
		t.Errorf("got %v, want a single transfer of 20", debts)
	}
}

func TestSimplifyDebts_SameSignBalances(t *testing.T) {
	tests := []struct {
		name     string
		balances []UserBalance
		want     int
	}{
		{"all debtors", []UserBalance{net("a", 10), net("b", 5)}, 0},
		{"all creditors", []UserBalance{net("a", -10), net("b", -5)}, 0},
		{"surplus debtor", []UserBalance{net("a", 10), net("b", 5), net("c", -5)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := make(map[string]float64, len(tt.balances))
			for _, b := range tt.balances {
				balance[b.UserID] = b.NetBalance
			}

			debts := SimplifyDebts(tt.balances)
			if len(debts) != tt.want {
				t.Fatalf("got %v, want %d transfers", debts, tt.want)
			}
			for _, d := range debts {
				if balance[d.From] <= 0 || balance[d.To] >= 0 {
					t.Errorf("transfer %+v does not run from a debtor to a creditor", d)
				}
			}
		})
	}
}

func TestSimplifyDebts_SubCentPairTerminates(t *testing.T) {
	// Neither side settles yet the transfer rounds to a cent.
	balances := []UserBalance{net("a", 0.012), net("b", -0.015)}
	if debts := SimplifyDebts(balances); len(debts) != 0 {
		t.Errorf("expected no transfers, got %v", debts)
	}
}

func TestSummarizeDebts(t *testing.T) {
	balances := []UserBalance{net("u1", -100), net("u2", 25), net("u3", 75), net("u4", 0.005)}
	got := SummarizeDebts(balances)

	want := DebtSummary{TotalDebt: 100, TotalCredit: 100, NetTotal: 0, DebtorCount: 2, CreditorCount: 1}
	if got != want {
		t.Errorf("SummarizeDebts() = %+v, want %+v", got, want)
	}
}
