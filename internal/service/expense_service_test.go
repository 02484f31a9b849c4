package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
)

func shares(pairs ...any) []*api.Participant {
	out := make([]*api.Participant, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, &api.Participant{UserID: pairs[i].(string), ShareAmount: pairs[i+1].(float64)})
	}
	return out
}

func balanceOf(t *testing.T, result *api.CalculationResult, userID string) *api.Balance {
	t.Helper()
	for _, b := range result.Balances {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance for user %s in %+v", userID, result.Balances)
	return nil
}

// seedDinner records alice paying 100 shared with bob and bob paying 60
// shared with alice, leaving bob owing alice 20.
func seedDinner(t *testing.T, s *testServer, groupID string, alice, bob testUser) (string, string) {
	t.Helper()
	ctx := context.Background()

	first, err := s.expenses.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		GroupID:      groupID,
		PayerID:      alice.ID,
		Amount:       100,
		Description:  "Dinner",
		Date:         "2025-01-01",
		Participants: shares(alice.ID, 50.0, bob.ID, 50.0),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	second, err := s.expenses.CreateExpense(ctx, as(bob, &api.CreateExpenseRequest{
		GroupID:      groupID,
		PayerID:      bob.ID,
		Amount:       60,
		Description:  "Taxi",
		Date:         "2025-01-02",
		Participants: shares(alice.ID, 30.0, bob.ID, 30.0),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return first.Msg.Expense.ID, second.Msg.Expense.ID
}

func TestCreateExpense_SplitEqually(t *testing.T) {
	s := setupTestServer(t)
	alice, bob, carol := s.register(t, "alice"), s.register(t, "bob"), s.register(t, "carol")
	group := s.newGroup(t, alice, bob, carol)

	resp, err := s.expenses.CreateExpense(context.Background(), as(alice, &api.CreateExpenseRequest{
		GroupID:      group.ID,
		PayerID:      alice.ID,
		Amount:       90,
		Description:  "Groceries",
		Participants: []*api.Participant{{UserID: alice.ID}, {UserID: bob.ID}, {UserID: carol.ID}},
		SplitEqually: true,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	expense := resp.Msg.Expense
	if expense.ID == "" || expense.GroupID != group.ID {
		t.Errorf("unexpected expense identity: %+v", expense)
	}
	if expense.Date == "" {
		t.Error("expected default date")
	}
	for _, p := range expense.Participants {
		if p.ShareAmount != 30 {
			t.Errorf("expected share 30 for %s, got %v", p.UserID, p.ShareAmount)
		}
	}

	result := resp.Msg.Result
	if !result.IsValid {
		t.Fatalf("expected valid result, got errors %v", result.Errors)
	}
	if got := balanceOf(t, result, alice.ID).NetBalance; got != -60 {
		t.Errorf("alice net = %v, want -60", got)
	}
	if got := balanceOf(t, result, bob.ID); got.NetBalance != 30 || got.UserName != "bob" {
		t.Errorf("bob balance = %+v, want net 30 named bob", got)
	}
	if len(result.SimplifiedDebts) != 2 {
		t.Fatalf("expected 2 debts, got %+v", result.SimplifiedDebts)
	}
	for _, d := range result.SimplifiedDebts {
		if d.To != alice.ID || d.Amount != 30 {
			t.Errorf("unexpected debt %+v", d)
		}
	}
}

func TestCreateExpense_SplitEquallyRemainder(t *testing.T) {
	s := setupTestServer(t)
	alice, bob, carol := s.register(t, "alice"), s.register(t, "bob"), s.register(t, "carol")
	group := s.newGroup(t, alice, bob, carol)

	resp, err := s.expenses.CreateExpense(context.Background(), as(alice, &api.CreateExpenseRequest{
		GroupID:      group.ID,
		PayerID:      alice.ID,
		Amount:       100,
		Description:  "Tickets",
		Participants: []*api.Participant{{UserID: alice.ID}, {UserID: bob.ID}, {UserID: carol.ID}},
		SplitEqually: true,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	want := []float64{33.34, 33.33, 33.33}
	for i, p := range resp.Msg.Expense.Participants {
		if p.ShareAmount != want[i] {
			t.Errorf("participant %d share = %v, want %v", i, p.ShareAmount, want[i])
		}
	}
}

func TestCreateExpense_Rejects(t *testing.T) {
	s := setupTestServer(t)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")
	group := s.newGroup(t, alice, bob)

	tests := []struct {
		name    string
		user    testUser
		req     *api.CreateExpenseRequest
		code    connect.Code
		message string
	}{
		{
			name: "shares do not add up",
			user: alice,
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, PayerID: alice.ID, Amount: 100, Description: "Dinner",
				Participants: shares(alice.ID, 50.0, bob.ID, 40.0),
			},
			code:    connect.CodeInvalidArgument,
			message: "does not match expense amount",
		},
		{
			name: "every violation reported",
			user: alice,
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, Amount: -5,
			},
			code:    connect.CodeInvalidArgument,
			message: "Payer ID is required; Description is required; Amount must be greater than 0; At least one participant is required",
		},
		{
			name: "unknown group",
			user: alice,
			req: &api.CreateExpenseRequest{
				GroupID: "nonexistent", PayerID: alice.ID, Amount: 10, Description: "Coffee",
				Participants: shares(alice.ID, 10.0),
			},
			code:    connect.CodeNotFound,
			message: "Group not found",
		},
		{
			name:    "missing group",
			user:    alice,
			req:     &api.CreateExpenseRequest{PayerID: alice.ID},
			code:    connect.CodeInvalidArgument,
			message: "group_id required",
		},
		{
			name:    "anonymous",
			user:    testUser{},
			req:     &api.CreateExpenseRequest{GroupID: group.ID},
			code:    connect.CodeUnauthenticated,
			message: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.expenses.CreateExpense(context.Background(), as(tt.user, tt.req))
			assertCode(t, err, tt.code)
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.message)
			}
		})
	}

	list, err := s.expenses.ListExpenses(context.Background(), as(alice, &api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 0 {
		t.Errorf("rejected expenses were stored: %+v", list.Msg.Expenses)
	}
}

func TestGetBalances(t *testing.T) {
	s := setupTestServer(t)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")
	group := s.newGroup(t, alice, bob)
	seedDinner(t, s, group.ID, alice, bob)

	resp, err := s.expenses.GetBalances(context.Background(), as(alice, &api.GetBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}

	result := resp.Msg.Result
	if result.TotalExpenses != 160 {
		t.Errorf("total = %v, want 160", result.TotalExpenses)
	}
	if got := balanceOf(t, result, alice.ID).NetBalance; got != -20 {
		t.Errorf("alice net = %v, want -20", got)
	}
	if got := balanceOf(t, result, bob.ID).NetBalance; got != 20 {
		t.Errorf("bob net = %v, want 20", got)
	}

	if len(result.SimplifiedDebts) != 1 {
		t.Fatalf("expected 1 debt, got %+v", result.SimplifiedDebts)
	}
	debt := result.SimplifiedDebts[0]
	if debt.From != bob.ID || debt.To != alice.ID || debt.Amount != 20 {
		t.Errorf("unexpected debt %+v", debt)
	}
	if debt.FromName != "bob" || debt.ToName != "alice" {
		t.Errorf("unexpected debt names %q -> %q", debt.FromName, debt.ToName)
	}

	summary := resp.Msg.Summary
	if summary.TotalDebt != 20 || summary.TotalCredit != 20 || summary.NetTotal != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.DebtorCount != 1 || summary.CreditorCount != 1 {
		t.Errorf("unexpected summary counts %+v", summary)
	}
}

func TestGetBalances_EmptyGroup(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register(t, "alice")
	group := s.newGroup(t, alice)
	ctx := context.Background()

	resp, err := s.expenses.GetBalances(ctx, as(alice, &api.GetBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if !resp.Msg.Result.IsValid || len(resp.Msg.Result.Balances) != 0 || len(resp.Msg.Result.SimplifiedDebts) != 0 {
		t.Errorf("unexpected result for empty group: %+v", resp.Msg.Result)
	}

	_, err = s.expenses.GetBalances(ctx, as(alice, &api.GetBalancesRequest{GroupID: "nonexistent"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetBalances_RemovedMemberKeepsName(t *testing.T) {
	s := setupTestServer(t)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")
	group := s.newGroup(t, alice, bob)
	seedDinner(t, s, group.ID, alice, bob)
	ctx := context.Background()

	if _, err := s.groups.RemoveMember(ctx, as(alice, &api.RemoveMemberRequest{GroupID: group.ID, UserID: bob.ID})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	resp, err := s.expenses.GetBalances(ctx, as(alice, &api.GetBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	b := balanceOf(t, resp.Msg.Result, bob.ID)
	if b.NetBalance != 20 || b.UserName != "bob" {
		t.Errorf("removed member balance = %+v, want net 20 named bob", b)
	}
}

func TestListExpenses(t *testing.T) {
	s := setupTestServer(t)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")
	group := s.newGroup(t, alice, bob)
	ctx := context.Background()

	for _, date := range []string{"2025-02-01", "2025-01-01"} {
		_, err := s.expenses.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
			GroupID: group.ID, PayerID: alice.ID, Amount: 10, Description: "Coffee " + date, Date: date,
			Participants: shares(alice.ID, 5.0, bob.ID, 5.0),
		}))
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	resp, err := s.expenses.ListExpenses(ctx, as(alice, &api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(resp.Msg.Expenses))
	}
	if resp.Msg.Expenses[0].Date != "2025-01-01" || resp.Msg.Expenses[1].Date != "2025-02-01" {
		t.Errorf("expenses not ordered by date: %s, %s", resp.Msg.Expenses[0].Date, resp.Msg.Expenses[1].Date)
	}
	if len(resp.Msg.Expenses[0].Participants) != 2 || resp.Msg.Expenses[0].Participants[0].UserID != alice.ID {
		t.Errorf("participants not preserved: %+v", resp.Msg.Expenses[0].Participants)
	}

	_, err = s.expenses.ListExpenses(ctx, as(alice, &api.ListExpensesRequest{GroupID: "nonexistent"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestUpdateExpense(t *testing.T) {
	s := setupTestServer(t)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")
	group := s.newGroup(t, alice, bob)
	dinnerID, _ := seedDinner(t, s, group.ID, alice, bob)
	ctx := context.Background()

	amount := 120.0
	unbalanced := 150.0
	description := "Dinner and drinks"
	empty := ""

	tests := []struct {
		name         string
		req          *api.UpdateExpenseRequest
		code         connect.Code
		validateFunc func(t *testing.T, resp *api.UpdateExpenseResponse)
	}{
		{
			name: "amount with new shares",
			req: &api.UpdateExpenseRequest{
				ExpenseID:    dinnerID,
				Amount:       &amount,
				Participants: shares(alice.ID, 60.0, bob.ID, 60.0),
			},
			validateFunc: func(t *testing.T, resp *api.UpdateExpenseResponse) {
				if resp.Expense.Amount != 120 || resp.Expense.Description != "Dinner" {
					t.Errorf("unexpected merged expense %+v", resp.Expense)
				}
				if got := balanceOf(t, resp.Result, bob.ID).NetBalance; got != 30 {
					t.Errorf("bob net = %v, want 30", got)
				}
				if resp.Result.TotalExpenses != 180 {
					t.Errorf("total = %v, want 180", resp.Result.TotalExpenses)
				}
			},
		},
		{
			name: "description only with empty date",
			req:  &api.UpdateExpenseRequest{ExpenseID: dinnerID, Description: &description, Date: &empty},
			validateFunc: func(t *testing.T, resp *api.UpdateExpenseResponse) {
				if resp.Expense.Description != description {
					t.Errorf("description = %q, want %q", resp.Expense.Description, description)
				}
				if resp.Expense.Date != "2025-01-01" {
					t.Errorf("date = %q, want kept 2025-01-01", resp.Expense.Date)
				}
				if resp.Expense.CreatedAt == 0 || resp.Expense.UpdatedAt < resp.Expense.CreatedAt {
					t.Errorf("unexpected timestamps created=%d updated=%d", resp.Expense.CreatedAt, resp.Expense.UpdatedAt)
				}
			},
		},
		{
			name: "amount without matching shares",
			req:  &api.UpdateExpenseRequest{ExpenseID: dinnerID, Amount: &unbalanced},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown expense",
			req:  &api.UpdateExpenseRequest{ExpenseID: "nonexistent", Amount: &amount},
			code: connect.CodeNotFound,
		},
		{
			name: "missing expense id",
			req:  &api.UpdateExpenseRequest{Amount: &amount},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.expenses.UpdateExpense(ctx, as(alice, tt.req))
			if tt.code != 0 {
				assertCode(t, err, tt.code)
				return
			}
			if err != nil {
				t.Fatalf("UpdateExpense failed: %v", err)
			}
			tt.validateFunc(t, resp.Msg)
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	s := setupTestServer(t)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")
	group := s.newGroup(t, alice, bob)
	dinnerID, _ := seedDinner(t, s, group.ID, alice, bob)
	ctx := context.Background()

	resp, err := s.expenses.DeleteExpense(ctx, as(alice, &api.DeleteExpenseRequest{ExpenseID: dinnerID}))
	if err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	result := resp.Msg.Result
	if result.TotalExpenses != 60 {
		t.Errorf("total = %v, want 60", result.TotalExpenses)
	}
	if got := balanceOf(t, result, alice.ID).NetBalance; got != 30 {
		t.Errorf("alice net = %v, want 30", got)
	}
	if got := balanceOf(t, result, bob.ID).NetBalance; got != -30 {
		t.Errorf("bob net = %v, want -30", got)
	}

	_, err = s.expenses.DeleteExpense(ctx, as(alice, &api.DeleteExpenseRequest{ExpenseID: dinnerID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestPreviewExpense(t *testing.T) {
	s := setupTestServer(t)
	alice, bob, carol := s.register(t, "alice"), s.register(t, "bob"), s.register(t, "carol")
	group := s.newGroup(t, alice, bob, carol)
	seedDinner(t, s, group.ID, alice, bob)
	ctx := context.Background()

	balances, err := s.expenses.GetBalances(ctx, as(alice, &api.GetBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	current := balances.Msg.Result.Balances

	t.Run("valid draft", func(t *testing.T) {
		resp, err := s.expenses.PreviewExpense(ctx, as(alice, &api.PreviewExpenseRequest{
			CurrentBalances: current,
			Expense: &api.ExpenseDraft{
				PayerID: carol.ID, Amount: 30, Description: "Snacks",
				Participants: shares(bob.ID, 15.0, carol.ID, 15.0),
			},
		}))
		if err != nil {
			t.Fatalf("PreviewExpense failed: %v", err)
		}

		result := resp.Msg.Result
		if !result.IsValid {
			t.Fatalf("expected valid preview, got %v", result.Errors)
		}
		if result.TotalExpenses != 190 {
			t.Errorf("total = %v, want 190", result.TotalExpenses)
		}
		if got := balanceOf(t, result, bob.ID).NetBalance; got != 35 {
			t.Errorf("bob net = %v, want 35", got)
		}
		if got := balanceOf(t, result, carol.ID).NetBalance; got != -15 {
			t.Errorf("carol net = %v, want -15", got)
		}
		if len(result.SimplifiedDebts) != 2 {
			t.Errorf("expected 2 debts, got %+v", result.SimplifiedDebts)
		}
	})

	t.Run("invalid draft", func(t *testing.T) {
		resp, err := s.expenses.PreviewExpense(ctx, as(alice, &api.PreviewExpenseRequest{
			CurrentBalances: current,
			Expense:         &api.ExpenseDraft{PayerID: carol.ID, Amount: 30, Description: "Snacks"},
		}))
		if err != nil {
			t.Fatalf("PreviewExpense failed: %v", err)
		}

		result := resp.Msg.Result
		if result.IsValid || len(result.Errors) == 0 {
			t.Errorf("expected validation errors, got %+v", result)
		}
		if len(result.Balances) != len(current) || len(result.SimplifiedDebts) != 0 {
			t.Errorf("expected unchanged balances and no debts, got %+v", result)
		}
	})

	// Nothing was persisted.
	list, err := s.expenses.ListExpenses(ctx, as(alice, &api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 2 {
		t.Errorf("expected 2 stored expenses, got %d", len(list.Msg.Expenses))
	}
}
