package service

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/calculator"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/storage"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
)

// storeError maps a storage failure to a Connect error.
// ErrNotFound becomes CodeNotFound with msg; everything else is internal.
func storeError(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, errors.New(msg))
	}
	if errors.Is(err, storage.ErrAlreadyExists) {
		return connect.NewError(connect.CodeAlreadyExists, err)
	}
	return connect.NewError(connect.CodeInternal, fmt.Errorf("storage failure: %w", err))
}

func toAPIUser(user *models.User) *api.User {
	return &api.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

func toAPIGroup(group *models.Group) *api.Group {
	members := make([]*api.Member, len(group.Members))
	for i, m := range group.Members {
		members[i] = &api.Member{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Email:       m.Email,
			JoinedAt:    m.JoinedAt,
		}
	}
	return &api.Group{
		ID:         group.ID,
		Name:       group.Name,
		InviteCode: group.InviteCode,
		CreatedBy:  group.CreatedBy,
		Members:    members,
		CreatedAt:  group.CreatedAt,
	}
}

// toLedger converts stored expenses into a calculator ledger snapshot.
func toLedger(expenses []*models.Expense) []calculator.Expense {
	ledger := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		participants := make([]calculator.ExpenseParticipant, len(e.Splits))
		for j, s := range e.Splits {
			participants[j] = calculator.ExpenseParticipant{UserID: s.UserID, ShareAmount: s.ShareAmount}
		}
		ledger[i] = calculator.Expense{
			ID:           e.ID,
			PayerID:      e.PayerID,
			Amount:       e.Amount,
			Description:  e.Description,
			Date:         e.Date,
			Participants: participants,
		}
	}
	return ledger
}

// toModelExpense converts an accepted calculator expense into a storage row.
func toModelExpense(groupID string, e calculator.Expense) *models.Expense {
	splits := make([]models.ExpenseSplit, len(e.Participants))
	for i, p := range e.Participants {
		splits[i] = models.ExpenseSplit{UserID: p.UserID, ShareAmount: p.ShareAmount}
	}
	return &models.Expense{
		ID:          e.ID,
		GroupID:     groupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		Splits:      splits,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	participants := make([]*api.Participant, len(e.Splits))
	for i, s := range e.Splits {
		participants[i] = &api.Participant{UserID: s.UserID, ShareAmount: s.ShareAmount}
	}
	return &api.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		PayerID:      e.PayerID,
		Amount:       e.Amount,
		Description:  e.Description,
		Date:         e.Date,
		Participants: participants,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// fromAPIParticipants converts request shares. A nil slice stays nil so
// updates can tell "unchanged" from "cleared".
func fromAPIParticipants(participants []*api.Participant) []calculator.ExpenseParticipant {
	if participants == nil {
		return nil
	}
	out := make([]calculator.ExpenseParticipant, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		out = append(out, calculator.ExpenseParticipant{UserID: p.UserID, ShareAmount: p.ShareAmount})
	}
	return out
}

func fromAPIBalances(balances []*api.Balance) []calculator.UserBalance {
	out := make([]calculator.UserBalance, 0, len(balances))
	for _, b := range balances {
		if b == nil {
			continue
		}
		out = append(out, calculator.UserBalance{
			UserID:     b.UserID,
			UserName:   b.UserName,
			UserEmail:  b.UserEmail,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
			NetBalance: b.NetBalance,
		})
	}
	return out
}

func toAPIResult(result calculator.ExpenseCalculationResult) *api.CalculationResult {
	balances := make([]*api.Balance, len(result.Balances))
	for i, b := range result.Balances {
		balances[i] = &api.Balance{
			UserID:     b.UserID,
			UserName:   b.UserName,
			UserEmail:  b.UserEmail,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
			NetBalance: b.NetBalance,
		}
	}
	debts := make([]*api.Debt, len(result.SimplifiedDebts))
	for i, d := range result.SimplifiedDebts {
		debts[i] = &api.Debt{
			From:     d.From,
			FromName: d.FromName,
			To:       d.To,
			ToName:   d.ToName,
			Amount:   d.Amount,
		}
	}
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return &api.CalculationResult{
		Balances:        balances,
		SimplifiedDebts: debts,
		TotalExpenses:   result.TotalExpenses,
		IsValid:         result.IsValid,
		Errors:          errs,
	}
}

func toAPISummary(summary calculator.DebtSummary) *api.DebtSummary {
	return &api.DebtSummary{
		TotalDebt:     summary.TotalDebt,
		TotalCredit:   summary.TotalCredit,
		NetTotal:      summary.NetTotal,
		DebtorCount:   summary.DebtorCount,
		CreditorCount: summary.CreditorCount,
	}
}
