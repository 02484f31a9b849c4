package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/calculator"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/metrics"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/storage"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api/apiconnect"
)

var errExpenseIDRequired = errors.New("expense_id required")

// ExpenseService implements the Connect ExpenseService.
//
// Every mutation loads the group's ledger, runs it through the calculator
// and persists the accepted expense while holding the group's lock, so
// concurrent writes to one group are serialized.
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	locks   *keyedMutex
}

// NewExpenseService creates an ExpenseService. m may be nil; a nil logger
// uses slog.Default.
func NewExpenseService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{
		store:   store,
		metrics: m,
		logger:  logger,
		locks:   newKeyedMutex(),
	}
}

// CreateExpense validates and records a new expense, returning the group's
// recalculated balances.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	msg := req.Msg
	s.logger.Info("CreateExpense request received",
		"group_id", msg.GroupID,
		"payer_id", msg.PayerID,
		"amount", msg.Amount,
		"participants_count", len(msg.Participants),
		"split_equally", msg.SplitEqually,
	)

	if msg.GroupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}

	input := calculator.ExpenseInput{
		PayerID:      msg.PayerID,
		Amount:       msg.Amount,
		Description:  msg.Description,
		Date:         msg.Date,
		Participants: fromAPIParticipants(msg.Participants),
	}
	if msg.SplitEqually && len(input.Participants) > 0 {
		ids := make([]string, len(input.Participants))
		for i, p := range input.Participants {
			ids[i] = p.UserID
		}
		input.Participants = calculator.SplitEqually(input.Amount, ids)
	}

	unlock := s.locks.Lock(msg.GroupID)
	defer unlock()

	group, ledger, err := s.loadLedger(ctx, msg.GroupID)
	if err != nil {
		return nil, err
	}

	ids := []string{input.PayerID}
	for _, p := range input.Participants {
		ids = append(ids, p.UserID)
	}
	names, err := s.nameLookup(ctx, group, ledger, ids...)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	result := calculator.AddExpense(ledger, input, names)
	if !result.IsValid {
		s.metrics.ExpenseRejected()
		s.logger.Warn("CreateExpense rejected", "group_id", group.ID, "errors", result.Errors)
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(result.Errors, "; ")))
	}

	accepted := result.UpdatedExpenses[len(result.UpdatedExpenses)-1]
	expense := toModelExpense(group.ID, accepted)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.metrics.Recalculated(metrics.PathFull)
	s.checkBalanced(group.ID, result.CalculationResult.Balances)

	s.logger.Info("Expense created",
		"group_id", group.ID,
		"expense_id", expense.ID,
		"total_expenses", result.CalculationResult.TotalExpenses,
	)

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense),
		Result:  toAPIResult(*result.CalculationResult),
	}), nil
}

// UpdateExpense merges the provided fields into an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	msg := req.Msg
	s.logger.Info("UpdateExpense request received", "expense_id", msg.ExpenseID)

	if msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errExpenseIDRequired)
	}

	existing, err := s.store.GetExpense(ctx, msg.ExpenseID)
	if err != nil {
		s.logger.Warn("UpdateExpense failed", "expense_id", msg.ExpenseID, "error", err)
		return nil, storeError(err, calculator.ExpenseNotFound)
	}

	unlock := s.locks.Lock(existing.GroupID)
	defer unlock()

	group, ledger, err := s.loadLedger(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}

	updates := calculator.ExpenseUpdate{
		PayerID:      msg.PayerID,
		Amount:       msg.Amount,
		Description:  msg.Description,
		Date:         msg.Date,
		Participants: fromAPIParticipants(msg.Participants),
	}

	var ids []string
	if updates.PayerID != nil {
		ids = append(ids, *updates.PayerID)
	}
	for _, p := range updates.Participants {
		ids = append(ids, p.UserID)
	}
	names, err := s.nameLookup(ctx, group, ledger, ids...)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	result := calculator.UpdateExpense(ledger, msg.ExpenseID, updates, names)
	if !result.IsValid {
		if slices.Equal(result.Errors, []string{calculator.ExpenseNotFound}) {
			return nil, connect.NewError(connect.CodeNotFound, errors.New(calculator.ExpenseNotFound))
		}
		s.metrics.ExpenseRejected()
		s.logger.Warn("UpdateExpense rejected", "expense_id", msg.ExpenseID, "errors", result.Errors)
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(result.Errors, "; ")))
	}

	index := slices.IndexFunc(result.UpdatedExpenses, func(e calculator.Expense) bool { return e.ID == msg.ExpenseID })
	expense := toModelExpense(group.ID, result.UpdatedExpenses[index])
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError(err, calculator.ExpenseNotFound)
	}

	s.metrics.Recalculated(metrics.PathFull)
	s.checkBalanced(group.ID, result.CalculationResult.Balances)

	s.logger.Info("Expense updated", "group_id", group.ID, "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{
		Expense: toAPIExpense(expense),
		Result:  toAPIResult(*result.CalculationResult),
	}), nil
}

// DeleteExpense removes an expense and returns the recalculated balances.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	expenseID := req.Msg.ExpenseID
	s.logger.Info("DeleteExpense request received", "expense_id", expenseID)

	if expenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errExpenseIDRequired)
	}

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		s.logger.Warn("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return nil, storeError(err, calculator.ExpenseNotFound)
	}

	unlock := s.locks.Lock(existing.GroupID)
	defer unlock()

	group, ledger, err := s.loadLedger(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}
	names, err := s.nameLookup(ctx, group, ledger)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	result := calculator.RemoveExpense(ledger, expenseID, names)

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return nil, storeError(err, calculator.ExpenseNotFound)
	}

	s.metrics.Recalculated(metrics.PathRemoval)
	s.checkBalanced(group.ID, result.Balances)

	s.logger.Info("Expense deleted", "group_id", group.ID, "expense_id", expenseID)
	return connect.NewResponse(&api.DeleteExpenseResponse{Result: toAPIResult(result)}), nil
}

// ListExpenses returns a group's expenses ordered by date, then creation.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	groupID := req.Msg.GroupID
	s.logger.Info("ListExpenses request received", "group_id", groupID)

	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, storeError(err, "Group not found")
	}

	rows, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("ListExpenses failed", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	expenses := make([]*api.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = toAPIExpense(row)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: expenses}), nil
}

// GetBalances computes every member's balance and the settlement plan.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	groupID := req.Msg.GroupID
	s.logger.Info("GetBalances request received", "group_id", groupID)

	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}

	group, ledger, err := s.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	names, err := s.nameLookup(ctx, group, ledger)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	result := calculator.CalculateExpenseResult(ledger, names)
	s.metrics.Recalculated(metrics.PathFull)
	s.checkBalanced(group.ID, result.Balances)

	if !result.IsValid {
		// Stored rows were valid when written; report rather than fail.
		s.logger.Warn("Stored ledger has invalid expenses", "group_id", group.ID, "errors", result.Errors)
	}

	s.logger.Info("GetBalances successful",
		"group_id", group.ID,
		"expenses_count", len(ledger),
		"members_count", len(result.Balances),
		"debts_count", len(result.SimplifiedDebts),
	)

	return connect.NewResponse(&api.GetBalancesResponse{
		Result:  toAPIResult(result),
		Summary: toAPISummary(calculator.SummarizeDebts(result.Balances)),
	}), nil
}

// PreviewExpense applies a draft expense to balances the client already
// holds, without touching storage. Invalid drafts return the current
// balances and the validation errors.
func (s *ExpenseService) PreviewExpense(ctx context.Context, req *connect.Request[api.PreviewExpenseRequest]) (*connect.Response[api.PreviewExpenseResponse], error) {
	current := fromAPIBalances(req.Msg.CurrentBalances)

	var input calculator.ExpenseInput
	if draft := req.Msg.Expense; draft != nil {
		input = calculator.ExpenseInput{
			PayerID:      draft.PayerID,
			Amount:       draft.Amount,
			Description:  draft.Description,
			Date:         draft.Date,
			Participants: fromAPIParticipants(draft.Participants),
		}
	}

	result := calculator.RecalculateBalancesRealTime(current, input, nil)
	if result.IsValid {
		s.metrics.Recalculated(metrics.PathIncremental)
	}

	s.logger.Debug("PreviewExpense", "balances_count", len(current), "valid", result.IsValid)
	return connect.NewResponse(&api.PreviewExpenseResponse{Result: toAPIResult(result)}), nil
}

// loadLedger fetches a group and its expenses as a calculator snapshot.
// Errors are already Connect errors.
func (s *ExpenseService) loadLedger(ctx context.Context, groupID string) (*models.Group, []calculator.Expense, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		s.logger.Warn("Failed to load group", "group_id", groupID, "error", err)
		return nil, nil, storeError(err, "Group not found")
	}

	rows, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("Failed to load expenses", "group_id", groupID, "error", err)
		return nil, nil, connect.NewError(connect.CodeInternal, err)
	}

	return group, toLedger(rows), nil
}

// nameLookup resolves display names for members plus every user in the
// ledger or extra, including users who have since left the group.
func (s *ExpenseService) nameLookup(ctx context.Context, group *models.Group, ledger []calculator.Expense, extra ...string) (calculator.NameLookup, error) {
	names := make(calculator.NameLookup, len(group.Members))
	for _, m := range group.Members {
		names[m.UserID] = calculator.UserInfo{Name: m.DisplayName, Email: m.Email}
	}

	seen := make(map[string]bool)
	var missing []string
	check := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	for _, e := range ledger {
		check(e.PayerID)
		for _, p := range e.Participants {
			check(p.UserID)
		}
	}
	for _, id := range extra {
		check(id)
	}

	if len(missing) == 0 {
		return names, nil
	}

	users, err := s.store.GetUsersByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to load user names: %w", err)
	}
	for id, user := range users {
		names[id] = calculator.UserInfo{Name: user.DisplayName, Email: user.Email}
	}
	return names, nil
}

// checkBalanced logs and counts balance sets that do not net to zero.
func (s *ExpenseService) checkBalanced(groupID string, balances []calculator.UserBalance) {
	if residual, ok := calculator.CheckBalanced(balances); !ok {
		s.metrics.LedgerUnbalanced()
		s.logger.Warn("Ledger does not balance", "group_id", groupID, "residual", residual)
	}
}
