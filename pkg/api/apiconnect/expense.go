package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "moneysplit.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure  = "/moneysplit.v1.ExpenseService/CreateExpense"
	ExpenseServiceUpdateExpenseProcedure  = "/moneysplit.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure  = "/moneysplit.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure   = "/moneysplit.v1.ExpenseService/ListExpenses"
	ExpenseServiceGetBalancesProcedure    = "/moneysplit.v1.ExpenseService/GetBalances"
	ExpenseServicePreviewExpenseProcedure = "/moneysplit.v1.ExpenseService/PreviewExpense"
)

// ExpenseServiceClient is a client for the moneysplit.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	PreviewExpense(context.Context, *connect.Request[api.PreviewExpenseRequest]) (*connect.Response[api.PreviewExpenseResponse], error)
}

// NewExpenseServiceClient constructs a client for the moneysplit.v1.ExpenseService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createExpense:  connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		updateExpense:  connect.NewClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense:  connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		listExpenses:   connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		getBalances:    connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+ExpenseServiceGetBalancesProcedure, opts...),
		previewExpense: connect.NewClient[api.PreviewExpenseRequest, api.PreviewExpenseResponse](httpClient, baseURL+ExpenseServicePreviewExpenseProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createExpense  *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	updateExpense  *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	deleteExpense  *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses   *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getBalances    *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	previewExpense *connect.Client[api.PreviewExpenseRequest, api.PreviewExpenseResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *expenseServiceClient) PreviewExpense(ctx context.Context, req *connect.Request[api.PreviewExpenseRequest]) (*connect.Response[api.PreviewExpenseResponse], error) {
	return c.previewExpense.CallUnary(ctx, req)
}

// ExpenseServiceHandler is implemented by the moneysplit.v1.ExpenseService server.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	PreviewExpense(context.Context, *connect.Request[api.PreviewExpenseRequest]) (*connect.Response[api.PreviewExpenseResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createExpense := connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	updateExpense := connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...)
	deleteExpense := connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...)
	listExpenses := connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...)
	getBalances := connect.NewUnaryHandler(ExpenseServiceGetBalancesProcedure, svc.GetBalances, opts...)
	previewExpense := connect.NewUnaryHandler(ExpenseServicePreviewExpenseProcedure, svc.PreviewExpense, opts...)

	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceCreateExpenseProcedure:
			createExpense.ServeHTTP(w, r)
		case ExpenseServiceUpdateExpenseProcedure:
			updateExpense.ServeHTTP(w, r)
		case ExpenseServiceDeleteExpenseProcedure:
			deleteExpense.ServeHTTP(w, r)
		case ExpenseServiceListExpensesProcedure:
			listExpenses.ServeHTTP(w, r)
		case ExpenseServiceGetBalancesProcedure:
			getBalances.ServeHTTP(w, r)
		case ExpenseServicePreviewExpenseProcedure:
			previewExpense.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedExpenseServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedExpenseServiceHandler struct{}

func (UnimplementedExpenseServiceHandler) CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceCreateExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceUpdateExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceDeleteExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return nil, unimplemented(ExpenseServiceListExpensesProcedure)
}

func (UnimplementedExpenseServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, unimplemented(ExpenseServiceGetBalancesProcedure)
}

func (UnimplementedExpenseServiceHandler) PreviewExpense(context.Context, *connect.Request[api.PreviewExpenseRequest]) (*connect.Response[api.PreviewExpenseResponse], error) {
	return nil, unimplemented(ExpenseServicePreviewExpenseProcedure)
}
