package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServicePreviewSharesProcedure = "/splitledger.v1.LedgerService/PreviewShares"
	LedgerServiceCreateExpenseProcedure = "/splitledger.v1.LedgerService/CreateExpense"
	LedgerServiceUpdateExpenseProcedure = "/splitledger.v1.LedgerService/UpdateExpense"
	LedgerServiceDeleteExpenseProcedure = "/splitledger.v1.LedgerService/DeleteExpense"
	LedgerServiceListExpensesProcedure  = "/splitledger.v1.LedgerService/ListExpenses"
	LedgerServiceRecordPaymentProcedure = "/splitledger.v1.LedgerService/RecordPayment"
	LedgerServiceGetBalancesProcedure   = "/splitledger.v1.LedgerService/GetBalances"
)

// LedgerServiceHandler records expenses and payments and reports balances.
type LedgerServiceHandler interface {
	PreviewShares(context.Context, *connect.Request[api.PreviewSharesRequest]) (*connect.Response[api.PreviewSharesResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServicePreviewSharesProcedure, connect.NewUnaryHandler(LedgerServicePreviewSharesProcedure, svc.PreviewShares, opts...))
	mux.Handle(LedgerServiceCreateExpenseProcedure, connect.NewUnaryHandler(LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(LedgerServiceUpdateExpenseProcedure, connect.NewUnaryHandler(LedgerServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(LedgerServiceDeleteExpenseProcedure, connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(LedgerServiceRecordPaymentProcedure, connect.NewUnaryHandler(LedgerServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) PreviewShares(context.Context, *connect.Request[api.PreviewSharesRequest]) (*connect.Response[api.PreviewSharesResponse], error) {
	return nil, unimplemented(LedgerServicePreviewSharesProcedure)
}

func (UnimplementedLedgerServiceHandler) CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceCreateExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceUpdateExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceDeleteExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return nil, unimplemented(LedgerServiceListExpensesProcedure)
}

func (UnimplementedLedgerServiceHandler) RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return nil, unimplemented(LedgerServiceRecordPaymentProcedure)
}

func (UnimplementedLedgerServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, unimplemented(LedgerServiceGetBalancesProcedure)
}

// LedgerServiceClient is a client for the LedgerService.
type LedgerServiceClient interface {
	PreviewShares(context.Context, *connect.Request[api.PreviewSharesRequest]) (*connect.Response[api.PreviewSharesResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		previewShares: connect.NewClient[api.PreviewSharesRequest, api.PreviewSharesResponse](httpClient, baseURL+LedgerServicePreviewSharesProcedure, opts...),
		createExpense: connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+LedgerServiceCreateExpenseProcedure, opts...),
		updateExpense: connect.NewClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](httpClient, baseURL+LedgerServiceUpdateExpenseProcedure, opts...),
		deleteExpense: connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		listExpenses:  connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		recordPayment: connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+LedgerServiceRecordPaymentProcedure, opts...),
		getBalances:   connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	previewShares *connect.Client[api.PreviewSharesRequest, api.PreviewSharesResponse]
	createExpense *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	updateExpense *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	deleteExpense *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses  *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	recordPayment *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	getBalances   *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
}

func (c *ledgerServiceClient) PreviewShares(ctx context.Context, req *connect.Request[api.PreviewSharesRequest]) (*connect.Response[api.PreviewSharesResponse], error) {
	return c.previewShares.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}
