package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	store   storage.Store
	metrics *metrics.Metrics
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, metrics: m}
}

// PreviewShares computes how an expense would be split without storing it.
func (s *LedgerService) PreviewShares(ctx context.Context, req *connect.Request[api.PreviewSharesRequest]) (*connect.Response[api.PreviewSharesResponse], error) {
	slog.Info("PreviewShares request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split", req.Msg.Split,
	)

	group, err := loadGroup(ctx, s.store, s.metrics, "PreviewShares", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expense := models.Expense{GroupID: group.ID, Amount: req.Msg.Amount}
	shares, err := s.computeShares(group, expense, req.Msg.Split, req.Msg.Participants, req.Msg.Values)
	if err != nil {
		return nil, toConnectError(s.metrics, "PreviewShares", err, "group_id", group.ID)
	}

	slog.Info("PreviewShares successful", "group_id", group.ID, "shares", len(shares))

	return connect.NewResponse(&api.PreviewSharesResponse{Shares: toAPIShares(shares)}), nil
}

// CreateExpense splits an expense among its participants and stores it.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount,
		"split", req.Msg.Split,
	)

	group, err := loadGroup(ctx, s.store, s.metrics, "CreateExpense", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     req.Msg.PayerID,
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
	}
	if err := s.prepareExpense(group, expense, req.Msg.Split, req.Msg.Participants, req.Msg.Values); err != nil {
		return nil, toConnectError(s.metrics, "CreateExpense", err, "group_id", group.ID)
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, toConnectError(s.metrics, "CreateExpense", err, "group_id", group.ID)
	}
	s.metrics.ExpensesRecorded.WithLabelValues(string(expense.Split)).Inc()

	slog.Info("Expense created", "group_id", group.ID, "expense_id", expense.ID, "shares", len(expense.Shares))

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense's payer, description, amount and split,
// recomputing its shares. Balances pick up the change on the next read.
func (s *LedgerService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount,
		"split", req.Msg.Split,
	)

	if req.Msg.ExpenseID == "" {
		return nil, toConnectError(s.metrics, "UpdateExpense", invalid("expense_id", "expense_id required"))
	}
	existing, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(s.metrics, "UpdateExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	group, err := loadGroup(ctx, s.store, s.metrics, "UpdateExpense", existing.GroupID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:          existing.ID,
		GroupID:     existing.GroupID,
		PayerID:     req.Msg.PayerID,
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		CreatedAt:   existing.CreatedAt,
	}
	if err := s.prepareExpense(group, expense, req.Msg.Split, req.Msg.Participants, req.Msg.Values); err != nil {
		return nil, toConnectError(s.metrics, "UpdateExpense", err, "expense_id", expense.ID)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, toConnectError(s.metrics, "UpdateExpense", err, "expense_id", expense.ID)
	}

	slog.Info("Expense updated", "group_id", group.ID, "expense_id", expense.ID, "shares", len(expense.Shares))

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense and its shares.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, toConnectError(s.metrics, "DeleteExpense", invalid("expense_id", "expense_id required"))
	}
	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError(s.metrics, "DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses retrieves a group's expenses, oldest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	group, err := loadGroup(ctx, s.store, s.metrics, "ListExpenses", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(s.metrics, "ListExpenses", err, "group_id", group.ID)
	}

	out := make([]*api.Expense, len(expenses))
	for i := range expenses {
		out[i] = toAPIExpense(&expenses[i])
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(out))

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// RecordPayment stores a transfer between two members. It counts towards
// every later balance computation.
func (s *LedgerService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received",
		"group_id", req.Msg.GroupID,
		"from_member_id", req.Msg.FromMemberID,
		"to_member_id", req.Msg.ToMemberID,
		"amount", req.Msg.Amount,
	)

	group, err := loadGroup(ctx, s.store, s.metrics, "RecordPayment", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := validatePayment(group, req.Msg); err != nil {
		return nil, toConnectError(s.metrics, "RecordPayment", err, "group_id", group.ID)
	}

	payment := &models.Payment{
		GroupID:      group.ID,
		FromMemberID: req.Msg.FromMemberID,
		ToMemberID:   req.Msg.ToMemberID,
		Amount:       req.Msg.Amount,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, toConnectError(s.metrics, "RecordPayment", err, "group_id", group.ID)
	}
	s.metrics.PaymentsRecorded.Inc()

	slog.Info("Payment recorded", "group_id", group.ID, "payment_id", payment.ID)

	return connect.NewResponse(&api.RecordPaymentResponse{Payment: toAPIPayment(payment)}), nil
}

// GetBalances calculates every member's net balance across the group's
// expenses and payments, plus the transfers that would settle them.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	group, err := loadGroup(ctx, s.store, s.metrics, "GetBalances", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(s.metrics, "GetBalances", err, "group_id", group.ID)
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(s.metrics, "GetBalances", err, "group_id", group.ID)
	}

	start := time.Now()
	memberBalances, err := calculator.ComputeMemberBalances(*group, expenses, payments...)
	s.metrics.ObserveCompute("balances", start)
	if err != nil {
		return nil, toConnectError(s.metrics, "GetBalances", err, "group_id", group.ID)
	}

	balances := make(calculator.Balances, len(memberBalances))
	for _, mb := range memberBalances {
		balances[mb.MemberID] = mb.Net
	}

	start = time.Now()
	settlements, err := calculator.ComputeSettlements(balances)
	s.metrics.ObserveCompute("settlements", start)
	if err != nil {
		return nil, toConnectError(s.metrics, "GetBalances", err, "group_id", group.ID)
	}
	s.metrics.SettlementTransfers.Observe(float64(len(settlements)))

	names := memberNames(group)
	resp := &api.GetBalancesResponse{
		Balances:    make([]*api.MemberBalance, len(memberBalances)),
		Settlements: make([]*api.Settlement, len(settlements)),
	}
	for i, mb := range memberBalances {
		resp.Balances[i] = &api.MemberBalance{
			MemberID:  mb.MemberID,
			Name:      names[mb.MemberID],
			TotalPaid: mb.TotalPaid,
			TotalOwed: mb.TotalOwed,
			Net:       mb.Net,
		}
	}
	for i, st := range settlements {
		resp.Settlements[i] = &api.Settlement{
			FromMemberID: st.From,
			FromName:     names[st.From],
			ToMemberID:   st.To,
			ToName:       names[st.To],
			Amount:       st.Amount,
		}
	}

	slog.Info("GetBalances successful",
		"group_id", group.ID,
		"expenses", len(expenses),
		"payments", len(payments),
		"settlements", len(settlements),
	)

	return connect.NewResponse(resp), nil
}

// prepareExpense validates the description and payer and fills in the
// split kind and shares.
func (s *LedgerService) prepareExpense(group *models.Group, expense *models.Expense, split string, participants []int64, values map[int64]decimal.Decimal) error {
	expense.Description = strings.TrimSpace(expense.Description)
	if expense.Description == "" {
		return invalid("description", "description is required")
	}
	if !group.HasMember(expense.PayerID) {
		return invalid("payer_id", "member %d is not in group", expense.PayerID)
	}

	shares, err := s.computeShares(group, *expense, split, participants, values)
	if err != nil {
		return err
	}
	expense.Split = splitKind(split)
	expense.Shares = shares
	return nil
}

func (s *LedgerService) computeShares(group *models.Group, expense models.Expense, split string, participants []int64, values map[int64]decimal.Decimal) ([]models.ExpenseShare, error) {
	kind := splitKind(split)
	ids, err := resolveParticipants(group, kind, participants, values)
	if err != nil {
		return nil, err
	}
	policy := calculator.SplitPolicy{Kind: kind, Values: values}

	defer s.metrics.ObserveCompute("shares", time.Now())
	return calculator.ComputeShares(expense, ids, policy)
}

// resolveParticipants defaults an empty participant list to the members
// named in values, or to the whole roster when values is empty too. For
// equal splits values act as a selection, so zero entries are left out.
// Every participant must be on the roster.
func resolveParticipants(group *models.Group, kind models.SplitKind, participants []int64, values map[int64]decimal.Decimal) ([]int64, error) {
	ids := slices.Clone(participants)
	if len(ids) == 0 {
		if len(values) > 0 {
			for id, v := range values {
				if kind == models.SplitEqual && v.IsZero() {
					continue
				}
				ids = append(ids, id)
			}
			slices.Sort(ids)
		} else {
			ids = group.MemberIDs()
		}
	}

	for _, id := range ids {
		if !group.HasMember(id) {
			return nil, invalid("participants", "member %d is not in group", id)
		}
	}
	return ids, nil
}

// splitKind maps the wire split name to a policy; empty means equal.
func splitKind(split string) models.SplitKind {
	if split == "" {
		return models.SplitEqual
	}
	return models.SplitKind(strings.ToLower(split))
}

func validatePayment(group *models.Group, req *api.RecordPaymentRequest) error {
	switch {
	case !group.HasMember(req.FromMemberID):
		return invalid("from_member_id", "member %d is not in group", req.FromMemberID)
	case !group.HasMember(req.ToMemberID):
		return invalid("to_member_id", "member %d is not in group", req.ToMemberID)
	case req.FromMemberID == req.ToMemberID:
		return invalid("to_member_id", "a member cannot pay themselves")
	case !req.Amount.IsPositive():
		return invalid("amount", "amount must be greater than zero")
	case !calculator.HasCurrencyPrecision(req.Amount):
		return invalid("amount", "amount %s has more than %d decimal places", req.Amount, calculator.CurrencyPlaces)
	}
	return nil
}
