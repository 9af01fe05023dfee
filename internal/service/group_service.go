package service

import (
	"context"
	"log/slog"
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

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store   storage.Store
	metrics *metrics.Metrics
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, metrics: m}
}

// CreateGroup creates a new group with its initial roster.
// Member names are trimmed; blanks and repeats are dropped.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError(s.metrics, "CreateGroup", invalid("name", "group name is required"))
	}
	if err := validateBudget(req.Msg.Budget); err != nil {
		return nil, toConnectError(s.metrics, "CreateGroup", err)
	}

	group := &models.Group{
		Name:   name,
		Budget: toNullDecimal(req.Msg.Budget),
	}
	for _, memberName := range cleanMemberNames(req.Msg.Members) {
		group.Members = append(group.Members, models.Member{Name: memberName})
	}

	// Save to storage (generates IDs and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, toConnectError(s.metrics, "CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.loadGroup(ctx, "GetGroup", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError(s.metrics, "ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember appends a member to a group's roster.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError(s.metrics, "AddMember", invalid("name", "member name is required"))
	}

	if req.Msg.GroupID == "" {
		return nil, toConnectError(s.metrics, "AddMember", invalid("group_id", "group_id required"))
	}

	// Store reports a missing group or a taken name
	member := &models.Member{GroupID: req.Msg.GroupID, Name: name}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, toConnectError(s.metrics, "AddMember", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("Member added", "group_id", member.GroupID, "member_id", member.ID)

	return connect.NewResponse(&api.AddMemberResponse{
		Member: &api.Member{ID: member.ID, Name: member.Name},
	}), nil
}

// RemoveMember takes a member off a group's roster. Members who paid, owe a
// share of, or sent or received a payment in the group cannot be removed,
// and neither can the last member.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	if req.Msg.GroupID == "" {
		return nil, toConnectError(s.metrics, "RemoveMember", invalid("group_id", "group_id required"))
	}
	if err := s.store.RemoveMember(ctx, req.Msg.GroupID, req.Msg.MemberID); err != nil {
		return nil, toConnectError(s.metrics, "RemoveMember", err,
			"group_id", req.Msg.GroupID,
			"member_id", req.Msg.MemberID,
		)
	}

	slog.Info("Member removed", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// DeleteGroup removes a group by ID, with all its expenses and payments.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, toConnectError(s.metrics, "DeleteGroup", invalid("group_id", "group_id required"))
	}
	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError(s.metrics, "DeleteGroup", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// SetBudget sets or clears a group's budget and returns the resulting status.
func (s *GroupService) SetBudget(ctx context.Context, req *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error) {
	slog.Info("SetBudget request received", "group_id", req.Msg.GroupID, "budget", req.Msg.Budget)

	if req.Msg.GroupID == "" {
		return nil, toConnectError(s.metrics, "SetBudget", invalid("group_id", "group_id required"))
	}
	if err := validateBudget(req.Msg.Budget); err != nil {
		return nil, toConnectError(s.metrics, "SetBudget", err)
	}

	budget := toNullDecimal(req.Msg.Budget)
	if err := s.store.SetBudget(ctx, req.Msg.GroupID, budget); err != nil {
		return nil, toConnectError(s.metrics, "SetBudget", err, "group_id", req.Msg.GroupID)
	}

	status, err := s.budgetStatus(ctx, req.Msg.GroupID, budget)
	if err != nil {
		return nil, toConnectError(s.metrics, "SetBudget", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("Budget updated", "group_id", req.Msg.GroupID, "percentage_used", status.PercentageUsed)

	return connect.NewResponse(&api.SetBudgetResponse{Status: toAPIBudgetStatus(status)}), nil
}

// GetBudgetStatus reports a group's spending against its budget.
func (s *GroupService) GetBudgetStatus(ctx context.Context, req *connect.Request[api.GetBudgetStatusRequest]) (*connect.Response[api.GetBudgetStatusResponse], error) {
	slog.Info("GetBudgetStatus request received", "group_id", req.Msg.GroupID)

	group, err := s.loadGroup(ctx, "GetBudgetStatus", req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	status, err := s.budgetStatus(ctx, group.ID, group.Budget)
	if err != nil {
		return nil, toConnectError(s.metrics, "GetBudgetStatus", err, "group_id", group.ID)
	}

	slog.Info("GetBudgetStatus successful",
		"group_id", group.ID,
		"total_spent", status.TotalSpent,
		"alerts", len(status.Alerts),
	)

	return connect.NewResponse(&api.GetBudgetStatusResponse{Status: toAPIBudgetStatus(status)}), nil
}

func (s *GroupService) budgetStatus(ctx context.Context, groupID string, budget decimal.NullDecimal) (calculator.BudgetStatus, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return calculator.BudgetStatus{}, err
	}
	defer s.metrics.ObserveCompute("budget", time.Now())
	return calculator.ComputeBudgetStatus(budget, expenses), nil
}

func (s *GroupService) loadGroup(ctx context.Context, op, groupID string) (*models.Group, error) {
	return loadGroup(ctx, s.store, s.metrics, op, groupID)
}

// loadGroup fetches a group, mapping a blank ID or a missing group to the
// matching Connect error.
func loadGroup(ctx context.Context, store storage.Store, m *metrics.Metrics, op, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, toConnectError(m, op, invalid("group_id", "group_id required"))
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, toConnectError(m, op, err, "group_id", groupID)
	}
	return group, nil
}

// cleanMemberNames trims names and drops blanks and repeats, keeping the
// first occurrence order.
func cleanMemberNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func validateBudget(budget *decimal.Decimal) error {
	if budget == nil {
		return nil
	}
	if budget.IsNegative() {
		return invalid("budget", "budget %s must not be negative", budget)
	}
	if !calculator.HasCurrencyPrecision(*budget) {
		return invalid("budget", "budget %s has more than %d decimal places", budget, calculator.CurrencyPlaces)
	}
	return nil
}
